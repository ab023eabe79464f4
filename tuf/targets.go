package tuf

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/patzielinski/taf/data"
)

// TargetContent is what a caller supplies for an added target path: an
// opaque byte payload (Raw) or a structured value serialized as pretty
// JSON (Structured), plus whatever custom metadata should be attached
// verbatim to the resulting targets entry.
type TargetContent struct {
	Raw        []byte
	Structured interface{}
	Custom     map[string]json.RawMessage
}

// ModifyTargets writes through added/removed target files to disk and
// to the signed targets metadata in one transaction, per §4.6.
// targetsDir is the root of the on-disk targets/ tree.
func (r *Repo) ModifyTargets(targetsDir string, added map[string]TargetContent, removed []string) error {
	if len(added) == 0 && len(removed) == 0 {
		return ErrEmptyModify
	}

	paths := make([]string, 0, len(added)+len(removed))
	for p := range added {
		paths = append(paths, p)
	}
	paths = append(paths, removed...)

	role := r.GetRoleFromTargetPaths(paths)
	if role == "" {
		return ErrMixedRoles
	}

	fileMetas := map[string]data.TargetFile{}
	for path, content := range added {
		full := filepath.Join(targetsDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("tuf: creating parent directory for %s: %w", path, err)
		}

		if content.Structured != nil {
			blob, err := json.MarshalIndent(content.Structured, "", "  ")
			if err != nil {
				return fmt.Errorf("tuf: serializing target %s: %w", path, err)
			}
			if err := os.WriteFile(full, blob, 0644); err != nil {
				return err
			}
		} else if content.Raw != nil {
			if err := os.WriteFile(full, content.Raw, 0644); err != nil {
				return err
			}
		} else if _, err := os.Stat(full); os.IsNotExist(err) {
			if err := os.WriteFile(full, []byte{}, 0644); err != nil {
				return err
			}
		}

		meta, err := fileMetaFor(full)
		if err != nil {
			return err
		}
		meta.Custom = content.Custom
		fileMetas[path] = meta
	}

	for _, path := range removed {
		full := filepath.Join(targetsDir, filepath.FromSlash(path))
		if err := os.RemoveAll(full); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	err := r.editTargets(role, func(t *data.Targets) error {
		for path, meta := range fileMetas {
			t.Targets[path] = meta
		}
		for _, path := range removed {
			delete(t.Targets, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return r.Cascade()
}

func fileMetaFor(path string) (data.TargetFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return data.TargetFile{}, err
	}
	defer f.Close()
	meta, err := data.NewFileMeta(f)
	if err != nil {
		return data.TargetFile{}, err
	}
	return data.TargetFile{Length: meta.Length, Hashes: meta.Hashes}, nil
}

// DriftReport is the result of reconciling on-disk target files against
// the signed targets metadata across every loaded role.
type DriftReport struct {
	AddedOrModified []string
	Removed         []string
}

// AllTargetFilesState walks targetsDir, hashes every file it finds, and
// compares against the union of every loaded role's signed targets,
// per §4.6 "Drift reconciliation".
func (r *Repo) AllTargetFilesState(targetsDir string) (DriftReport, error) {
	onDisk := map[string][]byte{}
	err := filepath.WalkDir(targetsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(targetsDir, path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(raw)
		onDisk[filepath.ToSlash(rel)] = sum[:]
		return nil
	})
	if err != nil {
		return DriftReport{}, err
	}

	signed := map[string][]byte{}
	for _, t := range r.Targets {
		for path, meta := range t.Targets {
			if h, ok := meta.Hashes["sha256"]; ok {
				signed[path] = h
			}
		}
	}

	var report DriftReport
	for path, hash := range onDisk {
		sig, ok := signed[path]
		if !ok || hex.EncodeToString(hash) != hex.EncodeToString(sig) {
			report.AddedOrModified = append(report.AddedOrModified, path)
		}
	}
	for path := range signed {
		if _, ok := onDisk[path]; !ok {
			report.Removed = append(report.Removed, path)
		}
	}
	sort.Strings(report.AddedOrModified)
	sort.Strings(report.Removed)
	return report, nil
}

// DeleteUnregisteredTargetFiles walks all of targetsDir and removes every
// file that is registered neither in role's signed targets nor in those
// of any role delegated beneath it (recursively), so files owned by a
// descendant delegation are kept. Files registered only to roles outside
// that subtree are removed; directories are left in place. See
// DESIGN.md for the rationale.
func (r *Repo) DeleteUnregisteredTargetFiles(targetsDir, role string) error {
	return r.walkUnregistered(targetsDir, role)
}

func (r *Repo) walkUnregistered(targetsDir, role string) error {
	if _, ok := r.Targets[role]; !ok {
		return ErrUnknownRole{Role: role}
	}

	registered := map[string]bool{}
	r.collectRegistered(role, registered)

	return filepath.WalkDir(targetsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(targetsDir, path)
		if err != nil {
			return err
		}
		if !registered[filepath.ToSlash(rel)] {
			return os.Remove(path)
		}
		return nil
	})
}

// collectRegistered unions every target path registered under role and
// the full delegation subtree rooted at it, so a file owned by a sibling
// delegation is never mistaken for unregistered.
func (r *Repo) collectRegistered(role string, out map[string]bool) {
	t, ok := r.Targets[role]
	if !ok {
		return
	}
	for path := range t.Targets {
		out[path] = true
	}
	if t.Delegations == nil {
		return
	}
	for _, child := range t.Delegations.Roles {
		r.collectRegistered(child.Name, out)
	}
}
