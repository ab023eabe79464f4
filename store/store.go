// Package store implements the on-disk metadata store: atomic
// read/write of each role's signed JSON file, plus the version-prefixed
// sibling copies root.json keeps for every version ever published so a
// client that trusts an old root can still walk forward one version at
// a time. Adapted from the teacher's tuf/store.MetadataStore interface
// and client.go's bootstrapRepo/saveMetadata read/write pattern.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MetadataStore is the storage surface the engine drives: get, set, and
// remove a role's signed metadata blob by name ("root", "targets",
// "snapshot", "timestamp", or a delegated role's dotted name).
type MetadataStore interface {
	GetMeta(name string) ([]byte, error)
	SetMeta(name string, blob []byte) error
	SetMultiMeta(map[string][]byte) error
	RemoveMeta(name string) error
	RemoveAll() error
}

// StorageMissing means the named role has never been written to this
// store — distinct from a read/parse failure, since callers often treat
// "not yet created" as a normal state (e.g. during the creation
// protocol) rather than an error.
type StorageMissing struct {
	Name string
}

func (e StorageMissing) Error() string {
	return fmt.Sprintf("store: %s not found", e.Name)
}

// StorageCorrupt means a file existed but could not be read or was
// truncated mid-write.
type StorageCorrupt struct {
	Name string
	Err  error
}

func (e StorageCorrupt) Error() string {
	return fmt.Sprintf("store: %s is corrupt: %v", e.Name, e.Err)
}

func (e StorageCorrupt) Unwrap() error { return e.Err }

// FilesystemStore persists each role's metadata as "<name>.json" in a
// directory, writing through a temp-file-then-rename so a crash mid
// write never leaves a torn file behind. For the root role it also
// keeps every past version as "<version>.root.json", mirroring the
// teacher's consistent-snapshot file naming so a client pinned to an
// older trusted root can still fetch it.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore opens (creating if needed) a metadata directory at
// baseDir.
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

func (s *FilesystemStore) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// GetMeta reads a role's current signed JSON blob.
func (s *FilesystemStore) GetMeta(name string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, StorageMissing{Name: name}
		}
		return nil, StorageCorrupt{Name: name, Err: err}
	}
	return raw, nil
}

// SetMeta atomically writes blob as the current content for name. It
// writes no version-prefixed copy, even for "root"; SetRootMeta writes
// root.json together with its "<version>.root.json" sibling.
func (s *FilesystemStore) SetMeta(name string, blob []byte) error {
	return s.writeAtomic(s.path(name), blob)
}

// SetRootMeta writes root.json's current copy and also a
// "<version>.root.json" sibling, so any previously-trusted root version
// remains fetchable after a rotation.
func (s *FilesystemStore) SetRootMeta(version int, blob []byte) error {
	if err := s.writeAtomic(s.path("root"), blob); err != nil {
		return err
	}
	versioned := filepath.Join(s.baseDir, strconv.Itoa(version)+".root.json")
	return s.writeAtomic(versioned, blob)
}

// GetRootMeta reads a specific historical version of root.json, or the
// current one if version is 0.
func (s *FilesystemStore) GetRootMeta(version int) ([]byte, error) {
	if version == 0 {
		return s.GetMeta("root")
	}
	name := strconv.Itoa(version) + ".root.json"
	raw, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, StorageMissing{Name: name}
		}
		return nil, StorageCorrupt{Name: name, Err: err}
	}
	return raw, nil
}

// ListRootVersions returns every historical root version this store has
// a sibling copy for, in ascending order.
func (s *FilesystemStore) ListRootVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var versions []int
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".root.json") {
			continue
		}
		numPart := strings.TrimSuffix(e.Name(), ".root.json")
		v, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions, nil
}

// SetMultiMeta writes several role blobs as one logical batch; a
// failure partway through leaves whichever files were already written
// in place (each individual write is already atomic).
func (s *FilesystemStore) SetMultiMeta(metas map[string][]byte) error {
	for name, blob := range metas {
		if err := s.SetMeta(name, blob); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMeta deletes a single role's current file. Removing a role that
// was never written is not an error.
func (s *FilesystemStore) RemoveMeta(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll wipes the entire metadata directory.
func (s *FilesystemStore) RemoveAll() error {
	return os.RemoveAll(s.baseDir)
}

func (s *FilesystemStore) writeAtomic(path string, blob []byte) error {
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
