package tuf

import (
	"encoding/json"
	"sort"

	"github.com/patzielinski/taf/data"
)

// RoleDescription is a read-only summary of one role's current
// descriptor, the shape generate_roles_description returns in the
// original project for operator-facing listings.
type RoleDescription struct {
	Name      string
	Parent    string
	Threshold int
	KeyIDs    []string
	Paths     []string
}

// GenerateRolesDescription returns a RoleDescription for every role
// currently loaded (root/targets/snapshot/timestamp plus every
// delegated role), grounded in the original project's
// generate_roles_description helper used to render repository state.
func (r *Repo) GenerateRolesDescription() []RoleDescription {
	var out []RoleDescription
	if r.Root != nil {
		for _, role := range []string{data.CanonicalRootRole, data.CanonicalTargetsRole, data.CanonicalSnapshotRole, data.CanonicalTimestampRole} {
			desc := r.Root.Roles[role]
			if desc == nil {
				continue
			}
			out = append(out, RoleDescription{Name: role, Threshold: desc.Threshold, KeyIDs: append([]string{}, desc.KeyIDs...)})
		}
	}
	for parent, t := range r.Targets {
		if t.Delegations == nil {
			continue
		}
		for _, child := range t.Delegations.Roles {
			out = append(out, RoleDescription{
				Name:      child.Name,
				Parent:    parent,
				Threshold: child.Threshold,
				KeyIDs:    append([]string{}, child.KeyIDs...),
				Paths:     append([]string{}, child.Paths...),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetAllTargetsRoles returns the name of every targets-family role
// currently loaded (the top-level "targets" role plus every delegated
// role), grounded in the original project's get_all_targets_roles.
func (r *Repo) GetAllTargetsRoles() []string {
	out := make([]string, 0, len(r.Targets))
	for role := range r.Targets {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// GetAllRoles returns every role name this repo knows about, canonical
// roles included, grounded in the original project's get_all_roles.
func (r *Repo) GetAllRoles() []string {
	out := []string{data.CanonicalRootRole, data.CanonicalSnapshotRole, data.CanonicalTimestampRole}
	out = append(out, r.GetAllTargetsRoles()...)
	sort.Strings(out)
	return out
}

// FindKeysRoles returns, for each key-id in keyIDs, every role that
// currently lists it — a key can legitimately back more than one role.
// Grounded in the original project's find_keys_roles.
func (r *Repo) FindKeysRoles(keyIDs []string) map[string][]string {
	out := map[string][]string{}
	want := map[string]bool{}
	for _, id := range keyIDs {
		want[id] = true
	}
	if r.Root != nil {
		for role, desc := range r.Root.Roles {
			for _, id := range desc.KeyIDs {
				if want[id] {
					out[id] = append(out[id], role)
				}
			}
		}
	}
	for _, t := range r.Targets {
		if t.Delegations == nil {
			continue
		}
		for _, child := range t.Delegations.Roles {
			for _, id := range child.KeyIDs {
				if want[id] {
					out[id] = append(out[id], child.Name)
				}
			}
		}
	}
	return out
}

// FindAssociatedRolesOfKey is FindKeysRoles for a single key.
func (r *Repo) FindAssociatedRolesOfKey(keyID string) []string {
	return r.FindKeysRoles([]string{keyID})[keyID]
}

// IsValidMetadataKey reports whether keyID is registered as backing
// role, grounded in the original project's is_valid_metadata_key check
// performed before accepting a key addition.
func (r *Repo) IsValidMetadataKey(role, keyID string) bool {
	return r.roleHasKey(role, keyID)
}

// GetTargetFileCustomData returns the custom metadata attached to path
// in role's signed targets, or nil if the path carries none.
func (r *Repo) GetTargetFileCustomData(role, path string) map[string]json.RawMessage {
	t, ok := r.Targets[role]
	if !ok {
		return nil
	}
	tf, ok := t.Targets[path]
	if !ok {
		return nil
	}
	return tf.Custom
}

// SignedTargetWithCustom pairs a target path with its recorded custom
// data, the shape get_signed_targets_with_custom_data returns.
type SignedTargetWithCustom struct {
	Path   string
	Custom map[string]json.RawMessage
}

// GetSignedTargetsWithCustomData returns every target in role carrying
// non-empty custom data, grounded in the original project's
// get_signed_targets_with_custom_data.
func (r *Repo) GetSignedTargetsWithCustomData(role string) []SignedTargetWithCustom {
	t, ok := r.Targets[role]
	if !ok {
		return nil
	}
	var out []SignedTargetWithCustom
	for path, tf := range t.Targets {
		if len(tf.Custom) == 0 {
			continue
		}
		out = append(out, SignedTargetWithCustom{Path: path, Custom: tf.Custom})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
