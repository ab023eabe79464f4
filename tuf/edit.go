package tuf

import "github.com/patzielinski/taf/data"

// editRoot scopes a mutation to the root role: the mutator may freely
// change Root's roles/keys; on return commitEdit bumps the version,
// re-signs, and writes atomically. On error the in-memory Root is left
// as the mutator last touched it; no copy is taken, and the
// key-management operations in keys.go mutate r.Root in place.
func (r *Repo) editRoot(mutate func(*data.Root) error) error {
	if r.Root == nil {
		return ErrNotLoaded{Role: data.CanonicalRootRole}
	}
	if err := mutate(r.Root); err != nil {
		return err
	}
	return r.commitEdit(data.CanonicalRootRole, &r.Root.SignedCommon, r.Root)
}

// editTargets scopes a mutation to the named targets-family role
// ("targets" or any delegated role name already present in r.Targets).
func (r *Repo) editTargets(role string, mutate func(*data.Targets) error) error {
	t, ok := r.Targets[role]
	if !ok {
		return ErrNotLoaded{Role: role}
	}
	if err := mutate(t); err != nil {
		return err
	}
	return r.commitEdit(role, &t.SignedCommon, t)
}

// editSnapshot scopes a mutation to the snapshot role.
func (r *Repo) editSnapshot(mutate func(*data.Snapshot) error) error {
	if r.Snapshot == nil {
		return ErrNotLoaded{Role: data.CanonicalSnapshotRole}
	}
	if err := mutate(r.Snapshot); err != nil {
		return err
	}
	return r.commitEdit(data.CanonicalSnapshotRole, &r.Snapshot.SignedCommon, r.Snapshot)
}

// editTimestamp scopes a mutation to the timestamp role.
func (r *Repo) editTimestamp(mutate func(*data.Timestamp) error) error {
	if r.Timestamp == nil {
		return ErrNotLoaded{Role: data.CanonicalTimestampRole}
	}
	if err := mutate(r.Timestamp); err != nil {
		return err
	}
	return r.commitEdit(data.CanonicalTimestampRole, &r.Timestamp.SignedCommon, r.Timestamp)
}

// forceResignTargets re-signs a targets-family role without any content change, by running an
// edit whose mutator does nothing. Used when a role's key set changed
// on its parent/root but its own body is otherwise untouched — clients
// still expect to see it signed by the new key set (§4.8 step 5).
func (r *Repo) forceResignTargets(role string) error {
	return r.editTargets(role, func(*data.Targets) error { return nil })
}
