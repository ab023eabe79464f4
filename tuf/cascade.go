package tuf

import "github.com/patzielinski/taf/data"

// Cascade runs the snapshot/timestamp bump (§4.7) for every role
// recorded as changed since the last cascade, then clears the changed
// set. It is an explicit post-step that target edits, key management and
// expiry changes invoke themselves — never embedded in commitEdit.
// Create does not call it: creation bumps only the roles it writes and
// then clears the changed set.
func (r *Repo) Cascade() error {
	if len(r.changed) == 0 {
		return nil
	}
	if err := r.doSnapshot(); err != nil {
		return err
	}
	if err := r.doTimestamp(); err != nil {
		return err
	}
	r.changed = map[string]int{}
	return nil
}

// doSnapshot updates snapshot.body.meta for every changed role to its
// new version, then runs the edit transaction on snapshot itself.
func (r *Repo) doSnapshot() error {
	return r.editSnapshot(func(s *data.Snapshot) error {
		for role, version := range r.changed {
			s.Meta[role+".json"] = data.MetaFile{Version: version}
		}
		return nil
	})
}

// doTimestamp points timestamp at snapshot's just-committed version,
// then runs the edit transaction on timestamp itself.
func (r *Repo) doTimestamp() error {
	snapshotVersion := r.Snapshot.Version
	return r.editTimestamp(func(ts *data.Timestamp) error {
		ts.Meta["snapshot.json"] = data.MetaFile{Version: snapshotVersion}
		return nil
	})
}
