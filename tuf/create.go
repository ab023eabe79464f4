package tuf

import (
	"os"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/signed"
	"github.com/patzielinski/taf/store"
)

// RoleKeySpec is the per-role slice of a creation descriptor: how many
// keys it wants, its threshold, and (for hardware-backed keys) which
// key names to request from the token. Matches the fields §4.10 lists
// for every role in RolesKeysData.
type RoleKeySpec struct {
	Number     int
	Threshold  int
	Scheme     data.SigAlgorithm
	IsHardware bool
	KeyNames   []string
}

// DelegatedRoleSpec describes one node of the delegated-targets subtree
// a creation descriptor may nest under "targets".
type DelegatedRoleSpec struct {
	RoleKeySpec
	Name        string
	Paths       []string
	Terminating bool
	Delegations []DelegatedRoleSpec
}

// RolesKeysData is the recursive creation descriptor of §4.10.
type RolesKeysData struct {
	Root        RoleKeySpec
	Targets     RoleKeySpec
	Delegations []DelegatedRoleSpec
	Snapshot    RoleKeySpec
	Timestamp   RoleKeySpec
}

// CreateInput bundles the descriptor with the keys actually available to
// sign with (by role, already generated/loaded and bound to key-ids)
// and any purely-verification public keys to fold into a role's
// descriptor without a corresponding local signer.
type CreateInput struct {
	Roles                      RolesKeysData
	Signers                    map[string][]data.PublicKey
	AdditionalVerificationKeys map[string][]data.PublicKey
}

// Create bootstraps a fresh repository: an empty metadata directory (it
// is an error for one to already exist), the four canonical roles, and
// every delegated role named in the descriptor, each written out at
// version 1 per §4.10.
func Create(metadataDir, targetsDir string, cs signed.CryptoService, st store.MetadataStore, in CreateInput) (*Repo, error) {
	if _, err := os.Stat(metadataDir); err == nil {
		return nil, ErrRoleExists{Path: metadataDir}
	}
	if err := os.MkdirAll(metadataDir, 0700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetsDir, 0755); err != nil {
		return nil, err
	}

	r := NewRepo(cs, st)

	root := data.NewRoot()
	root.Version = 0

	canonical := map[string]RoleKeySpec{
		data.CanonicalRootRole:      in.Roles.Root,
		data.CanonicalTargetsRole:   in.Roles.Targets,
		data.CanonicalSnapshotRole:  in.Roles.Snapshot,
		data.CanonicalTimestampRole: in.Roles.Timestamp,
	}
	for roleName, spec := range canonical {
		desc := &data.Role{Threshold: spec.Threshold}
		if desc.Threshold == 0 {
			desc.Threshold = 1
		}
		for _, key := range in.Signers[roleName] {
			root.Keys[key.ID()] = key
			desc.AddKeyID(key.ID())
			r.keyDB.AddKey(key)
			r.signers.Bind(roleName, key.ID())
		}
		for _, key := range in.AdditionalVerificationKeys[roleName] {
			root.Keys[key.ID()] = key
			desc.AddKeyID(key.ID())
			r.keyDB.AddKey(key)
		}
		root.Roles[roleName] = desc
		r.keyDB.AddRole(roleName, desc)
	}
	r.Root = root

	targets := data.NewTargets()
	targets.Version = 0
	targets.Delegations = &data.Delegations{Keys: map[string]data.PublicKey{}, Roles: []*data.DelegatedRole{}}
	r.Targets[data.CanonicalTargetsRole] = targets

	if err := r.buildDelegations(data.CanonicalTargetsRole, in.Roles.Delegations, in); err != nil {
		return nil, err
	}

	snapshot := data.NewSnapshot()
	snapshot.Version = 0
	snapshot.Meta = map[string]data.MetaFile{"root.json": {Version: 1}}
	for role := range r.Targets {
		snapshot.Meta[role+".json"] = data.MetaFile{Version: 1}
	}
	r.Snapshot = snapshot

	timestamp := data.NewTimestamp()
	timestamp.Version = 0
	timestamp.Meta = map[string]data.MetaFile{"snapshot.json": {Version: 1}}
	r.Timestamp = timestamp

	// Step 6: close every role out at version 1, in dependency order
	// (leaves before the roles that reference their versions).
	for role := range r.Targets {
		if err := r.editTargets(role, func(*data.Targets) error { return nil }); err != nil {
			return nil, err
		}
	}
	if err := r.editRoot(func(*data.Root) error { return nil }); err != nil {
		return nil, err
	}
	if err := r.editSnapshot(func(*data.Snapshot) error { return nil }); err != nil {
		return nil, err
	}
	if err := r.editTimestamp(func(*data.Timestamp) error { return nil }); err != nil {
		return nil, err
	}
	r.changed = map[string]int{}

	return r, nil
}

// GenerateSigners realizes a creation descriptor's Number/Scheme fields
// into actual keys: for each role it calls cs.Create(role, algorithm)
// Number times and returns the resulting public keys by role, ready to
// hand to CreateInput.Signers. IsHardware and KeyNames are not
// consulted; every key comes from cs.Create, which for a
// signed.MultiCryptoService is always its first backend.
func GenerateSigners(cs signed.CryptoService, specs map[string]RoleKeySpec) (map[string][]data.PublicKey, error) {
	out := map[string][]data.PublicKey{}
	for role, spec := range specs {
		n := spec.Number
		if n == 0 {
			n = 1
		}
		algorithm := algorithmForScheme(spec.Scheme)
		for i := 0; i < n; i++ {
			pub, err := cs.Create(role, algorithm)
			if err != nil {
				return nil, err
			}
			out[role] = append(out[role], pub)
		}
	}
	return out, nil
}

func algorithmForScheme(scheme data.SigAlgorithm) string {
	switch scheme {
	case data.ECDSASignature:
		return data.ECDSAKey
	case data.RSAPSSSignature, data.RSAPKCS1v15Signature, "":
		return data.RSAKey
	default:
		return data.RSAKey
	}
}

// buildDelegations recursively creates each delegated role named in
// specs under parent: its RoleDescriptor on parent's delegations, its
// key dictionary entries, and its own (initially empty) Targets body.
func (r *Repo) buildDelegations(parent string, specs []DelegatedRoleSpec, in CreateInput) error {
	parentTargets := r.Targets[parent]
	for _, spec := range specs {
		threshold := spec.Threshold
		if threshold == 0 {
			threshold = 1
		}
		delegated := &data.DelegatedRole{
			Role:        data.Role{Threshold: threshold},
			Name:        spec.Name,
			Paths:       spec.Paths,
			Terminating: spec.Terminating,
		}
		for _, key := range in.Signers[spec.Name] {
			parentTargets.Delegations.Keys[key.ID()] = key
			delegated.AddKeyID(key.ID())
			r.keyDB.AddKey(key)
			r.signers.Bind(spec.Name, key.ID())
		}
		for _, key := range in.AdditionalVerificationKeys[spec.Name] {
			parentTargets.Delegations.Keys[key.ID()] = key
			delegated.AddKeyID(key.ID())
			r.keyDB.AddKey(key)
		}
		parentTargets.Delegations.Roles = append(parentTargets.Delegations.Roles, delegated)
		r.keyDB.AddRole(spec.Name, &delegated.Role)

		child := data.NewTargets()
		child.Version = 0
		child.Delegations = &data.Delegations{Keys: map[string]data.PublicKey{}, Roles: []*data.DelegatedRole{}}
		r.Targets[spec.Name] = child

		if err := r.buildDelegations(spec.Name, spec.Delegations, in); err != nil {
			return err
		}
	}
	return nil
}
