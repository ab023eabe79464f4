package signed

import "github.com/patzielinski/taf/data"

// KeyDB is an in-memory index of every key and role the engine currently
// knows about — the union of root.json's key dictionary and every
// delegated targets role's own key dictionary. It is filled in as root
// and each targets file are loaded or created, and extended in place by
// key-management edits, grounded in
// gotuf's keys.KeyDB used by TufRepo.SetRoot/SetTargets.
type KeyDB struct {
	keys  map[string]data.PublicKey
	roles map[string]*data.Role
}

// NewKeyDB returns an empty KeyDB.
func NewKeyDB() *KeyDB {
	return &KeyDB{
		keys:  map[string]data.PublicKey{},
		roles: map[string]*data.Role{},
	}
}

// AddKey indexes a key by its own id, overwriting nothing if it was
// already known (keys are immutable once created).
func (db *KeyDB) AddKey(k data.PublicKey) {
	if k == nil {
		return
	}
	if _, ok := db.keys[k.ID()]; ok {
		return
	}
	db.keys[k.ID()] = k
}

// GetKey returns the key with the given id, or nil.
func (db *KeyDB) GetKey(keyID string) data.PublicKey {
	return db.keys[keyID]
}

// AddRole indexes a role descriptor by role name.
func (db *KeyDB) AddRole(name string, role *data.Role) {
	db.roles[name] = role
}

// GetRole returns the role descriptor for name, or nil.
func (db *KeyDB) GetRole(name string) *data.Role {
	return db.roles[name]
}

// RoleKeys returns the public keys assigned to a role, skipping any
// key-id the db has no record of without reporting it.
func (db *KeyDB) RoleKeys(name string) []data.PublicKey {
	role := db.roles[name]
	if role == nil {
		return nil
	}
	keys := make([]data.PublicKey, 0, len(role.KeyIDs))
	for _, id := range role.KeyIDs {
		if k := db.keys[id]; k != nil {
			keys = append(keys, k)
		}
	}
	return keys
}
