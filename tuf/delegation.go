package tuf

import (
	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/utils"
)

// FindRoleParent performs a breadth-first scan from "targets" looking
// for the role whose delegations list names child. Grounded in
// §4.5 "Find parent": BFS/DFS from targets, scanning each visited
// role's delegations.roles for a name match.
func (r *Repo) FindRoleParent(child string) string {
	if child == data.CanonicalTargetsRole {
		return ""
	}
	queue := []string{data.CanonicalTargetsRole}
	visited := map[string]bool{}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		t, ok := r.Targets[name]
		if !ok || t.Delegations == nil {
			continue
		}
		for _, role := range t.Delegations.Roles {
			if role.Name == child {
				return name
			}
			queue = append(queue, role.Name)
		}
	}
	return ""
}

// MapSigningRoles computes, for every path in paths, the most specific
// delegated (or top-level) targets role authorized to sign it, per
// §4.5 "Map targets to roles": pre-order traversal, last-match-wins,
// terminating delegations pruning only the paths they match.
func (r *Repo) MapSigningRoles(paths []string) map[string]string {
	mapping := make(map[string]string, len(paths))
	for _, p := range paths {
		mapping[p] = data.CanonicalTargetsRole
	}
	r.walkDelegations(data.CanonicalTargetsRole, paths, mapping)
	return mapping
}

// walkDelegations visits role's children in declaration order
// (pre-order), overwriting mapping for any path a child's patterns
// match, then recursing into that child unless it is terminating for
// that path.
func (r *Repo) walkDelegations(role string, paths []string, mapping map[string]string) {
	t, ok := r.Targets[role]
	if !ok || t.Delegations == nil {
		return
	}
	for _, child := range t.Delegations.Roles {
		var matched []string
		for _, p := range paths {
			if utils.AnyMatch(child.Paths, p) {
				mapping[p] = child.Name
				matched = append(matched, p)
			}
		}

		var recurseInto []string
		if child.Terminating {
			matchedSet := make(map[string]bool, len(matched))
			for _, p := range matched {
				matchedSet[p] = true
			}
			for _, p := range paths {
				if !matchedSet[p] {
					recurseInto = append(recurseInto, p)
				}
			}
		} else {
			recurseInto = paths
		}
		r.walkDelegations(child.Name, recurseInto, mapping)
	}
}

// GetRoleFromTargetPaths returns the single role authorized to sign
// every path in paths, or "" if the paths resolve to more than one
// role (no multi-role transactions, per §4.5).
func (r *Repo) GetRoleFromTargetPaths(paths []string) string {
	mapping := r.MapSigningRoles(paths)
	role := ""
	for _, p := range paths {
		resolved := mapping[p]
		if role == "" {
			role = resolved
		} else if role != resolved {
			return ""
		}
	}
	return role
}
