package tuf

import "fmt"

// TargetsError reports a target-file lifecycle failure: an empty
// modify_targets call, one whose paths resolve to more than one role,
// or a reference to a target the engine has no record of.
type TargetsError struct {
	Reason string
}

func (e TargetsError) Error() string {
	return "tuf: " + e.Reason
}

// ErrMixedRoles is the specific TargetsError raised when a single
// modify_targets call's paths resolve to more than one role.
var ErrMixedRoles = TargetsError{Reason: "MixedRoles: target paths resolve to more than one role"}

// ErrEmptyModify is raised when a modify_targets call adds and removes
// nothing.
var ErrEmptyModify = TargetsError{Reason: "modify_targets called with no additions or removals"}

// ErrNotLoaded means an operation needs a role this Repo has not yet
// loaded or created.
type ErrNotLoaded struct {
	Role string
}

func (e ErrNotLoaded) Error() string {
	return fmt.Sprintf("tuf: role %s has not been loaded", e.Role)
}

// ErrRoleExists is returned by Create when the metadata directory
// already exists, even if it is empty.
type ErrRoleExists struct {
	Path string
}

func (e ErrRoleExists) Error() string {
	return fmt.Sprintf("tuf: repository already exists at %s", e.Path)
}

// ErrUnknownRole means a role name is neither canonical nor found as a
// delegation anywhere in the tree.
type ErrUnknownRole struct {
	Role string
}

func (e ErrUnknownRole) Error() string {
	return fmt.Sprintf("tuf: unknown role %s", e.Role)
}
