package permission

import "errors"

var (
	// ErrRoleNotFound is returned by mutations that target an unknown role.
	// Resolve never returns it; unknown roles resolve to LevelNone.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleExists is returned when adding a role whose name is taken.
	ErrRoleExists = errors.New("role already exists")

	// ErrEmptyRoleName is returned when adding a role without a name.
	ErrEmptyRoleName = errors.New("role name is required")

	// ErrMissingAncestor is returned when a table or field node is missing
	// the ids of its enclosing database or table.
	ErrMissingAncestor = errors.New("missing ancestor id")

	// ErrAncestorMismatch is returned when a node id does not extend the
	// ancestor ids it was given.
	ErrAncestorMismatch = errors.New("node id does not match its ancestors")

	// ErrEmptyNodeID is returned for nodes without an id.
	ErrEmptyNodeID = errors.New("node id is required")

	// ErrInvalidKind is returned for node kinds outside database/table/field.
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrInvalidLevel is returned for levels outside None..Delete.
	ErrInvalidLevel = errors.New("invalid permission level")
)
