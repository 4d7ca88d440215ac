// Package permission resolves effective permission levels over a
// database -> table -> field hierarchy.
//
// Each role carries a default Level and three override maps, one per node
// kind. Resolution checks the node's own override first, then walks up to
// the owning table and database, and finally falls back to the role default.
//
// # Hierarchy
//
// Node identity follows a prefix convention: a table id starts with its
// database id followed by Separator, a field id starts with its table id
// followed by Separator:
//
//	db1                 database
//	db1_users           table in db1
//	db1_users_email     field in db1_users
//
// Callers pass the ancestor ids explicitly in a Node; the prefix convention
// is only used to find descendants when SetOverride removes redundant
// overrides.
//
// # Inheritance
//
// InheritanceExplicit (the default) treats the presence of an ancestor
// override as the inheritance signal. InheritanceLegacy reproduces the
// older dashboard behaviour, where an ancestor is only consulted when its
// effective level differs from the role default.
//
// Matrix is a plain value with no internal locking. Wrap it (see pkg/authz)
// when it is shared between goroutines.
package permission
