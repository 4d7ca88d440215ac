package permission

import "fmt"

// SetOverride assigns level to a node for a role, then removes descendant
// overrides that now hold the same level. Setting a database clears
// matching table and field overrides below it; setting a table clears
// matching field overrides. The removed overrides are returned.
func (m *Matrix) SetOverride(role string, n Node, level Level) ([]Override, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if !level.IsALevel() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	r, ok := m.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}

	r.overrides(n.Kind)[n.ID] = level

	var removed []Override
	switch n.Kind {
	case KindDatabase:
		removed = append(removed, pruneRedundant(r, KindTable, n.ID, level)...)
		removed = append(removed, pruneRedundant(r, KindField, n.ID, level)...)
	case KindTable:
		removed = pruneRedundant(r, KindField, n.ID, level)
	}
	sortOverrides(removed)
	return removed, nil
}

// ClearOverride removes the override on a node. It reports whether one
// existed.
func (m *Matrix) ClearOverride(role string, n Node) (bool, error) {
	if err := n.Validate(); err != nil {
		return false, err
	}
	r, ok := m.roles[role]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	overrides := r.overrides(n.Kind)
	if _, ok := overrides[n.ID]; !ok {
		return false, nil
	}
	delete(overrides, n.ID)
	return true, nil
}

// pruneRedundant finds descendants by id prefix. catalog.Validate rejects
// trees where a prefix could reach a sibling's children.
func pruneRedundant(r *RolePermissions, kind NodeKind, ancestorID string, level Level) []Override {
	overrides := r.overrides(kind)
	var removed []Override
	for id, l := range overrides {
		if l == level && IsDescendant(ancestorID, id) {
			delete(overrides, id)
			removed = append(removed, Override{Kind: kind, ID: id, Level: l})
		}
	}
	return removed
}
