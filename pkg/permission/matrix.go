package permission

import (
	"fmt"
	"sort"
)

// Matrix holds the permission records of every role. It is not safe for
// concurrent use.
type Matrix struct {
	roles       map[string]*RolePermissions
	inheritance Inheritance
}

type Option func(*Matrix)

// WithInheritance sets the inheritance mode used by Resolve and Explain.
func WithInheritance(mode Inheritance) Option {
	return func(m *Matrix) {
		m.inheritance = mode
	}
}

func NewMatrix(opts ...Option) *Matrix {
	m := &Matrix{roles: map[string]*RolePermissions{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matrix) Inheritance() Inheritance {
	return m.inheritance
}

// AddRole registers a role with no overrides.
func (m *Matrix) AddRole(name string, def Level) error {
	if name == "" {
		return ErrEmptyRoleName
	}
	if !def.IsALevel() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(def))
	}
	if _, ok := m.roles[name]; ok {
		return fmt.Errorf("%w: %s", ErrRoleExists, name)
	}
	m.roles[name] = NewRolePermissions(name, def)
	return nil
}

// PutRole inserts or replaces a full role record. The record is copied.
func (m *Matrix) PutRole(r *RolePermissions) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.roles[r.Name] = r.Clone()
	return nil
}

func (m *Matrix) RemoveRole(name string) error {
	if _, ok := m.roles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	delete(m.roles, name)
	return nil
}

// Role returns a copy of the named role's record.
func (m *Matrix) Role(name string) (*RolePermissions, bool) {
	r, ok := m.roles[name]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (m *Matrix) HasRole(name string) bool {
	_, ok := m.roles[name]
	return ok
}

// Roles returns the role names in lexical order.
func (m *Matrix) Roles() []string {
	names := make([]string, 0, len(m.roles))
	for name := range m.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns copies of every role record ordered by name.
func (m *Matrix) Snapshot() []*RolePermissions {
	out := make([]*RolePermissions, 0, len(m.roles))
	for _, name := range m.Roles() {
		out = append(out, m.roles[name].Clone())
	}
	return out
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(WithInheritance(m.inheritance))
	for name, r := range m.roles {
		c.roles[name] = r.Clone()
	}
	return c
}

func (m *Matrix) SetDefault(role string, level Level) error {
	if !level.IsALevel() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	r, ok := m.roles[role]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	r.Default = level
	return nil
}

// Overrides lists the overrides of a role ordered by kind, then id.
func (m *Matrix) Overrides(role string) ([]Override, error) {
	r, ok := m.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	return r.Overrides(), nil
}
