package permission

import (
	"fmt"
	"sort"
)

// RolePermissions is the permission record of one role.
type RolePermissions struct {
	Name      string           `json:"name" yaml:"name"`
	Default   Level            `json:"default" yaml:"default"`
	Databases map[string]Level `json:"databases,omitempty" yaml:"databases,omitempty"`
	Tables    map[string]Level `json:"tables,omitempty" yaml:"tables,omitempty"`
	Fields    map[string]Level `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Override is a single explicit assignment on a node.
type Override struct {
	Kind  NodeKind `json:"kind"`
	ID    string   `json:"id"`
	Level Level    `json:"level"`
}

func NewRolePermissions(name string, def Level) *RolePermissions {
	return &RolePermissions{
		Name:      name,
		Default:   def,
		Databases: map[string]Level{},
		Tables:    map[string]Level{},
		Fields:    map[string]Level{},
	}
}

func (r *RolePermissions) overrides(kind NodeKind) map[string]Level {
	switch kind {
	case KindDatabase:
		if r.Databases == nil {
			r.Databases = map[string]Level{}
		}
		return r.Databases
	case KindTable:
		if r.Tables == nil {
			r.Tables = map[string]Level{}
		}
		return r.Tables
	case KindField:
		if r.Fields == nil {
			r.Fields = map[string]Level{}
		}
		return r.Fields
	}
	return nil
}

// OverrideFor returns the explicit level set on a node, if any.
func (r *RolePermissions) OverrideFor(kind NodeKind, id string) (Level, bool) {
	l, ok := r.overrides(kind)[id]
	return l, ok
}

// Overrides lists every override of the role ordered by kind, then id.
func (r *RolePermissions) Overrides() []Override {
	var out []Override
	for _, kind := range NodeKindValues() {
		for id, l := range r.overrides(kind) {
			out = append(out, Override{Kind: kind, ID: id, Level: l})
		}
	}
	sortOverrides(out)
	return out
}

// Clone returns a deep copy.
func (r *RolePermissions) Clone() *RolePermissions {
	c := NewRolePermissions(r.Name, r.Default)
	for id, l := range r.Databases {
		c.Databases[id] = l
	}
	for id, l := range r.Tables {
		c.Tables[id] = l
	}
	for id, l := range r.Fields {
		c.Fields[id] = l
	}
	return c
}

// Validate checks the default and every override level.
func (r *RolePermissions) Validate() error {
	if r.Name == "" {
		return ErrEmptyRoleName
	}
	if !r.Default.IsALevel() {
		return fmt.Errorf("%w: default of role %q", ErrInvalidLevel, r.Name)
	}
	for _, o := range r.Overrides() {
		if o.ID == "" {
			return fmt.Errorf("%w: %s override of role %q", ErrEmptyNodeID, o.Kind, r.Name)
		}
		if !o.Level.IsALevel() {
			return fmt.Errorf("%w: %s %q of role %q", ErrInvalidLevel, o.Kind, o.ID, r.Name)
		}
	}
	return nil
}

func sortOverrides(o []Override) {
	sort.Slice(o, func(i, j int) bool {
		if o[i].Kind != o[j].Kind {
			return o[i].Kind < o[j].Kind
		}
		return o[i].ID < o[j].ID
	})
}
