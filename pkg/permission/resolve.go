package permission

// Resolution is an effective level together with where it came from.
type Resolution struct {
	Level Level `json:"level"`
	// Source is the node whose override produced Level. It is nil when the
	// role default applied or the role is unknown.
	Source *Node `json:"source,omitempty"`
	// Inherited is true when Source is an ancestor of the resolved node.
	Inherited bool `json:"inherited"`
}

// FromDefault reports whether the level is the role default.
func (r Resolution) FromDefault() bool {
	return r.Source == nil
}

// Resolve returns the effective level of a role on a node. Unknown roles
// resolve to LevelNone. An error is only returned for malformed nodes.
func (m *Matrix) Resolve(role string, n Node) (Level, error) {
	res, err := m.Explain(role, n)
	return res.Level, err
}

// Explain is Resolve with the provenance of the level.
func (m *Matrix) Explain(role string, n Node) (Resolution, error) {
	if err := n.Validate(); err != nil {
		return Resolution{Level: LevelNone}, err
	}
	r, ok := m.roles[role]
	if !ok {
		return Resolution{Level: LevelNone}, nil
	}
	res := m.explain(r, n)
	res.Inherited = res.Source != nil && res.Source.Kind != n.Kind
	return res, nil
}

func (m *Matrix) explain(r *RolePermissions, n Node) Resolution {
	if l, ok := r.OverrideFor(n.Kind, n.ID); ok {
		src := n
		return Resolution{Level: l, Source: &src}
	}
	if m.inheritance == InheritanceLegacy {
		return m.explainLegacy(r, n)
	}
	for p, ok := n.Parent(); ok; p, ok = p.Parent() {
		if l, found := r.OverrideFor(p.Kind, p.ID); found {
			src := p
			return Resolution{Level: l, Source: &src}
		}
	}
	return Resolution{Level: r.Default}
}

// explainLegacy uses "differs from the default" as the inheritance test.
func (m *Matrix) explainLegacy(r *RolePermissions, n Node) Resolution {
	if n.Kind == KindField {
		t := m.explain(r, TableNode(n.DatabaseID, n.TableID))
		if t.Level != r.Default {
			return t
		}
	}
	if n.Kind == KindField || n.Kind == KindTable {
		d := m.explain(r, DatabaseNode(n.DatabaseID))
		if d.Level != r.Default {
			return d
		}
	}
	return Resolution{Level: r.Default}
}
