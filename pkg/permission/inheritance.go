package permission

import (
	"fmt"
	"strings"
)

// Inheritance selects how ancestor overrides flow down to a node.
type Inheritance int

const (
	// InheritanceExplicit inherits from the nearest ancestor that has an
	// override, whatever its value.
	InheritanceExplicit Inheritance = iota
	// InheritanceLegacy inherits from an ancestor only when its effective
	// level differs from the role default. An ancestor explicitly set to
	// the default is skipped.
	InheritanceLegacy
)

func (i Inheritance) String() string {
	switch i {
	case InheritanceExplicit:
		return "explicit"
	case InheritanceLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Inheritance(%d)", int(i))
	}
}

// ParseInheritance parses "explicit" or "legacy". The empty string selects
// InheritanceExplicit.
func ParseInheritance(s string) (Inheritance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "explicit":
		return InheritanceExplicit, nil
	case "legacy":
		return InheritanceLegacy, nil
	default:
		return InheritanceExplicit, fmt.Errorf("unknown inheritance mode %q", s)
	}
}
