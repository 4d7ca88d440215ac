package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

var (
	ErrDuplicateRole = errors.New("duplicate role in policy")
	ErrUnknownNode   = errors.New("policy references a node missing from the catalog")
)

// Document is a permission policy.
type Document struct {
	Roles []*permission.RolePermissions `yaml:"roles" json:"roles"`
}

// Parse reads a YAML policy and checks it for internal consistency.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := doc.Validate(nil); err != nil {
		return nil, err
	}
	return &doc, nil
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Validate checks role records and, when cat is non-nil, that every
// override points at a catalog node of the same kind.
func (d *Document) Validate(cat *catalog.Catalog) error {
	seen := map[string]bool{}
	for _, r := range d.Roles {
		if r == nil {
			return fmt.Errorf("%w: empty role entry", permission.ErrEmptyRoleName)
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateRole, r.Name)
		}
		seen[r.Name] = true

		if cat == nil {
			continue
		}
		for _, o := range r.Overrides() {
			n, ok := cat.Lookup(o.ID)
			if !ok || n.Kind != o.Kind {
				return fmt.Errorf("%w: role %s, %s %q", ErrUnknownNode, r.Name, o.Kind, o.ID)
			}
		}
	}
	return nil
}

// Apply replaces the roles named in the document. Other roles are left
// alone. Nothing is applied if any role is invalid.
func Apply(m *permission.Matrix, d *Document) error {
	if err := d.Validate(nil); err != nil {
		return err
	}
	for _, r := range d.Roles {
		if err := m.PutRole(r); err != nil {
			return err
		}
	}
	return nil
}

// Export snapshots the matrix into a document.
func Export(m *permission.Matrix) *Document {
	return &Document{Roles: m.Snapshot()}
}

func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
