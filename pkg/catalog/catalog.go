// Package catalog describes the database -> table -> field tree that
// permissions are granted on.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

var (
	ErrDuplicateID = errors.New("duplicate node id")
	ErrBadPrefix   = errors.New("node id does not extend its parent id")
	// ErrAmbiguousID is returned when one table id extends a sibling's, so
	// the sibling's fields could not be told apart by prefix.
	ErrAmbiguousID = errors.New("table id extends a sibling table id")

	errStopWalk = errors.New("stop walk")
)

type Field struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Table struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

type Database struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Tables []Table `yaml:"tables,omitempty" json:"tables,omitempty"`
}

// Catalog is the full tree plus an index from node id to node.
type Catalog struct {
	Databases []Database `yaml:"databases" json:"databases"`

	index map[string]permission.Node
}

// Load parses a YAML catalog and validates it.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate checks id uniqueness and the prefix convention, and rebuilds
// the lookup index. It must not run concurrently with Lookup.
func (c *Catalog) Validate() error {
	index := map[string]permission.Node{}
	add := func(n permission.Node) error {
		if n.ID == "" {
			return fmt.Errorf("%w: empty %s id", permission.ErrEmptyNodeID, n.Kind)
		}
		if prev, ok := index[n.ID]; ok {
			return fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateID, n.ID, prev.Kind, n.Kind)
		}
		index[n.ID] = n
		return nil
	}

	for _, db := range c.Databases {
		if strings.Contains(db.ID, permission.Separator) {
			return fmt.Errorf("%w: database id %q contains %q", ErrBadPrefix, db.ID, permission.Separator)
		}
		if err := add(permission.DatabaseNode(db.ID)); err != nil {
			return err
		}
		for i, t := range db.Tables {
			for _, other := range db.Tables[i+1:] {
				if permission.IsDescendant(t.ID, other.ID) || permission.IsDescendant(other.ID, t.ID) {
					return fmt.Errorf("%w: %q and %q in database %q", ErrAmbiguousID, t.ID, other.ID, db.ID)
				}
			}
			if !permission.IsDescendant(db.ID, t.ID) {
				return fmt.Errorf("%w: table %q in database %q", ErrBadPrefix, t.ID, db.ID)
			}
			if err := add(permission.TableNode(db.ID, t.ID)); err != nil {
				return err
			}
			for _, f := range t.Fields {
				if !permission.IsDescendant(t.ID, f.ID) {
					return fmt.Errorf("%w: field %q in table %q", ErrBadPrefix, f.ID, t.ID)
				}
				if err := add(permission.FieldNode(db.ID, t.ID, f.ID)); err != nil {
					return err
				}
			}
		}
	}
	c.index = index
	return nil
}

// Lookup returns the fully qualified node for an id. Catalogs that were
// never validated are searched by walking the tree.
func (c *Catalog) Lookup(id string) (permission.Node, bool) {
	if c.index != nil {
		n, ok := c.index[id]
		return n, ok
	}
	var found permission.Node
	err := c.Walk(func(n permission.Node, _ string) error {
		if n.ID == id {
			found = n
			return errStopWalk
		}
		return nil
	})
	return found, errors.Is(err, errStopWalk)
}

// Walk visits every node depth-first in document order. Returning an error
// from fn stops the walk.
func (c *Catalog) Walk(fn func(n permission.Node, name string) error) error {
	for _, db := range c.Databases {
		if err := fn(permission.DatabaseNode(db.ID), db.Name); err != nil {
			return err
		}
		for _, t := range db.Tables {
			if err := fn(permission.TableNode(db.ID, t.ID), t.Name); err != nil {
				return err
			}
			for _, f := range t.Fields {
				if err := fn(permission.FieldNode(db.ID, t.ID, f.ID), f.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Counts returns the number of databases, tables and fields.
func (c *Catalog) Counts() (databases, tables, fields int) {
	for _, db := range c.Databases {
		databases++
		for _, t := range db.Tables {
			tables++
			fields += len(t.Fields)
		}
	}
	return databases, tables, fields
}

// Sample returns the two-database catalog the dashboard ships with.
func Sample() *Catalog {
	c := &Catalog{
		Databases: []Database{
			{
				ID: "db1", Name: "Database1",
				Tables: []Table{
					{
						ID: "db1_users", Name: "UserTable",
						Fields: []Field{
							{ID: "db1_users_id", Name: "ID"},
							{ID: "db1_users_fullname", Name: "FullName"},
							{ID: "db1_users_email", Name: "Email"},
							{ID: "db1_users_role", Name: "Role"},
						},
					},
					{
						ID: "db1_orders", Name: "OrderTable",
						Fields: []Field{
							{ID: "db1_orders_id", Name: "ID"},
							{ID: "db1_orders_amount", Name: "Amount"},
							{ID: "db1_orders_date", Name: "Date"},
						},
					},
				},
			},
			{
				ID: "db2", Name: "Database2",
				Tables: []Table{
					{
						ID: "db2_products", Name: "ProductTable",
						Fields: []Field{
							{ID: "db2_products_id", Name: "ID"},
							{ID: "db2_products_name", Name: "Name"},
							{ID: "db2_products_price", Name: "Price"},
						},
					},
				},
			},
		},
	}
	_ = c.Validate()
	return c
}
