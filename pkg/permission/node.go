package permission

import (
	"fmt"
	"strings"
)

// Separator joins a parent id and a child name in the id of the child.
const Separator = "_"

// Node identifies a database, table or field together with the ids of its
// ancestors.
type Node struct {
	Kind       NodeKind `json:"kind"`
	ID         string   `json:"id"`
	DatabaseID string   `json:"database_id,omitempty"`
	TableID    string   `json:"table_id,omitempty"`
}

func DatabaseNode(id string) Node {
	return Node{Kind: KindDatabase, ID: id}
}

func TableNode(databaseID, id string) Node {
	return Node{Kind: KindTable, ID: id, DatabaseID: databaseID}
}

func FieldNode(databaseID, tableID, id string) Node {
	return Node{Kind: KindField, ID: id, DatabaseID: databaseID, TableID: tableID}
}

// Validate checks that the node carries the ancestor ids its kind requires
// and that its id extends them.
func (n Node) Validate() error {
	if n.ID == "" {
		return ErrEmptyNodeID
	}
	switch n.Kind {
	case KindDatabase:
		return nil
	case KindTable:
		if n.DatabaseID == "" {
			return fmt.Errorf("%w: table %q has no database id", ErrMissingAncestor, n.ID)
		}
		if !IsDescendant(n.DatabaseID, n.ID) {
			return fmt.Errorf("%w: table %q is not in database %q", ErrAncestorMismatch, n.ID, n.DatabaseID)
		}
		return nil
	case KindField:
		if n.DatabaseID == "" || n.TableID == "" {
			return fmt.Errorf("%w: field %q needs database and table ids", ErrMissingAncestor, n.ID)
		}
		if !IsDescendant(n.TableID, n.ID) {
			return fmt.Errorf("%w: field %q is not in table %q", ErrAncestorMismatch, n.ID, n.TableID)
		}
		if !IsDescendant(n.DatabaseID, n.TableID) {
			return fmt.Errorf("%w: table %q is not in database %q", ErrAncestorMismatch, n.TableID, n.DatabaseID)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKind, n.Kind)
	}
}

// Parent returns the enclosing node. Databases have no parent.
func (n Node) Parent() (Node, bool) {
	switch n.Kind {
	case KindField:
		return TableNode(n.DatabaseID, n.TableID), true
	case KindTable:
		return DatabaseNode(n.DatabaseID), true
	default:
		return Node{}, false
	}
}

func (n Node) String() string {
	return n.Kind.String() + ":" + n.ID
}

// IsDescendant reports whether id sits below ancestorID under the prefix
// convention.
func IsDescendant(ancestorID, id string) bool {
	return strings.HasPrefix(id, ancestorID+Separator)
}

// ChildID builds the id of a child node from its parent id and name.
func ChildID(parentID, name string) string {
	return parentID + Separator + name
}
