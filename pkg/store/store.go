package store

import (
	"context"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// MatrixStore persists role permission records.
type MatrixStore interface {
	// LoadRoles returns every persisted role ordered by name.
	LoadRoles(ctx context.Context) ([]*permission.RolePermissions, error)

	// SaveRole replaces the persisted record of a role, overrides included.
	SaveRole(ctx context.Context, role *permission.RolePermissions) error

	// DeleteRole removes a role and its overrides. Deleting an unknown
	// role is not an error.
	DeleteRole(ctx context.Context, name string) error
}

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies the backing store is reachable
	CheckConnectivity(ctx context.Context) error
}
