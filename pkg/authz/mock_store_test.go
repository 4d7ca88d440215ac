package authz

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// MockMatrixStore implements store.MatrixStore for testing using testify/mock
type MockMatrixStore struct {
	mock.Mock
}

func (m *MockMatrixStore) LoadRoles(ctx context.Context) ([]*permission.RolePermissions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.RolePermissions), args.Error(1)
}

func (m *MockMatrixStore) SaveRole(ctx context.Context, role *permission.RolePermissions) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockMatrixStore) DeleteRole(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
