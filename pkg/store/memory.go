package store

import (
	"context"
	"sort"
	"sync"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

var (
	_ MatrixStore = (*Memory)(nil)
	_ HealthStore = (*Memory)(nil)
)

// Memory keeps role records in process memory. Nothing survives a restart.
type Memory struct {
	mu    sync.Mutex
	roles map[string]*permission.RolePermissions
}

func NewMemory() *Memory {
	return &Memory{roles: map[string]*permission.RolePermissions{}}
}

func (s *Memory) LoadRoles(_ context.Context) ([]*permission.RolePermissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*permission.RolePermissions, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Memory) SaveRole(_ context.Context, role *permission.RolePermissions) error {
	if err := role.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.Name] = role.Clone()
	return nil
}

func (s *Memory) DeleteRole(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, name)
	return nil
}

func (s *Memory) CheckConnectivity(_ context.Context) error {
	return nil
}
