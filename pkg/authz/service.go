package authz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/audit"
	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
	"github.com/doodlesbykumbi/dbperm/pkg/store"
)

var (
	ErrNodeNotFound = errors.New("node not found in catalog")
	ErrRoleNotFound = permission.ErrRoleNotFound
)

// Service serializes access to a permission matrix.
type Service struct {
	mu      sync.RWMutex
	matrix  *permission.Matrix
	catalog *catalog.Catalog
	store   store.MatrixStore
	audit   *audit.Logger
	logger  *zap.Logger
}

type Option func(*Service)

func WithStore(s store.MatrixStore) Option {
	return func(svc *Service) { svc.store = s }
}

func WithAudit(l *audit.Logger) Option {
	return func(svc *Service) { svc.audit = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func WithInheritance(mode permission.Inheritance) Option {
	return func(svc *Service) { svc.matrix = permission.NewMatrix(permission.WithInheritance(mode)) }
}

// NewService returns a service over an empty matrix. Without WithStore the
// state lives in memory only.
func NewService(cat *catalog.Catalog, opts ...Option) *Service {
	svc := &Service{
		matrix:  permission.NewMatrix(),
		catalog: cat,
		store:   store.NewMemory(),
		audit:   audit.Discard(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Load replaces the in-memory matrix with the roles held by the store.
func (s *Service) Load(ctx context.Context) error {
	roles, err := s.store.LoadRoles(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := permission.NewMatrix(permission.WithInheritance(s.matrix.Inheritance()))
	for _, r := range roles {
		if err := m.PutRole(r); err != nil {
			return fmt.Errorf("stored role %s: %w", r.Name, err)
		}
	}
	s.matrix = m
	s.logger.Info("loaded permission matrix", zap.Int("roles", len(roles)))
	return nil
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) Inheritance() permission.Inheritance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix.Inheritance()
}

// Node looks up a node id in the catalog.
func (s *Service) Node(id string) (permission.Node, error) {
	n, ok := s.catalog.Lookup(id)
	if !ok {
		return permission.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Resolve returns the effective level of role on a catalog node. Unknown
// roles resolve to None.
func (s *Service) Resolve(ctx context.Context, role, nodeID string) (permission.Level, error) {
	res, err := s.Explain(ctx, role, nodeID)
	return res.Level, err
}

// Explain is Resolve with provenance.
func (s *Service) Explain(_ context.Context, role, nodeID string) (permission.Resolution, error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return permission.Resolution{Level: permission.LevelNone}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix.Explain(role, n)
}

// Decision is the outcome of a privilege check.
type Decision struct {
	Allowed    bool                  `json:"allowed"`
	Privilege  permission.Level      `json:"privilege"`
	Resolution permission.Resolution `json:"resolution"`
}

// Check reports whether role holds at least privilege on a node.
func (s *Service) Check(ctx context.Context, role, nodeID string, privilege permission.Level) (Decision, error) {
	res, err := s.Explain(ctx, role, nodeID)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Allowed:    res.Level.Allows(privilege),
		Privilege:  privilege,
		Resolution: res,
	}
	s.audit.Log(ctx, audit.CheckEvent{
		Subject:   SubjectFrom(ctx),
		Role:      role,
		NodeID:    nodeID,
		Privilege: privilege.String(),
		Effective: res.Level.String(),
		Allowed:   d.Allowed,
	})
	return d, nil
}

// Roles returns copies of every role ordered by name.
func (s *Service) Roles() []*permission.RolePermissions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix.Snapshot()
}

func (s *Service) Role(name string) (*permission.RolePermissions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.matrix.Role(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	return r, nil
}

// Entry is one row of a role's effective permission matrix.
type Entry struct {
	Node       permission.Node       `json:"node"`
	Name       string                `json:"name"`
	Resolution permission.Resolution `json:"resolution"`
}

// Matrix resolves role against every catalog node in catalog order.
func (s *Service) Matrix(_ context.Context, role string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.matrix.HasRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	var entries []Entry
	err := s.catalog.Walk(func(n permission.Node, name string) error {
		res, err := s.matrix.Explain(role, n)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Node: n, Name: name, Resolution: res})
		return nil
	})
	return entries, err
}

// Export snapshots every role as a policy document.
func (s *Service) Export() *policy.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return policy.Export(s.matrix)
}
