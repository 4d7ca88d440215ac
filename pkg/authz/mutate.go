package authz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/audit"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
)

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// persist saves the current record of role. On failure the in-memory record
// is put back to prev. Callers hold the write lock.
func (s *Service) persist(ctx context.Context, role string, prev *permission.RolePermissions) error {
	cur, _ := s.matrix.Role(role)
	if err := s.store.SaveRole(ctx, cur); err != nil {
		if prev != nil {
			_ = s.matrix.PutRole(prev)
		} else {
			_ = s.matrix.RemoveRole(role)
		}
		s.logger.Error("failed to persist role", zap.String("role", role), zap.Error(err))
		return fmt.Errorf("failed to persist role %s: %w", role, err)
	}
	return nil
}

// CreateRole adds a role with no overrides.
func (s *Service) CreateRole(ctx context.Context, name string, def permission.Level) (err error) {
	defer func() {
		s.audit.Log(ctx, audit.RoleEvent{
			Subject:      SubjectFrom(ctx),
			Role:         name,
			Operation:    "create",
			Default:      def.String(),
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.matrix.AddRole(name, def); err != nil {
		return err
	}
	return s.persist(ctx, name, nil)
}

// DeleteRole removes a role and its overrides.
func (s *Service) DeleteRole(ctx context.Context, name string) (err error) {
	defer func() {
		s.audit.Log(ctx, audit.RoleEvent{
			Subject:      SubjectFrom(ctx),
			Role:         name,
			Operation:    "delete",
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.matrix.Role(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	if err := s.store.DeleteRole(ctx, name); err != nil {
		return fmt.Errorf("failed to delete role %s: %w", name, err)
	}
	_ = s.matrix.RemoveRole(prev.Name)
	return nil
}

// SetDefault changes the default level of a role.
func (s *Service) SetDefault(ctx context.Context, role string, level permission.Level) (err error) {
	var previous string
	defer func() {
		s.audit.Log(ctx, audit.DefaultEvent{
			Subject:      SubjectFrom(ctx),
			Role:         role,
			Previous:     previous,
			Level:        level.String(),
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.matrix.Role(role)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	previous = prev.Default.String()
	if err := s.matrix.SetDefault(role, level); err != nil {
		return err
	}
	return s.persist(ctx, role, prev)
}

// SetOverride sets the level of role on a catalog node and returns the
// descendant overrides removed because they now match.
func (s *Service) SetOverride(ctx context.Context, role, nodeID string, level permission.Level) (removed []permission.Override, err error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return nil, err
	}
	defer func() {
		ids := make([]string, 0, len(removed))
		for _, o := range removed {
			ids = append(ids, o.ID)
		}
		s.audit.Log(ctx, audit.OverrideEvent{
			Subject:      SubjectFrom(ctx),
			Role:         role,
			NodeKind:     n.Kind.String(),
			NodeID:       n.ID,
			Level:        level.String(),
			Removed:      ids,
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.matrix.Role(role)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	removed, err = s.matrix.SetOverride(role, n, level)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, role, prev); err != nil {
		return nil, err
	}
	s.logger.Debug("override set",
		zap.String("role", role),
		zap.Stringer("node", n),
		zap.Stringer("level", level),
		zap.Int("removed", len(removed)))
	return removed, nil
}

// ClearOverride removes the override of role on a node, reporting whether
// there was one.
func (s *Service) ClearOverride(ctx context.Context, role, nodeID string) (cleared bool, err error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return false, err
	}
	defer func() {
		if err == nil && !cleared {
			return
		}
		s.audit.Log(ctx, audit.OverrideEvent{
			Subject:      SubjectFrom(ctx),
			Role:         role,
			NodeKind:     n.Kind.String(),
			NodeID:       n.ID,
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.matrix.Role(role)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	cleared, err = s.matrix.ClearOverride(role, n)
	if err != nil || !cleared {
		return cleared, err
	}
	if err := s.persist(ctx, role, prev); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyPolicy replaces every role named in doc, checking node ids against
// the catalog first. Roles persisted before a store failure stay applied.
func (s *Service) ApplyPolicy(ctx context.Context, doc *policy.Document, source string) (err error) {
	defer func() {
		s.audit.Log(ctx, audit.PolicyEvent{
			Subject:      SubjectFrom(ctx),
			Source:       source,
			Roles:        len(doc.Roles),
			Success:      err == nil,
			ErrorMessage: errString(err),
		})
	}()

	if err := doc.Validate(s.catalog); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, r := range doc.Roles {
		prev, _ := s.matrix.Role(r.Name)
		if err := s.matrix.PutRole(r); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.persist(ctx, r.Name, prev); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		s.logger.Info("applied policy", zap.String("source", source), zap.Int("roles", len(doc.Roles)))
	}
	return errors.Join(errs...)
}
