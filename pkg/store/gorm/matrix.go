package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/dbperm/pkg/model"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/store"
)

// Ensure MatrixStore implements store.MatrixStore
var _ store.MatrixStore = (*MatrixStore)(nil)

// MatrixStore implements store.MatrixStore using GORM
type MatrixStore struct {
	db *gorm.DB
}

// NewMatrixStore creates a new MatrixStore
func NewMatrixStore(db *gorm.DB) *MatrixStore {
	return &MatrixStore{db: db}
}

// LoadRoles reads every role and its overrides.
func (s *MatrixStore) LoadRoles(ctx context.Context) ([]*permission.RolePermissions, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	var overrides []model.Override
	if err := s.db.WithContext(ctx).Order("role_name, node_kind, node_id").Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	byName := make(map[string]*permission.RolePermissions, len(roles))
	out := make([]*permission.RolePermissions, 0, len(roles))
	for _, row := range roles {
		def, err := permission.ParseLevel(row.DefaultLevel)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", row.Name, err)
		}
		r := permission.NewRolePermissions(row.Name, def)
		byName[row.Name] = r
		out = append(out, r)
	}

	for _, row := range overrides {
		r, ok := byName[row.RoleName]
		if !ok {
			continue
		}
		kind, err := permission.NodeKindString(row.NodeKind)
		if err != nil {
			return nil, fmt.Errorf("override %s/%s: %w", row.RoleName, row.NodeID, err)
		}
		level, err := permission.ParseLevel(row.Level)
		if err != nil {
			return nil, fmt.Errorf("override %s/%s: %w", row.RoleName, row.NodeID, err)
		}
		switch kind {
		case permission.KindDatabase:
			r.Databases[row.NodeID] = level
		case permission.KindTable:
			r.Tables[row.NodeID] = level
		case permission.KindField:
			r.Fields[row.NodeID] = level
		}
	}
	return out, nil
}

// SaveRole upserts the role row and replaces its overrides in one
// transaction.
func (s *MatrixStore) SaveRole(ctx context.Context, role *permission.RolePermissions) error {
	if err := role.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.Role{Name: role.Name, DefaultLevel: role.Default.String()}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_level", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to save role %s: %w", role.Name, err)
		}

		if err := tx.Where("role_name = ?", role.Name).Delete(&model.Override{}).Error; err != nil {
			return fmt.Errorf("failed to clear overrides of %s: %w", role.Name, err)
		}

		overrides := role.Overrides()
		if len(overrides) == 0 {
			return nil
		}
		rows := make([]model.Override, 0, len(overrides))
		for _, o := range overrides {
			rows = append(rows, model.Override{
				RoleName: role.Name,
				NodeKind: o.Kind.String(),
				NodeID:   o.ID,
				Level:    o.Level.String(),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save overrides of %s: %w", role.Name, err)
		}
		return nil
	})
}

// DeleteRole removes a role and its overrides.
func (s *MatrixStore) DeleteRole(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_name = ?", name).Delete(&model.Override{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&model.Role{}).Error
	})
}
