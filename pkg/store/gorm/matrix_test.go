package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return gormDB, mock
}

func TestMatrixStore_LoadRoles(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "roles" ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "default_level", "created_at", "updated_at"}).
			AddRow("Admin", "Delete", now, now).
			AddRow("Editor", "Write", now, now))
	mock.ExpectQuery(`SELECT \* FROM "permission_overrides" ORDER BY role_name, node_kind, node_id`).
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "node_kind", "node_id", "level"}).
			AddRow("Editor", "database", "db1", "Read").
			AddRow("Editor", "field", "db1_users_email", "None").
			AddRow("Ghost", "table", "db1_users", "Read"))

	roles, err := s.LoadRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)

	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, permission.LevelDelete, roles[0].Default)
	assert.Empty(t, roles[0].Overrides())

	editor := roles[1]
	assert.Equal(t, permission.LevelWrite, editor.Default)
	assert.Equal(t, permission.LevelRead, editor.Databases["db1"])
	assert.Equal(t, permission.LevelNone, editor.Fields["db1_users_email"])
	assert.Empty(t, editor.Tables)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixStore_LoadRoles_BadLevel(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "default_level"}).AddRow("Editor", "Owner"))
	mock.ExpectQuery(`SELECT \* FROM "permission_overrides"`).
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "node_kind", "node_id", "level"}))

	_, err := s.LoadRoles(context.Background())
	assert.ErrorIs(t, err, permission.ErrInvalidLevel)
}

func TestMatrixStore_LoadRoles_QueryError(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles"`).WillReturnError(errors.New("connection refused"))

	_, err := s.LoadRoles(context.Background())
	assert.ErrorContains(t, err, "failed to load roles")
}

func TestMatrixStore_SaveRole(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	role := permission.NewRolePermissions("Editor", permission.LevelWrite)
	role.Tables["db1_users"] = permission.LevelRead

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "roles" .* ON CONFLICT \("name"\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "permission_overrides" WHERE role_name = \$1`).
		WithArgs("Editor").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO "permission_overrides"`).
		WithArgs("Editor", "table", "db1_users", "Read").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveRole(context.Background(), role))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixStore_SaveRole_NoOverrides(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "roles"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "permission_overrides"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.SaveRole(context.Background(), permission.NewRolePermissions("Viewer", permission.LevelRead)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixStore_SaveRole_RollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "roles"`).WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	err := s.SaveRole(context.Background(), permission.NewRolePermissions("Viewer", permission.LevelRead))
	assert.ErrorContains(t, err, "failed to save role Viewer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixStore_SaveRole_Invalid(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	err := s.SaveRole(context.Background(), &permission.RolePermissions{Name: "Bad", Default: permission.Level(12)})
	assert.ErrorIs(t, err, permission.ErrInvalidLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixStore_DeleteRole(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewMatrixStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "permission_overrides" WHERE role_name = \$1`).
		WithArgs("Editor").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "roles" WHERE name = \$1`).
		WithArgs("Editor").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteRole(context.Background(), "Editor"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthStore(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.CheckConnectivity(context.Background()))

	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("down"))
	assert.Error(t, s.CheckConnectivity(context.Background()))
}
