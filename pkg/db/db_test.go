package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20250101000000_create_roles.up.sql",
		"20250101000100_create_permission_overrides.up.sql",
		"20250101000200_create_audit_messages.up.sql",
	}, files)
}

func TestConnect_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Connect(Config{})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestConnect_WithConn(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	gdb, err := Connect(Config{Conn: conn})
	require.NoError(t, err)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, gdb.Exec("SELECT 1").Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewMigrator_RequiresURL(t *testing.T) {
	_, err := NewMigrator("")
	assert.Error(t, err)
}
