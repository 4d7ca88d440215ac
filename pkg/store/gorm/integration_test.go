package gorm

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/doodlesbykumbi/dbperm/pkg/db"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// TestMatrixStore_Postgres runs the store against a real PostgreSQL started
// with testcontainers. Set INTEGRATION_TEST=1 to run it.
func TestMatrixStore_Postgres(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dbperm_test"),
		tcpostgres.WithUsername("dbperm"),
		tcpostgres.WithPassword("dbperm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dbURL, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := db.NewMigrator(dbURL)
	require.NoError(t, err)
	changed, err := migrator.Up()
	require.NoError(t, err)
	assert.True(t, changed)
	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.NotZero(t, version)
	require.NoError(t, migrator.Close())

	gdb, err := db.Connect(db.Config{URL: dbURL})
	require.NoError(t, err)
	s := NewMatrixStore(gdb)

	editor := permission.NewRolePermissions("Editor", permission.LevelWrite)
	editor.Databases["db1"] = permission.LevelRead
	editor.Fields["db1_users_email"] = permission.LevelNone
	require.NoError(t, s.SaveRole(ctx, editor))

	// Saving again replaces the overrides.
	delete(editor.Fields, "db1_users_email")
	editor.Tables["db1_orders"] = permission.LevelDelete
	require.NoError(t, s.SaveRole(ctx, editor))
	require.NoError(t, s.SaveRole(ctx, permission.NewRolePermissions("Viewer", permission.LevelRead)))

	roles, err := s.LoadRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, editor.Overrides(), roles[0].Overrides())
	assert.Equal(t, permission.LevelRead, roles[1].Default)

	require.NoError(t, s.DeleteRole(ctx, "Editor"))
	roles, err = s.LoadRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)

	assert.NoError(t, NewHealthStore(gdb).CheckConnectivity(ctx))
}
