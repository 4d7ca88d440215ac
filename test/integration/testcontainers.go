package integration

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbperm/pkg/audit"
	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/db"
	"github.com/doodlesbykumbi/dbperm/pkg/server"
	"github.com/doodlesbykumbi/dbperm/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/dbperm/pkg/store/gorm"
)

const authSecret = "integration-secret"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	HTTPClient  *http.Client
}

// NewTestContext starts a PostgreSQL testcontainer and migrates it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
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
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	m, err := db.NewMigrator(connStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	if _, err := m.Up(); err != nil {
		_ = m.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	_ = m.Close()

	gdb, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestContext{
		DB:          gdb,
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Reset empties every table so scenarios start from a clean database.
func (tc *TestContext) Reset() error {
	return tc.DB.Exec("TRUNCATE roles, permission_overrides, audit_messages").Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if sqlDB, err := tc.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// ServerInstance is a dbperm server backed by the shared database, running
// in-process on a random port.
type ServerInstance struct {
	URL    string
	server *server.Server
}

// StartServer loads the stored roles into a fresh service and serves it.
// Every instance sees the same database, so restarting one exercises the
// persisted state.
func (tc *TestContext) StartServer(ctx context.Context) (*ServerInstance, error) {
	sqlDB, err := tc.DB.DB()
	if err != nil {
		return nil, err
	}
	logger := audit.NewLogger()
	logger.SetWriter(io.Discard)
	logger.SetSink(audit.NewStore(sqlDB))

	svc := authz.NewService(catalog.Sample(),
		authz.WithStore(gormstore.NewMatrixStore(tc.DB)),
		authz.WithAudit(logger),
		authz.WithLogger(zap.NewNop()),
	)
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	host, port, _ := net.SplitHostPort(l.Addr().String())
	s := server.NewServer(svc, gormstore.NewHealthStore(tc.DB), host, port,
		server.WithAuthSecret(authSecret),
		server.WithAccessLog(io.Discard),
	)
	endpoints.RegisterAll(s)
	go func() {
		_ = s.Serve(l)
	}()

	return &ServerInstance{URL: "http://" + l.Addr().String(), server: s}, nil
}

// Stop shuts the server down.
func (si *ServerInstance) Stop(ctx context.Context) {
	if si == nil {
		return
	}
	_ = si.server.Shutdown(ctx)
}
