package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbperm/pkg/audit"
	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/config"
	"github.com/doodlesbykumbi/dbperm/pkg/db"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
	"github.com/doodlesbykumbi/dbperm/pkg/store"
	gormstore "github.com/doodlesbykumbi/dbperm/pkg/store/gorm"
)

// loadCatalog reads catalog_path, or returns the sample catalog when unset.
func loadCatalog(c *config.Config) (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Sample(), nil
	}
	return catalog.LoadFile(c.CatalogPath)
}

// backend is the storage selected by configuration.
type backend struct {
	matrix store.MatrixStore
	health store.HealthStore
	db     *gorm.DB
}

func openBackend(c *config.Config) (*backend, error) {
	if c.DatabaseURL == "" {
		mem := store.NewMemory()
		return &backend{matrix: mem, health: mem}, nil
	}
	gdb, err := db.Connect(db.Config{URL: c.DatabaseURL, Debug: c.LogLevel == "debug"})
	if err != nil {
		return nil, err
	}
	return &backend{
		matrix: gormstore.NewMatrixStore(gdb),
		health: gormstore.NewHealthStore(gdb),
		db:     gdb,
	}, nil
}

func (b *backend) Close() {
	if b.db == nil {
		return
	}
	if sqlDB, err := b.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// auditLogger honours audit_enabled and persists to audit_messages when a
// database is configured.
func auditLogger(c *config.Config, b *backend) *audit.Logger {
	if !c.AuditEnabled {
		return audit.Discard()
	}
	l := audit.NewLogger()
	if b != nil && b.db != nil {
		if sqlDB, err := b.db.DB(); err == nil {
			l.SetSink(audit.NewStore(sqlDB))
		}
	}
	return l
}

// offlineService builds an in-memory service from a policy file, falling
// back to the configured store when no policy is given. Offline queries do
// not audit.
func offlineService(ctx context.Context, c *config.Config, policyPath string) (*authz.Service, func(), error) {
	cat, err := loadCatalog(c)
	if err != nil {
		return nil, nil, err
	}
	mode, err := c.InheritanceMode()
	if err != nil {
		return nil, nil, err
	}
	if policyPath == "" {
		policyPath = c.PolicyPath
	}

	if policyPath != "" {
		svc := authz.NewService(cat, authz.WithInheritance(mode), authz.WithLogger(logger))
		doc, err := policy.ParseFile(policyPath)
		if err != nil {
			return nil, nil, err
		}
		if err := svc.ApplyPolicy(ctx, doc, policyPath); err != nil {
			return nil, nil, err
		}
		return svc, func() {}, nil
	}

	if c.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("no policy file given and no database configured")
	}
	b, err := openBackend(c)
	if err != nil {
		return nil, nil, err
	}
	svc := authz.NewService(cat, authz.WithInheritance(mode), authz.WithStore(b.matrix), authz.WithLogger(logger))
	if err := svc.Load(ctx); err != nil {
		b.Close()
		return nil, nil, err
	}
	return svc, b.Close, nil
}
