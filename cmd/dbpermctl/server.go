package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
	"github.com/doodlesbykumbi/dbperm/pkg/server"
	"github.com/doodlesbykumbi/dbperm/pkg/server/endpoints"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the dbperm API server",
	Long: `Run the dbperm API server.

With database_url configured, roles are stored in Postgres and database
migrations run on startup (use --no-migrate to skip). Without it, roles
live in memory.

If policy_path is set the policy is applied on startup, and with --watch
(or watch_policy) it is re-applied whenever the file changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if bind, _ := cmd.Flags().GetString("bind-address"); cmd.Flags().Changed("bind-address") {
			cfg.ListenAddress = bind
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			cfg.WatchPolicy = true
		}
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 8080, "server listen port (default from configuration)")
	serverCmd.Flags().StringP("bind-address", "b", "127.0.0.1", "server bind address (default from configuration)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch", false, "re-apply policy_path whenever it changes")
}

func runServer(noMigrate bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" && !noMigrate {
		logger.Info("running database migrations")
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	mode, err := cfg.InheritanceMode()
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := authz.NewService(cat,
		authz.WithInheritance(mode),
		authz.WithStore(b.matrix),
		authz.WithAudit(auditLogger(cfg, b)),
		authz.WithLogger(logger),
	)
	if err := svc.Load(ctx); err != nil {
		return err
	}

	if cfg.PolicyPath != "" {
		doc, err := policy.ParseFile(cfg.PolicyPath)
		if err != nil {
			return err
		}
		if err := svc.ApplyPolicy(authz.WithSubject(ctx, "startup"), doc, cfg.PolicyPath); err != nil {
			return err
		}
	}

	s := server.NewServer(svc, b.health, cfg.ListenAddress, strconv.Itoa(cfg.Port),
		server.WithAuthSecret(cfg.AuthSecret),
		server.WithLogger(logger),
	)
	endpoints.RegisterAll(s)
	if cfg.AuthSecret == "" {
		logger.Warn("auth_secret is not set; the API is unauthenticated")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return s.Shutdown(shutdownCtx)
	})
	if cfg.WatchPolicy {
		w := policy.NewWatcher(cfg.PolicyPath, func(doc *policy.Document) error {
			return svc.ApplyPolicy(authz.WithSubject(gctx, "policy-watcher"), doc, cfg.PolicyPath)
		}, logger)
		g.Go(func() error { return w.Run(gctx) })
		logger.Info("watching policy", zap.String("path", cfg.PolicyPath))
	}
	return g.Wait()
}
