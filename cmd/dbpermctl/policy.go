package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage permission policies",
	Long:  `Validate, export and watch YAML permission policies.`,
	Run:   requireSubcommand("validate, export, load, watch"),
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a policy file against the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := validatePolicy(os.Stdout, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid policy: %v\n", err)
			os.Exit(1)
		}
	},
}

var policyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored roles as a policy document",
	Long: `Print the roles held by the configured database as a YAML policy
document that "policy load" or policy_path accept.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := exportPolicy(cmd.Context(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export policy: %v\n", err)
			os.Exit(1)
		}
	},
}

var policyLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Apply a policy file to the configured database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := loadPolicy(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
			os.Exit(1)
		}
	},
}

var policyWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a policy file and apply it to the configured database on change",
	Long: `Watch a policy file and apply it whenever it is written or replaced.

Example:
  dbpermctl policy watch /etc/dbperm/policy.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPolicy(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch policy: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd, policyExportCmd, policyLoadCmd, policyWatchCmd)
}

func validatePolicy(out io.Writer, path string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	doc, err := policy.ParseFile(path)
	if err != nil {
		return err
	}
	if err := doc.Validate(cat); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %d roles OK\n", path, len(doc.Roles))
	return err
}

func exportPolicy(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, done, err := storedService(ctx)
	if err != nil {
		return err
	}
	defer done()

	data, err := svc.Export().Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// storedService is a service over the configured database with auditing.
func storedService(ctx context.Context) (*authz.Service, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database_url is required")
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	mode, err := cfg.InheritanceMode()
	if err != nil {
		return nil, nil, err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := authz.NewService(cat,
		authz.WithInheritance(mode),
		authz.WithStore(b.matrix),
		authz.WithAudit(auditLogger(cfg, b)),
		authz.WithLogger(logger),
	)
	if err := svc.Load(ctx); err != nil {
		b.Close()
		return nil, nil, err
	}
	return svc, b.Close, nil
}

func loadPolicy(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, done, err := storedService(ctx)
	if err != nil {
		return err
	}
	defer done()

	doc, err := policy.ParseFile(path)
	if err != nil {
		return err
	}
	if err := svc.ApplyPolicy(authz.WithSubject(ctx, "dbpermctl"), doc, path); err != nil {
		return err
	}
	fmt.Printf("Loaded %d roles from %s\n", len(doc.Roles), path)
	return nil
}

func watchPolicy(path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, done, err := storedService(ctx)
	if err != nil {
		return err
	}
	defer done()

	ctx = authz.WithSubject(ctx, "policy-watcher")
	w := policy.NewWatcher(path, func(doc *policy.Document) error {
		return svc.ApplyPolicy(ctx, doc, path)
	}, logger)

	logger.Info("watching policy file; press Ctrl+C to stop", zap.String("path", path))
	return w.Run(ctx)
}
