package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/config"
	"github.com/doodlesbykumbi/dbperm/pkg/logging"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dbpermctl",
	Short: "Database permission inheritance service",
	Long: `Resolve and manage role permissions over databases, tables and fields.

Overrides set on a database flow down to its tables and fields, and
overrides on a table flow down to its fields, unless a more specific
override exists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			loaded.LogLevel = lvl
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		l, err := logging.New(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides DBPERM_LOG_LEVEL")
}

// requireSubcommand is the Run of parent commands.
func requireSubcommand(names string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		fmt.Printf("error: Command '%s' requires a subcommand (%s)\n", cmd.Name(), names)
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
