package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbperm/pkg/config"
)

// configurationCmd represents the configuration command
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect dbperm configuration",
	Run:   requireSubcommand("show"),
}

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

The values displayed by this command reflect the current state of the
configuration sources, the environment variables and config file. They may
not match the values used by an already running server.

Config file location: /etc/dbperm/dbperm.yml (or DBPERM_CONFIG_PATH)

Example:
  dbpermctl configuration show
  dbpermctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(os.Stdout, cfg, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(out io.Writer, c *config.Config, output string) error {
	if output == "json" {
		jsonOutput, err := c.FormatJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, jsonOutput)
		return err
	}

	_, err := fmt.Fprint(out, c.FormatText())
	return err
}
