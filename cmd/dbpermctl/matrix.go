package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbperm/pkg/report"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix <role>",
	Short: "Print the effective permissions of a role for every catalog node",
	Long: `Print the effective permissions of a role for every catalog node.

Example:
  dbpermctl matrix Viewer --policy policy.yml
  dbpermctl matrix Viewer --format html > viewer.html`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		policyPath, _ := cmd.Flags().GetString("policy")
		format, _ := cmd.Flags().GetString("format")
		if err := runMatrix(cmd.Context(), os.Stdout, policyPath, args[0], format); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render matrix: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(matrixCmd)
	matrixCmd.Flags().String("policy", "", "policy file to evaluate (default policy_path)")
	matrixCmd.Flags().StringP("format", "f", "text", "Output format (text, markdown or html)")
}

func runMatrix(ctx context.Context, out io.Writer, policyPath, role, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, done, err := offlineService(ctx, cfg, policyPath)
	if err != nil {
		return err
	}
	defer done()

	entries, err := svc.Matrix(ctx, role)
	if err != nil {
		return err
	}
	r, err := svc.Role(role)
	if err != nil {
		return err
	}
	return report.Report{Role: r, Entries: entries}.Render(out, f)
}
