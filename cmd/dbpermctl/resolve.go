package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <role> <node>",
	Short: "Print the effective permission level of a role on a node",
	Long: `Print the effective permission level of a role on a node.

Roles come from --policy, policy_path, or the configured database, in that
order. Unknown roles resolve to None.

Example:
  dbpermctl resolve Editor db1_users_email --policy policy.yml`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		policyPath, _ := cmd.Flags().GetString("policy")
		if err := runResolve(cmd.Context(), os.Stdout, policyPath, args[0], args[1], ""); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve: %v\n", err)
			os.Exit(1)
		}
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <role> <node>",
	Short: "Print the effective level of a role on a node and where it comes from",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		policyPath, _ := cmd.Flags().GetString("policy")
		output, _ := cmd.Flags().GetString("output")
		if err := runResolve(cmd.Context(), os.Stdout, policyPath, args[0], args[1], output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to explain: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, explainCmd} {
		rootCmd.AddCommand(c)
		c.Flags().String("policy", "", "policy file to evaluate (default policy_path)")
	}
	explainCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

// runResolve prints the level alone when explain is empty, otherwise the
// provenance as "text" or "json".
func runResolve(ctx context.Context, out io.Writer, policyPath, role, nodeID, explain string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, done, err := offlineService(ctx, cfg, policyPath)
	if err != nil {
		return err
	}
	defer done()

	if explain == "" {
		lvl, err := svc.Resolve(ctx, role, nodeID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, lvl)
		return err
	}

	res, err := svc.Explain(ctx, role, nodeID)
	if err != nil {
		return err
	}
	if explain == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprintln(out, describe(svc, role, nodeID, res))
	return err
}

func describe(svc *authz.Service, role, nodeID string, res permission.Resolution) string {
	switch {
	case res.FromDefault():
		if _, err := svc.Role(role); err != nil {
			return fmt.Sprintf("%s: unknown role %s", res.Level, role)
		}
		return fmt.Sprintf("%s: default of role %s", res.Level, role)
	case res.Inherited:
		return fmt.Sprintf("%s: inherited from %s", res.Level, res.Source)
	default:
		return fmt.Sprintf("%s: override on %s", res.Level, res.Source)
	}
}
