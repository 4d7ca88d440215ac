package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbperm/pkg/server/middleware"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API bearer tokens",
	Run:   requireSubcommand("issue"),
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <subject>",
	Short: "Mint an HS256 bearer token signed with auth_secret",
	Long: `Mint an HS256 bearer token signed with auth_secret.

The subject is recorded as the acting user in audit events.

Example:
  curl -H "Authorization: Bearer $(dbpermctl token issue alice)" localhost:8080/roles`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := middleware.IssueToken(cfg.AuthSecret, args[0], ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().Duration("ttl", 8*time.Hour, "token lifetime")
}
