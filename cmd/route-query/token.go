package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smarttransit/saferoute-backend/internal/utils"
	"github.com/smarttransit/saferoute-backend/pkg/jwt"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token OPERATOR",
	Short: "Issue an admin token for the graph reload endpoint",
	Long:  "Signs an admin JWT with ADMIN_JWT_SECRET (or --secret) for use as a Bearer token.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		expiry, _ := cmd.Flags().GetDuration("expiry")
		roles, _ := cmd.Flags().GetString("roles")

		if secret == "" {
			return fmt.Errorf("no signing secret: set ADMIN_JWT_SECRET or pass --secret")
		}

		token, err := jwt.NewService(secret, expiry).GenerateAdminToken(args[0], strings.Split(roles, ","))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random ADMIN_JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := utils.GenerateSecret(32)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_JWT_SECRET=%s\n", secret)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", os.Getenv("ADMIN_JWT_SECRET"), "HS256 signing secret")
	tokenCmd.Flags().Duration("expiry", time.Hour, "token lifetime")
	tokenCmd.Flags().String("roles", "admin", "comma separated roles")

	rootCmd.AddCommand(tokenCmd, secretCmd)
}
