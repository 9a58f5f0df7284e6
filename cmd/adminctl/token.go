package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/config"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/token"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and inspect bearer tokens",
	Long:  `Issue and inspect the access and refresh tokens of the admin gateway.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand (issue, verify)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an access and refresh token",
	Long: `Issue an access and refresh token signed with the configured secrets.

Example:
  adminctl token issue
  adminctl token issue --id u42 --email ops@newtonbotics.com --role admin`,
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		perms, _ := cmd.Flags().GetStringSlice("permission")

		issuer, err := configuredIssuer()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		subject := token.Subject{ID: id, Email: email, Role: role, Permissions: perms}
		if err := issueTokens(os.Stdout, issuer, subject); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue tokens: %v\n", err)
			os.Exit(1)
		}
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify a token and print its claims",
	Long: `Verify a token with the configured secrets and print its claims.

Example:
  adminctl token verify eyJhbGciOi...
  adminctl token verify --refresh eyJhbGciOi...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		refresh, _ := cmd.Flags().GetBool("refresh")

		issuer, err := configuredIssuer()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := verifyToken(os.Stdout, issuer, args[0], refresh); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenVerifyCmd)

	tokenIssueCmd.Flags().String("id", directory.DefaultAdminID, "Subject id")
	tokenIssueCmd.Flags().String("email", directory.DefaultAdminEmail, "Subject email")
	tokenIssueCmd.Flags().String("role", "admin", "Subject role")
	tokenIssueCmd.Flags().StringSlice("permission", directory.DefaultPermissions, "Subject permissions")

	tokenVerifyCmd.Flags().Bool("refresh", false, "Verify as a refresh token")
}

func configuredIssuer() (*token.Issuer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newIssuer(cfg)
}

func issueTokens(w io.Writer, issuer *token.Issuer, s token.Subject) error {
	access, err := issuer.IssueAccessToken(s)
	if err != nil {
		return err
	}
	refresh, err := issuer.IssueRefreshToken(s.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    int(issuer.AccessTTL().Seconds()),
	})
}

func verifyToken(w io.Writer, issuer *token.Issuer, raw string, refresh bool) error {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

	verify := issuer.VerifyAccess
	if refresh {
		verify = issuer.VerifyRefresh
	}
	claims, err := verify(raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}
