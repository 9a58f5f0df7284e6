package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/config"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/db"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage administrators in the postgres directory",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (add)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create or update an administrator",
	Long: `Create or update an administrator in the postgres directory.

The password is read from stdin. An existing record with the same id is
updated in place.

Example:
  echo -n 's3cret' | adminctl user add ops@newtonbotics.com --id u42 --first-name Ops`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		role, _ := cmd.Flags().GetString("role")
		perms, _ := cmd.Flags().GetStringSlice("permission")
		inactive, _ := cmd.Flags().GetBool("inactive")

		hash, err := hashFromReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}

		u := directory.User{
			ID:           id,
			Email:        directory.NormalizeEmail(args[0]),
			FirstName:    firstName,
			LastName:     lastName,
			Role:         role,
			Permissions:  perms,
			IsActive:     !inactive,
			PasswordHash: hash,
		}
		if u.ID == "" {
			u.ID = strings.SplitN(u.Email, "@", 2)[0]
		}

		if err := addUser(context.Background(), u); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", u.Email, err)
			os.Exit(1)
		}
		fmt.Printf("Saved administrator %s (%s)\n", u.Email, u.ID)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().String("id", "", "User id (default: the email local part)")
	userAddCmd.Flags().String("first-name", "", "First name")
	userAddCmd.Flags().String("last-name", "", "Last name")
	userAddCmd.Flags().String("role", "admin", "Role")
	userAddCmd.Flags().StringSlice("permission", directory.DefaultPermissions, "Permissions")
	userAddCmd.Flags().Bool("inactive", false, "Create the account deactivated")
}

func addUser(ctx context.Context, u directory.User) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	gormDB, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	return directory.NewGorm(gormDB).Save(ctx, u)
}
