package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/directory"
)

// passwordCmd represents the password command
var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage administrator passwords",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'password' requires a subcommand (hash)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var passwordHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the bcrypt hash of a password read from stdin",
	Long: `Print the bcrypt hash of a password read from stdin.

The hash is suitable for ADMIN_PASSWORD_HASH.

Example:
  echo -n 's3cret' | adminctl password hash`,
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := hashFromReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordHashCmd)
}

// hashFromReader hashes the first line of r.
func hashFromReader(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return directory.HashPassword(strings.TrimRight(line, "\r\n"))
}
