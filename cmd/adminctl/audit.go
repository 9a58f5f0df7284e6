package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/audit"
	"github.com/TheRoboticsClubNstRishihood/newtonbotics-admin-pannel-sub003/pkg/config"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect persisted audit records",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent audit records",
	Long: `List the most recent audit records from AUDIT_DATABASE_URL.

Example:
  adminctl audit list
  adminctl audit list --limit 10 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := listAudit(limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list audit records: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().IntP("limit", "n", 50, "Number of records")
	auditListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listAudit(limit int, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AuditDatabaseURL == "" {
		return fmt.Errorf("AUDIT_DATABASE_URL is not configured")
	}

	store, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	messages, err := store.Recent(limit)
	if err != nil {
		return err
	}
	return printAudit(os.Stdout, messages, output)
}

func printAudit(w io.Writer, messages []audit.Message, output string) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	}

	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "%s %-8s %s%s\n",
			m.Timestamp.UTC().Format(time.RFC3339), m.Msgid, m.Message, formatSdata(m.Sdata)); err != nil {
			return err
		}
	}
	return nil
}

// formatSdata renders structured data as " [id k=v ...]" with sorted keys.
func formatSdata(sdata map[string]any) string {
	if len(sdata) == 0 {
		return ""
	}
	ids := make([]string, 0, len(sdata))
	for id := range sdata {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(" [" + id)
		if params, ok := sdata[id].(map[string]any); ok {
			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, params[k])
			}
		}
		b.WriteString("]")
	}
	return b.String()
}
