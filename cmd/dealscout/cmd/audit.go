package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	auditLimit  int
	auditOutput string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent pipeline audit entries",
	RunE:  runAuditList,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "max rows")
	auditCmd.Flags().StringVar(&auditOutput, "output", "table", "output format (table, json)")
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cobraCmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.ListAudit(cobraCmd.Context(), auditLimit)
	if err != nil {
		return fmt.Errorf("listing audit entries: %w", err)
	}

	if auditOutput == "json" {
		return outputJSON(entries)
	}
	return printAuditTable(entries)
}
