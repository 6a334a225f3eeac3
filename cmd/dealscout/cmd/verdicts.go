package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/resaleops/dealscout/pkg/types"
)

var (
	verdictsLimit  int
	verdictsOutput string
)

var verdictsCmd = &cobra.Command{
	Use:   "verdicts",
	Short: "Show the ranked verdict worklist",
	RunE:  runVerdictsList,
}

var verdictsContactedCmd = &cobra.Command{
	Use:   "contacted <verdict-id>",
	Short: "Mark a verdict entry as contacted",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerdictsContacted,
}

func init() {
	verdictsCmd.Flags().IntVar(&verdictsLimit, "limit", 20, "max rows")
	verdictsCmd.Flags().StringVar(&verdictsOutput, "output", "table", "output format (table, json)")
	verdictsCmd.AddCommand(verdictsContactedCmd)
	rootCmd.AddCommand(verdictsCmd)
}

func runVerdictsList(cobraCmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	verdicts, err := s.ListVerdicts(cobraCmd.Context(), verdictsLimit)
	if err != nil {
		return fmt.Errorf("listing verdicts: %w", err)
	}

	if verdictsOutput == "json" {
		return outputJSON(verdicts)
	}
	return printVerdictsTable(verdicts)
}

func runVerdictsContacted(cobraCmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetVerdictStatus(cobraCmd.Context(), args[0], domain.VerdictContacted); err != nil {
		return fmt.Errorf("marking verdict contacted: %w", err)
	}

	fmt.Println("Marked contacted.")
	return nil
}
