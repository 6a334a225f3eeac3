package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision pipeline once",
	Long: "Runs the full decision pipeline once against the current store: " +
		"grade, match, price, aggregate sellers, and rank the verdict worklist.",
	RunE: runPipelineOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipelineOnce(cobraCmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	eng := buildEngine(cfg, s, logger)

	stats, err := eng.Run(cobraCmd.Context())
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	fmt.Printf("Pipeline complete: %d devices (%d blacklisted), %d matched, %d unmatched, %d hot sellers, %d repriced, %d ranked.\n",
		stats.Devices,
		stats.Blacklisted,
		stats.Matched,
		stats.Unmatched,
		stats.HotSellers,
		stats.Repriced,
		stats.Ranked,
	)
	return nil
}
