package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resaleops/dealscout/internal/intake"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a listings file",
	Long: "Reads a scraped listings file (CSV or JSONL), normalizes each record, " +
		"and inserts new devices into the store. Duplicates and malformed rows are " +
		"skipped and counted.",
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "listings file (.csv, .jsonl)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cobraCmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	records, lineErrs, err := intake.ReadListingsFile(ingestFile)
	if err != nil {
		return fmt.Errorf("reading listings file: %w", err)
	}
	for _, le := range lineErrs {
		logger.Warn("skipped malformed listing", "line", le.Line, "err", le.Err)
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	eng := buildEngine(cfg, s, logger)

	stats, err := eng.Ingest(cobraCmd.Context(), records)
	if err != nil {
		return fmt.Errorf("ingesting listings: %w", err)
	}

	fmt.Printf("Ingested %d of %d listings (%d duplicates, %d failed, %d unparseable lines).\n",
		stats.Ingested,
		stats.Received,
		stats.Duplicates,
		stats.Failed,
		len(lineErrs),
	)
	return nil
}
