package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resaleops/dealscout/internal/intake"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the buyback pricing catalog",
}

var catalogLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a pricing catalog CSV",
	Long: "Replaces the buyback pricing catalog wholesale from a CSV export. " +
		"A malformed row fails the whole load; the previous catalog stays active.",
	RunE: runCatalogLoad,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active pricing catalog",
	RunE:  runCatalogList,
}

func init() {
	catalogLoadCmd.Flags().StringVar(&catalogFile, "file", "", "catalog CSV file")
	_ = catalogLoadCmd.MarkFlagRequired("file")
	catalogCmd.AddCommand(catalogLoadCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogLoad(cobraCmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := intake.ReadCatalogFile(catalogFile)
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ReplaceCatalog(cobraCmd.Context(), entries); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}

	logger.Info("catalog replaced", "rows", len(entries))
	fmt.Printf("Loaded %d catalog rows.\n", len(entries))
	return nil
}

func runCatalogList(cobraCmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.ListCatalog(cobraCmd.Context())
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}

	return printCatalogTable(entries)
}
