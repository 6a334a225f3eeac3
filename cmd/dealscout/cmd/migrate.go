package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cobraCmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("running migrations", "host", cfg.Database.Host, "db", cfg.Database.Name)

	if err := s.Migrate(cobraCmd.Context()); err != nil {
		return err
	}

	logger.Info("migrations complete")
	return nil
}
