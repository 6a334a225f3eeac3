// Package cmd implements the CLI commands for dealscout.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/resaleops/dealscout/internal/config"
	"github.com/resaleops/dealscout/internal/engine"
	"github.com/resaleops/dealscout/internal/notify"
	"github.com/resaleops/dealscout/internal/store"
	"github.com/resaleops/dealscout/pkg/logger"
	"golang.org/x/time/rate"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dealscout",
	Short: "Score secondhand device listings against buyback prices",
	Long: "A decision pipeline for secondhand device flipping: ingests scraped " +
		"marketplace listings, grades condition, matches devices against a partner " +
		"buyback catalog, computes offers and risk, and ranks a verdict worklist.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Environment overrides: DEALSCOUT_CONFIG, DEALSCOUT_LOG_LEVEL.
	viper.SetEnvPrefix("dealscout")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the config path through viper so environment
// variables can override the flag, then loads and validates the file.
func loadConfig() (*config.Config, *slog.Logger, error) {
	path := viper.GetString("config")
	if path == "" {
		path = cfgFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if v := viper.GetString("log_level"); v != "" {
		level = v
	}

	return cfg, logger.New(level, cfg.Logging.Format), nil
}

// openStore connects to PostgreSQL using the configured DSN.
func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return s, nil
}

// buildEngine assembles the pipeline engine from config: stage settings,
// outreach notifier, and logger.
func buildEngine(cfg *config.Config, s store.Store, log *slog.Logger) *engine.Engine {
	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Outreach.Webhook.Enabled {
		notifier = notify.NewWebhookNotifier(
			cfg.Outreach.Webhook.URL,
			notify.WithRateLimit(
				rate.Limit(cfg.Outreach.Webhook.PerSecond),
				cfg.Outreach.Webhook.Burst,
			),
			notify.WithHeaders(cfg.Outreach.Webhook.Headers),
		)
	}

	return engine.NewEngine(s, notifier,
		engine.WithLogger(log),
		engine.WithMatchConfig(cfg.Pipeline.MatchConfig()),
		engine.WithProfitConfig(cfg.Pipeline.ProfitConfig()),
		engine.WithSellersConfig(cfg.Pipeline.SellersConfig()),
		engine.WithVerdictConfig(cfg.Pipeline.VerdictConfig()),
		engine.WithOutreachDispatch(cfg.Outreach.Webhook.Enabled),
	)
}
