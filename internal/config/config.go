// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
//
// Pipeline settings are a flat map of documented defaults: any key left
// out of the file resolves to its default, never to a fatal error.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/resaleops/dealscout/pkg/match"
	"github.com/resaleops/dealscout/pkg/profit"
	"github.com/resaleops/dealscout/pkg/sellers"
	"github.com/resaleops/dealscout/pkg/verdict"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Outreach OutreachConfig `yaml:"outreach"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// PipelineConfig defines the decision-pipeline settings. Zero values
// fall back to the documented defaults of the owning packages.
type PipelineConfig struct {
	TargetMargin                  float64 `yaml:"target_margin"`
	LowRiskThreshold              int     `yaml:"low_risk_threshold"`
	HighRiskThreshold             int     `yaml:"high_risk_threshold"`
	LowRiskBonus                  float64 `yaml:"low_risk_bonus"`
	HighRiskPenalty               float64 `yaml:"high_risk_penalty"`
	HotSellerBonus                float64 `yaml:"hot_seller_bonus"`
	MarketAdvantageBonusThreshold float64 `yaml:"market_advantage_bonus_threshold"`
	MarketAdvantageBonus          float64 `yaml:"market_advantage_bonus"`
	OfferToMAORatio               float64 `yaml:"offer_to_mao_ratio"`
	MaxAcceptableRisk             int     `yaml:"max_acceptable_risk"`
	HotSellerMinDeals             int     `yaml:"hot_seller_min_deals"`

	Classes ClassThresholds `yaml:"classes"`

	// Deductions overrides dollar amounts by reason name; categories not
	// listed keep their default amount.
	Deductions map[string]float64 `yaml:"deductions"`

	Weights WeightsConfig `yaml:"weights"`

	MessageTemplate   string `yaml:"message_template"`
	HotSellerGreeting string `yaml:"hot_seller_greeting"`
}

// ClassThresholds defines the top-down deal classification cutoffs.
type ClassThresholds struct {
	HotMargin      float64 `yaml:"hot_margin"`
	HotMinProfit   float64 `yaml:"hot_min_profit"`
	HotMaxRisk     int     `yaml:"hot_max_risk"`
	SolidMargin    float64 `yaml:"solid_margin"`
	SolidMinProfit float64 `yaml:"solid_min_profit"`
	MarginalMargin float64 `yaml:"marginal_margin"`
	MarginalProfit float64 `yaml:"marginal_min_profit"`
}

// WeightsConfig defines composite verdict score weights.
type WeightsConfig struct {
	Profit    float64 `yaml:"profit"`
	Margin    float64 `yaml:"margin"`
	Risk      float64 `yaml:"risk"`
	Market    float64 `yaml:"market"`
	HotSeller float64 `yaml:"hot_seller"`
}

// ScheduleConfig defines cron intervals for the serve binary.
type ScheduleConfig struct {
	PipelineInterval time.Duration `yaml:"pipeline_interval"`
}

// OutreachConfig defines outbound dispatch settings.
type OutreachConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig defines the CRM webhook target and its rate limit.
type WebhookConfig struct {
	Enabled   bool              `yaml:"enabled"`
	URL       string            `yaml:"url"`
	Headers   map[string]string `yaml:"headers"`
	PerSecond float64           `yaml:"per_second"`
	Burst     int               `yaml:"burst"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	ApplyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a config with every default applied and no database
// configured. Used by commands that run without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with documented defaults.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyPipelineDefaults(&cfg.Pipeline)
	applyScheduleDefaults(&cfg.Schedule)
	applyOutreachDefaults(&cfg.Outreach)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyPipelineDefaults(p *PipelineConfig) {
	def := profit.DefaultConfig()
	if p.TargetMargin == 0 {
		p.TargetMargin = def.TargetMargin
	}
	if p.LowRiskThreshold == 0 {
		p.LowRiskThreshold = def.LowRiskThreshold
	}
	if p.HighRiskThreshold == 0 {
		p.HighRiskThreshold = def.HighRiskThreshold
	}
	if p.LowRiskBonus == 0 {
		p.LowRiskBonus = def.LowRiskBonus
	}
	if p.HighRiskPenalty == 0 {
		p.HighRiskPenalty = def.HighRiskPenalty
	}
	if p.HotSellerBonus == 0 {
		p.HotSellerBonus = def.HotSellerBonus
	}
	if p.MarketAdvantageBonusThreshold == 0 {
		p.MarketAdvantageBonusThreshold = def.MarketAdvantageBonusThreshold
	}
	if p.MarketAdvantageBonus == 0 {
		p.MarketAdvantageBonus = def.MarketAdvantageBonus
	}
	if p.OfferToMAORatio == 0 {
		p.OfferToMAORatio = def.OfferToMAORatio
	}
	if p.MaxAcceptableRisk == 0 {
		p.MaxAcceptableRisk = def.MaxAcceptableRisk
	}
	if p.HotSellerMinDeals == 0 {
		p.HotSellerMinDeals = sellers.DefaultConfig().MinQualifyingDeals
	}

	if p.Classes.HotMargin == 0 {
		p.Classes.HotMargin = def.HotMarginThreshold
	}
	if p.Classes.HotMinProfit == 0 {
		p.Classes.HotMinProfit = def.HotMinProfit
	}
	if p.Classes.HotMaxRisk == 0 {
		p.Classes.HotMaxRisk = def.HotMaxRisk
	}
	if p.Classes.SolidMargin == 0 {
		p.Classes.SolidMargin = def.SolidMarginThreshold
	}
	if p.Classes.SolidMinProfit == 0 {
		p.Classes.SolidMinProfit = def.SolidMinProfit
	}
	if p.Classes.MarginalMargin == 0 {
		p.Classes.MarginalMargin = def.MarginalMarginThreshold
	}
	if p.Classes.MarginalProfit == 0 {
		p.Classes.MarginalProfit = def.MarginalMinProfit
	}

	vdef := verdict.DefaultConfig()
	if p.Weights == (WeightsConfig{}) {
		p.Weights = WeightsConfig{
			Profit:    vdef.Weights.Profit,
			Margin:    vdef.Weights.Margin,
			Risk:      vdef.Weights.Risk,
			Market:    vdef.Weights.Market,
			HotSeller: vdef.Weights.HotSeller,
		}
	}
	if p.MessageTemplate == "" {
		p.MessageTemplate = vdef.MessageTemplate
	}
	if p.HotSellerGreeting == "" {
		p.HotSellerGreeting = vdef.HotSellerGreeting
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.PipelineInterval == 0 {
		s.PipelineInterval = 30 * time.Minute
	}
}

func applyOutreachDefaults(o *OutreachConfig) {
	if o.Webhook.PerSecond == 0 {
		o.Webhook.PerSecond = 1.0
	}
	if o.Webhook.Burst == 0 {
		o.Webhook.Burst = 3
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	w := cfg.Pipeline.Weights
	sum := w.Profit + w.Margin + w.Risk + w.Market + w.HotSeller
	if math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Errorf("pipeline.weights must sum to 1.0 (got %.3f)", sum))
	}

	if cfg.Outreach.Webhook.Enabled && cfg.Outreach.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("outreach.webhook.url is required when webhook is enabled"))
	}

	return errors.Join(errs...)
}

// ProfitConfig materializes the pricing stage configuration.
func (p *PipelineConfig) ProfitConfig() profit.Config {
	cfg := profit.DefaultConfig()
	cfg.TargetMargin = p.TargetMargin
	cfg.LowRiskThreshold = p.LowRiskThreshold
	cfg.HighRiskThreshold = p.HighRiskThreshold
	cfg.LowRiskBonus = p.LowRiskBonus
	cfg.HighRiskPenalty = p.HighRiskPenalty
	cfg.HotSellerBonus = p.HotSellerBonus
	cfg.MarketAdvantageBonusThreshold = p.MarketAdvantageBonusThreshold
	cfg.MarketAdvantageBonus = p.MarketAdvantageBonus
	cfg.OfferToMAORatio = p.OfferToMAORatio
	cfg.MaxAcceptableRisk = p.MaxAcceptableRisk
	cfg.HotMarginThreshold = p.Classes.HotMargin
	cfg.HotMinProfit = p.Classes.HotMinProfit
	cfg.HotMaxRisk = p.Classes.HotMaxRisk
	cfg.SolidMarginThreshold = p.Classes.SolidMargin
	cfg.SolidMinProfit = p.Classes.SolidMinProfit
	cfg.MarginalMarginThreshold = p.Classes.MarginalMargin
	cfg.MarginalMinProfit = p.Classes.MarginalProfit
	return cfg
}

// MatchConfig materializes the matching stage configuration, applying
// deduction amount overrides by reason name.
func (p *PipelineConfig) MatchConfig() match.Config {
	cfg := match.DefaultConfig()
	for i := range cfg.DeductionRules {
		if amt, ok := p.Deductions[cfg.DeductionRules[i].Reason]; ok {
			cfg.DeductionRules[i].Amount = amt
		}
	}
	return cfg
}

// SellersConfig materializes the seller aggregation configuration.
func (p *PipelineConfig) SellersConfig() sellers.Config {
	return sellers.Config{MinQualifyingDeals: p.HotSellerMinDeals}
}

// VerdictConfig materializes the ranking stage configuration.
func (p *PipelineConfig) VerdictConfig() verdict.Config {
	cfg := verdict.DefaultConfig()
	cfg.Weights = verdict.Weights{
		Profit:    p.Weights.Profit,
		Margin:    p.Weights.Margin,
		Risk:      p.Weights.Risk,
		Market:    p.Weights.Market,
		HotSeller: p.Weights.HotSeller,
	}
	cfg.LowRiskThreshold = p.LowRiskThreshold
	cfg.MessageTemplate = p.MessageTemplate
	cfg.HotSellerGreeting = p.HotSellerGreeting
	return cfg
}
