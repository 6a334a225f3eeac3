// Package engine orchestrates the decision pipeline: ingestion, grading,
// buyback matching, pricing, seller aggregation, and verdict ranking.
//
// Stages run single-threaded over a bulk read of the device store and
// write back per record. A mutex serializes whole runs, so a cron tick
// and an HTTP trigger can never interleave stages.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/resaleops/dealscout/internal/metrics"
	"github.com/resaleops/dealscout/internal/notify"
	"github.com/resaleops/dealscout/internal/store"
	"github.com/resaleops/dealscout/pkg/grade"
	"github.com/resaleops/dealscout/pkg/match"
	"github.com/resaleops/dealscout/pkg/normalize"
	"github.com/resaleops/dealscout/pkg/profit"
	"github.com/resaleops/dealscout/pkg/sellers"
	domain "github.com/resaleops/dealscout/pkg/types"
	"github.com/resaleops/dealscout/pkg/verdict"
)

// allDevicesLimit bounds the bulk read at run start.
const allDevicesLimit = 100000

// Engine runs the pipeline with injected dependencies.
type Engine struct {
	store    store.Store
	notifier notify.Notifier
	log      *slog.Logger

	runMu sync.Mutex

	normalizeCfg normalize.Config
	gradeCfg     grade.Config
	matchCfg     match.Config
	profitCfg    profit.Config
	sellersCfg   sellers.Config
	verdictCfg   verdict.Config

	dispatchOutreach bool
}

// NewEngine creates a new Engine with documented default stage configs.
func NewEngine(s store.Store, n notify.Notifier, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:        s,
		notifier:     n,
		log:          slog.Default(),
		normalizeCfg: normalize.DefaultConfig(),
		gradeCfg:     grade.DefaultConfig(),
		matchCfg:     match.DefaultConfig(),
		profitCfg:    profit.DefaultConfig(),
		sellersCfg:   sellers.DefaultConfig(),
		verdictCfg:   verdict.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithNormalizeConfig overrides the normalizer rule tables.
func WithNormalizeConfig(cfg normalize.Config) EngineOption {
	return func(e *Engine) { e.normalizeCfg = cfg }
}

// WithGradeConfig overrides the grading tables.
func WithGradeConfig(cfg grade.Config) EngineOption {
	return func(e *Engine) { e.gradeCfg = cfg }
}

// WithMatchConfig overrides the matching and deduction settings.
func WithMatchConfig(cfg match.Config) EngineOption {
	return func(e *Engine) { e.matchCfg = cfg }
}

// WithProfitConfig overrides the pricing settings.
func WithProfitConfig(cfg profit.Config) EngineOption {
	return func(e *Engine) { e.profitCfg = cfg }
}

// WithSellersConfig overrides the seller aggregation settings.
func WithSellersConfig(cfg sellers.Config) EngineOption {
	return func(e *Engine) { e.sellersCfg = cfg }
}

// WithVerdictConfig overrides the ranking settings.
func WithVerdictConfig(cfg verdict.Config) EngineOption {
	return func(e *Engine) { e.verdictCfg = cfg }
}

// WithOutreachDispatch enables pushing CALL/TEXT verdicts to the
// notifier at the end of each run.
func WithOutreachDispatch(enabled bool) EngineOption {
	return func(e *Engine) { e.dispatchOutreach = enabled }
}

// IngestStats summarizes one ingestion batch.
type IngestStats struct {
	Received   int
	Ingested   int
	Duplicates int
	Failed     int
}

// Ingest normalizes and dedupes a batch of raw listings into the device
// store. Malformed records are skipped and counted, never fatal.
func (eng *Engine) Ingest(ctx context.Context, records []domain.ListingRecord) (IngestStats, error) {
	stats := IngestStats{Received: len(records)}

	keys, err := eng.store.ListDedupeKeys(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing dedupe keys: %w", err)
	}

	for i := range records {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		metrics.IngestListingsTotal.Inc()

		dev, err := normalize.Record(&records[i], eng.normalizeCfg)
		if err != nil {
			eng.log.Warn("listing skipped",
				"title", records[i].Title,
				"platform", records[i].Platform,
				"error", err,
			)
			metrics.IngestErrorsTotal.Inc()
			stats.Failed++
			continue
		}

		if _, dup := keys[dev.DedupeKey]; dup {
			metrics.IngestDuplicatesTotal.Inc()
			stats.Duplicates++
			continue
		}

		if err := eng.store.InsertDevice(ctx, dev); err != nil {
			eng.log.Error("device insert failed", "dedupe_key", dev.DedupeKey, "error", err)
			metrics.IngestErrorsTotal.Inc()
			stats.Failed++
			continue
		}
		keys[dev.DedupeKey] = struct{}{}
		stats.Ingested++
	}

	eng.audit(ctx, "ingest",
		fmt.Sprintf("ingested %d of %d listings (%d duplicates, %d failed)",
			stats.Ingested, stats.Received, stats.Duplicates, stats.Failed),
		map[string]int{
			"received":   stats.Received,
			"ingested":   stats.Ingested,
			"duplicates": stats.Duplicates,
			"failed":     stats.Failed,
		})

	eng.log.Info("ingestion complete",
		"received", stats.Received,
		"ingested", stats.Ingested,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed,
	)
	return stats, nil
}

// RunStats summarizes one full pipeline run.
type RunStats struct {
	Devices     int
	Blacklisted int
	Matched     int
	Unmatched   int
	HotSellers  int
	Repriced    int
	Ranked      int
}

// Run executes the full pipeline once: grade, match, price, aggregate
// sellers, reprice newly hot sellers, rank. Runs are mutually exclusive;
// a second caller blocks until the first finishes.
func (eng *Engine) Run(ctx context.Context) (RunStats, error) {
	eng.runMu.Lock()
	defer eng.runMu.Unlock()

	metrics.PipelineRunsTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
	}()

	// Catalog and settings are snapshotted once; mid-run changes apply
	// to the next run.
	catalog, err := eng.store.ListCatalog(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("loading pricing catalog: %w", err)
	}

	devices, _, err := eng.store.ListDevices(ctx, &store.DeviceQuery{Limit: allDevicesLimit})
	if err != nil {
		return RunStats{}, fmt.Errorf("loading devices: %w", err)
	}

	stats := RunStats{Devices: len(devices)}
	if len(devices) == 0 {
		eng.log.Info("pipeline run: no devices")
		return stats, nil
	}

	eng.gradeAll(devices, &stats)
	eng.audit(ctx, "grade",
		fmt.Sprintf("graded %d devices (%d blacklisted)", stats.Devices, stats.Blacklisted),
		map[string]int{"devices": stats.Devices, "blacklisted": stats.Blacklisted})

	if len(catalog) == 0 {
		eng.log.Warn("pricing catalog is empty; skipping buyback matching")
	} else {
		eng.matchAll(devices, catalog, &stats)
		eng.audit(ctx, "match",
			fmt.Sprintf("matched %d of %d devices against %d catalog rows",
				stats.Matched, stats.Devices, len(catalog)),
			map[string]int{"matched": stats.Matched, "unmatched": stats.Unmatched})
	}

	eng.priceAll(devices)

	for i := range devices {
		if err := eng.store.UpdateDevice(ctx, &devices[i]); err != nil {
			eng.log.Error("device update failed", "id", devices[i].ID, "error", err)
			metrics.PipelineDeviceErrorsTotal.Inc()
		}
	}
	eng.audit(ctx, "price",
		fmt.Sprintf("priced %d devices (%d matched, %d unmatched, %d blacklisted)",
			stats.Devices, stats.Matched, stats.Unmatched, stats.Blacklisted),
		map[string]int{
			"devices":     stats.Devices,
			"matched":     stats.Matched,
			"unmatched":   stats.Unmatched,
			"blacklisted": stats.Blacklisted,
		})

	eng.aggregateSellers(ctx, devices, &stats)

	entries := verdict.Rank(devices, eng.verdictCfg)
	if err := eng.store.ReplaceVerdicts(ctx, entries); err != nil {
		return stats, fmt.Errorf("replacing verdicts: %w", err)
	}
	stats.Ranked = len(entries)
	metrics.VerdictEntriesTotal.Set(float64(len(entries)))
	eng.audit(ctx, "verdict",
		fmt.Sprintf("ranked %d devices", len(entries)),
		map[string]int{"ranked": len(entries)})

	if eng.dispatchOutreach && eng.notifier != nil {
		eng.runOutreach(ctx, entries)
	}

	eng.log.Info("pipeline run complete",
		"devices", stats.Devices,
		"blacklisted", stats.Blacklisted,
		"matched", stats.Matched,
		"hot_sellers", stats.HotSellers,
		"repriced", stats.Repriced,
		"ranked", stats.Ranked,
		"duration", time.Since(start),
	)
	return stats, nil
}

// gradeAll recomputes every device's grade from its raw text. Manual
// overrides survive via EffectiveGrade.
func (eng *Engine) gradeAll(devices []domain.DeviceRecord, stats *RunStats) {
	for i := range devices {
		d := &devices[i]
		res := grade.Device(d, eng.gradeCfg)
		d.GuessedGrade = res.Grade
		d.Flags = res.Flags
		d.Notes = res.Notes
		d.FinalGrade = d.EffectiveGrade()
		if res.Grade == domain.GradeBlacklisted {
			d.FinalGrade = domain.GradeBlacklisted
			stats.Blacklisted++
			metrics.BlacklistedDevicesTotal.Inc()
		}
		metrics.GradedDevicesTotal.WithLabelValues(string(d.FinalGrade)).Inc()
	}
}

// matchAll matches every device against the catalog snapshot and writes
// the buyback valuation onto the record.
func (eng *Engine) matchAll(
	devices []domain.DeviceRecord,
	catalog []domain.PricingCatalogEntry,
	stats *RunStats,
) {
	for i := range devices {
		d := &devices[i]
		res := match.Device(d, catalog, eng.matchCfg)
		d.MatchedBasePrice = res.BasePrice
		d.Deductions = res.Deductions
		d.BuybackValue = res.FinalValue
		d.MatchConfidence = res.Confidence
		d.MatchNotes = res.Notes

		if res.BasePrice > 0 {
			stats.Matched++
			metrics.MatchConfidenceDistribution.Observe(float64(res.Confidence))
		} else if !d.Blacklisted() {
			stats.Unmatched++
			metrics.MatchMissesTotal.Inc()
		}
	}
}

// priceAll computes risk, MAO, offer, profit, and deal class for every
// device. Blacklisted and unmatched devices come out as PASS.
func (eng *Engine) priceAll(devices []domain.DeviceRecord) {
	for i := range devices {
		d := &devices[i]
		applyPricing(d, profit.Device(d, eng.profitCfg))
	}
}

func applyPricing(d *domain.DeviceRecord, res profit.Result) {
	d.RiskScore = res.RiskScore
	d.MarketAdvantage = res.MarketAdvantage
	d.MAO = res.MAO
	d.OfferTarget = res.OfferTarget
	d.ExpectedProfit = res.ExpectedProfit
	d.ProfitMarginPct = res.ProfitMarginPct
	d.DealClass = res.DealClass
	metrics.ClassifiedDevicesTotal.WithLabelValues(string(res.DealClass)).Inc()
	metrics.RiskScoreDistribution.Observe(float64(res.RiskScore))
}

// aggregateSellers flags hot sellers and re-prices any device whose
// hot-seller status changed, so the pricing bonus lands in the same run
// a seller first qualifies.
func (eng *Engine) aggregateSellers(
	ctx context.Context,
	devices []domain.DeviceRecord,
	stats *RunStats,
) {
	aggs := sellers.Aggregate(devices, eng.sellersCfg)

	hotDevices := make(map[string]struct{})
	for _, agg := range aggs {
		if !agg.HotSeller {
			continue
		}
		stats.HotSellers++
		for _, id := range agg.DeviceIDs {
			hotDevices[id] = struct{}{}
		}
	}
	metrics.HotSellersTotal.Set(float64(stats.HotSellers))

	for i := range devices {
		d := &devices[i]
		_, hot := hotDevices[d.ID]
		if hot == d.HotSeller {
			continue
		}
		d.HotSeller = hot
		applyPricing(d, profit.Device(d, eng.profitCfg))
		stats.Repriced++

		if err := eng.store.UpdateDevice(ctx, d); err != nil {
			eng.log.Error("hot-seller update failed", "id", d.ID, "error", err)
			metrics.PipelineDeviceErrorsTotal.Inc()
		}
	}

	eng.audit(ctx, "sellers",
		fmt.Sprintf("%d hot sellers across %d sellers; %d devices repriced",
			stats.HotSellers, len(aggs), stats.Repriced),
		map[string]int{
			"sellers":     len(aggs),
			"hot_sellers": stats.HotSellers,
			"repriced":    stats.Repriced,
		})
}

// runOutreach dispatches pending CALL and TEXT verdicts. Delivery
// failures are logged and counted, never fatal to the run.
func (eng *Engine) runOutreach(ctx context.Context, entries []domain.VerdictEntry) {
	for i := range entries {
		v := &entries[i]
		if v.Status != domain.VerdictPending {
			continue
		}
		if v.RecommendedAction != domain.ActionCall && v.RecommendedAction != domain.ActionText {
			continue
		}

		result, err := eng.notifier.Dispatch(ctx, notify.OutreachPayload{
			VerdictID:     v.ID,
			Rank:          v.Rank,
			Title:         v.Title,
			SellerName:    v.SellerName,
			SellerContact: v.SellerContact,
			DealClass:     string(v.DealClass),
			Action:        string(v.RecommendedAction),
			OfferTarget:   v.OfferTarget,
			Message:       v.AutoMessage,
		})
		if err != nil {
			eng.log.Error("outreach dispatch failed", "verdict_id", v.ID, "error", err)
			metrics.NotificationFailuresTotal.Inc()
			continue
		}
		if !result.Delivered {
			eng.log.Warn("outreach not delivered", "verdict_id", v.ID, "detail", result.Detail)
			metrics.NotificationFailuresTotal.Inc()
			continue
		}
		metrics.NotificationsSentTotal.Inc()
	}
}

func (eng *Engine) audit(ctx context.Context, stage, summary string, counts map[string]int) {
	entry := &domain.AuditEntry{Stage: stage, Summary: summary, Counts: counts}
	if err := eng.store.AppendAudit(ctx, entry); err != nil {
		eng.log.Error("audit append failed", "stage", stage, "error", err)
	}
}
