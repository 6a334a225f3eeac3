package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/resaleops/dealscout/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL). Methods require a live database and are covered by the
// integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

func deviceArgs(d *domain.DeviceRecord) (pgx.NamedArgs, error) {
	deductions, err := json.Marshal(d.Deductions)
	if err != nil {
		return nil, fmt.Errorf("marshaling deductions: %w", err)
	}
	flags, err := json.Marshal(d.Flags)
	if err != nil {
		return nil, fmt.Errorf("marshaling flags: %w", err)
	}

	return pgx.NamedArgs{
		"id":                 d.ID,
		"dedupe_key":         d.DedupeKey,
		"platform":           d.Platform,
		"listing_url":        d.ListingURL,
		"title":              d.Title,
		"brand":              d.Brand,
		"model":              d.Model,
		"variant":            d.Variant,
		"storage":            d.Storage,
		"carrier":            d.Carrier,
		"description":        d.Description,
		"condition_raw":      d.ConditionRaw,
		"condition_norm":     d.ConditionNorm,
		"guessed_grade":      string(d.GuessedGrade),
		"manual_grade":       string(d.ManualGrade),
		"final_grade":        string(d.FinalGrade),
		"asking_price":       d.AskingPrice,
		"matched_base_price": d.MatchedBasePrice,
		"deductions":         deductions,
		"buyback_value":      d.BuybackValue,
		"mao":                d.MAO,
		"offer_target":       d.OfferTarget,
		"expected_profit":    d.ExpectedProfit,
		"profit_margin_pct":  d.ProfitMarginPct,
		"match_confidence":   d.MatchConfidence,
		"match_notes":        d.MatchNotes,
		"risk_score":         d.RiskScore,
		"market_advantage":   d.MarketAdvantage,
		"hot_seller":         d.HotSeller,
		"flags":              flags,
		"notes":              d.Notes,
		"seller_name":        d.SellerName,
		"seller_contact":     d.SellerContact,
		"location":           d.Location,
		"zip":                d.ZIP,
		"distance_miles":     d.DistanceMiles,
		"deal_class":         string(d.DealClass),
	}, nil
}

// InsertDevice appends a new canonical device record. The generated id
// and timestamp are written back onto d.
func (s *PostgresStore) InsertDevice(ctx context.Context, d *domain.DeviceRecord) error {
	args, err := deviceArgs(d)
	if err != nil {
		return err
	}
	delete(args, "id")

	return s.pool.QueryRow(ctx, queryInsertDevice, args).Scan(&d.ID, &d.LastUpdated)
}

// UpdateDevice writes the full analysis state of a device back to the
// store, last-writer-wins per field.
func (s *PostgresStore) UpdateDevice(ctx context.Context, d *domain.DeviceRecord) error {
	args, err := deviceArgs(d)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, queryUpdateDevice, args)
	if err != nil {
		return fmt.Errorf("updating device %s: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDevice retrieves a device by its internal UUID.
func (s *PostgresStore) GetDevice(ctx context.Context, id string) (*domain.DeviceRecord, error) {
	d := &domain.DeviceRecord{}
	if err := scanDevice(s.pool.QueryRow(ctx, queryGetDeviceByID, id), d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDeviceByDedupeKey retrieves a device by its dedupe key.
func (s *PostgresStore) GetDeviceByDedupeKey(ctx context.Context, key string) (*domain.DeviceRecord, error) {
	d := &domain.DeviceRecord{}
	if err := scanDevice(s.pool.QueryRow(ctx, queryGetDeviceByDedupeKey, key), d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDevices queries devices with optional filters, returning results
// and the unpaginated total.
func (s *PostgresStore) ListDevices(
	ctx context.Context,
	opts *DeviceQuery,
) ([]domain.DeviceRecord, int, error) {
	if opts == nil {
		opts = &DeviceQuery{}
	}
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting devices: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.DeviceRecord
	for rows.Next() {
		var d domain.DeviceRecord
		if err := scanDevice(rows, &d); err != nil {
			return nil, 0, err
		}
		devices = append(devices, d)
	}
	return devices, total, rows.Err()
}

// ListDedupeKeys loads every dedupe key into an in-memory set, so batch
// ingestion does O(1) membership checks without re-querying per record.
func (s *PostgresStore) ListDedupeKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, queryListDedupeKeys)
	if err != nil {
		return nil, fmt.Errorf("listing dedupe keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

// DeleteDevice removes a device permanently. Administrative use only.
func (s *PostgresStore) DeleteDevice(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteDevice, id)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceCatalog swaps the pricing catalog wholesale in one transaction.
func (s *PostgresStore) ReplaceCatalog(ctx context.Context, entries []domain.PricingCatalogEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning catalog transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, queryDeleteCatalog); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		prices, err := json.Marshal(e.Prices)
		if err != nil {
			return fmt.Errorf("marshaling prices: %w", err)
		}
		args := pgx.NamedArgs{
			"pos":     i,
			"brand":   e.Brand,
			"model":   e.Model,
			"variant": e.Variant,
			"storage": e.Storage,
			"prices":  prices,
		}
		if err := tx.QueryRow(ctx, queryInsertCatalogRow, args).Scan(&e.ID); err != nil {
			return fmt.Errorf("inserting catalog row %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

// ListCatalog returns the pricing catalog in its supplied order.
func (s *PostgresStore) ListCatalog(ctx context.Context) ([]domain.PricingCatalogEntry, error) {
	rows, err := s.pool.Query(ctx, queryListCatalog)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var entries []domain.PricingCatalogEntry
	for rows.Next() {
		var (
			e      domain.PricingCatalogEntry
			prices []byte
		)
		if err := rows.Scan(&e.ID, &e.Brand, &e.Model, &e.Variant, &e.Storage, &prices); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(prices, &e.Prices); err != nil {
			return nil, fmt.Errorf("unmarshaling prices: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceVerdicts rebuilds the worklist wholesale in one transaction.
func (s *PostgresStore) ReplaceVerdicts(ctx context.Context, entries []domain.VerdictEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning verdict transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, queryDeleteVerdicts); err != nil {
		return fmt.Errorf("clearing verdicts: %w", err)
	}

	for i := range entries {
		v := &entries[i]
		args := pgx.NamedArgs{
			"rank":               v.Rank,
			"device_id":          v.DeviceID,
			"composite_score":    v.CompositeScore,
			"title":              v.Title,
			"seller_name":        v.SellerName,
			"seller_contact":     v.SellerContact,
			"deal_class":         string(v.DealClass),
			"final_grade":        string(v.FinalGrade),
			"asking_price":       v.AskingPrice,
			"buyback_value":      v.BuybackValue,
			"mao":                v.MAO,
			"offer_target":       v.OfferTarget,
			"expected_profit":    v.ExpectedProfit,
			"profit_margin_pct":  v.ProfitMarginPct,
			"risk_score":         v.RiskScore,
			"market_advantage":   v.MarketAdvantage,
			"hot_seller":         v.HotSeller,
			"recommended_action": string(v.RecommendedAction),
			"auto_message":       v.AutoMessage,
			"status":             v.Status,
		}
		if err := tx.QueryRow(ctx, queryInsertVerdict, args).Scan(&v.ID, &v.CreatedAt); err != nil {
			return fmt.Errorf("inserting verdict rank %d: %w", v.Rank, err)
		}
	}

	return tx.Commit(ctx)
}

// ListVerdicts returns the worklist ordered by rank.
func (s *PostgresStore) ListVerdicts(ctx context.Context, limit int) ([]domain.VerdictEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	rows, err := s.pool.Query(ctx, queryListVerdicts, limit)
	if err != nil {
		return nil, fmt.Errorf("listing verdicts: %w", err)
	}
	defer rows.Close()

	var entries []domain.VerdictEntry
	for rows.Next() {
		var v domain.VerdictEntry
		if err := scanVerdict(rows, &v); err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return entries, rows.Err()
}

// GetVerdict retrieves one worklist entry by id.
func (s *PostgresStore) GetVerdict(ctx context.Context, id string) (*domain.VerdictEntry, error) {
	v := &domain.VerdictEntry{}
	if err := scanVerdict(s.pool.QueryRow(ctx, queryGetVerdict, id), v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetVerdictStatus is the callback collaborators use to mark an entry
// contacted or scheduled.
func (s *PostgresStore) SetVerdictStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx, querySetVerdictStatus, id, status)
	if err != nil {
		return fmt.Errorf("setting verdict status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAudit writes one append-only audit trail entry.
func (s *PostgresStore) AppendAudit(ctx context.Context, e *domain.AuditEntry) error {
	counts, err := json.Marshal(e.Counts)
	if err != nil {
		return fmt.Errorf("marshaling audit counts: %w", err)
	}
	args := pgx.NamedArgs{
		"stage":   e.Stage,
		"summary": e.Summary,
		"counts":  counts,
	}
	return s.pool.QueryRow(ctx, queryInsertAudit, args).Scan(&e.ID, &e.CreatedAt)
}

// ListAudit returns the most recent audit entries, newest first.
func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	rows, err := s.pool.Query(ctx, queryListAudit, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e      domain.AuditEntry
			counts []byte
		)
		if err := rows.Scan(&e.ID, &e.Stage, &e.Summary, &counts, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(counts, &e.Counts); err != nil {
			return nil, fmt.Errorf("unmarshaling audit counts: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// scanDevice populates a DeviceRecord from a row selected with
// deviceColumns.
func scanDevice(row pgx.Row, d *domain.DeviceRecord) error {
	var (
		guessed, manual, final, class string
		deductions, flags             []byte
	)

	err := row.Scan(
		&d.ID, &d.DedupeKey, &d.Platform, &d.ListingURL, &d.Title,
		&d.Brand, &d.Model, &d.Variant, &d.Storage, &d.Carrier,
		&d.Description, &d.ConditionRaw, &d.ConditionNorm,
		&guessed, &manual, &final,
		&d.AskingPrice, &d.MatchedBasePrice, &deductions, &d.BuybackValue,
		&d.MAO, &d.OfferTarget, &d.ExpectedProfit, &d.ProfitMarginPct,
		&d.MatchConfidence, &d.MatchNotes,
		&d.RiskScore, &d.MarketAdvantage, &d.HotSeller,
		&flags, &d.Notes,
		&d.SellerName, &d.SellerContact, &d.Location, &d.ZIP, &d.DistanceMiles,
		&class, &d.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scanning device: %w", err)
	}

	d.GuessedGrade = domain.Grade(guessed)
	d.ManualGrade = domain.Grade(manual)
	d.FinalGrade = domain.Grade(final)
	d.DealClass = domain.DealClass(class)

	if err := json.Unmarshal(deductions, &d.Deductions); err != nil {
		return fmt.Errorf("unmarshaling deductions: %w", err)
	}
	if err := json.Unmarshal(flags, &d.Flags); err != nil {
		return fmt.Errorf("unmarshaling flags: %w", err)
	}
	return nil
}

// scanVerdict populates a VerdictEntry from a row selected with
// verdictColumns.
func scanVerdict(row pgx.Row, v *domain.VerdictEntry) error {
	var class, grade, action string

	err := row.Scan(
		&v.ID, &v.Rank, &v.DeviceID, &v.CompositeScore,
		&v.Title, &v.SellerName, &v.SellerContact,
		&class, &grade,
		&v.AskingPrice, &v.BuybackValue, &v.MAO, &v.OfferTarget,
		&v.ExpectedProfit, &v.ProfitMarginPct,
		&v.RiskScore, &v.MarketAdvantage, &v.HotSeller,
		&action, &v.AutoMessage, &v.Status, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("scanning verdict: %w", err)
	}

	v.DealClass = domain.DealClass(class)
	v.FinalGrade = domain.Grade(grade)
	v.RecommendedAction = domain.Action(action)
	return nil
}
