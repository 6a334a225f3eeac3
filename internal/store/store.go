// Package store defines the datastore abstraction for dealscout.
// All pipeline logic depends on the Store interface, never on concrete
// implementations; stages read in bulk at start and write per record,
// last-writer-wins.
package store

import (
	"context"
	"errors"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DeviceQuery defines optional filters for device queries.
type DeviceQuery struct {
	DealClass     *string
	Grade         *string
	HotSellerOnly bool
	Limit         int // default 100
	Offset        int
	OrderBy       string // "last_updated", "buyback_value", "risk_score"
}

// Store defines all data access operations for dealscout.
type Store interface {
	// Devices
	InsertDevice(ctx context.Context, d *domain.DeviceRecord) error
	UpdateDevice(ctx context.Context, d *domain.DeviceRecord) error
	GetDevice(ctx context.Context, id string) (*domain.DeviceRecord, error)
	GetDeviceByDedupeKey(ctx context.Context, key string) (*domain.DeviceRecord, error)
	ListDevices(ctx context.Context, opts *DeviceQuery) ([]domain.DeviceRecord, int, error)
	ListDedupeKeys(ctx context.Context) (map[string]struct{}, error)
	// DeleteDevice is the administrative purge; the pipeline itself
	// never deletes.
	DeleteDevice(ctx context.Context, id string) error

	// Pricing catalog (read-only reference data, replaced wholesale)
	ReplaceCatalog(ctx context.Context, entries []domain.PricingCatalogEntry) error
	ListCatalog(ctx context.Context) ([]domain.PricingCatalogEntry, error)

	// Verdicts (regenerated wholesale each ranking run)
	ReplaceVerdicts(ctx context.Context, entries []domain.VerdictEntry) error
	ListVerdicts(ctx context.Context, limit int) ([]domain.VerdictEntry, error)
	GetVerdict(ctx context.Context, id string) (*domain.VerdictEntry, error)
	SetVerdictStatus(ctx context.Context, id string, status string) error

	// Audit trail (append-only)
	AppendAudit(ctx context.Context, e *domain.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
