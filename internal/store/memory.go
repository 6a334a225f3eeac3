package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// MemoryStore is an in-memory Store for tests and local dry runs.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	devices  map[string]*domain.DeviceRecord
	byKey    map[string]string // dedupe key -> device id
	catalog  []domain.PricingCatalogEntry
	verdicts []domain.VerdictEntry
	audit    []domain.AuditEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[string]*domain.DeviceRecord),
		byKey:   make(map[string]string),
	}
}

func copyDevice(d *domain.DeviceRecord) *domain.DeviceRecord {
	c := *d
	c.Deductions = append([]domain.Deduction(nil), d.Deductions...)
	c.Flags = append([]string(nil), d.Flags...)
	if d.DistanceMiles != nil {
		v := *d.DistanceMiles
		c.DistanceMiles = &v
	}
	return &c
}

func (s *MemoryStore) InsertDevice(_ context.Context, d *domain.DeviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.NewString()
	d.LastUpdated = time.Now().UTC()
	s.devices[d.ID] = copyDevice(d)
	s.byKey[d.DedupeKey] = d.ID
	return nil
}

func (s *MemoryStore) UpdateDevice(_ context.Context, d *domain.DeviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[d.ID]; !ok {
		return ErrNotFound
	}
	d.LastUpdated = time.Now().UTC()
	s.devices[d.ID] = copyDevice(d)
	return nil
}

func (s *MemoryStore) GetDevice(_ context.Context, id string) (*domain.DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDevice(d), nil
}

func (s *MemoryStore) GetDeviceByDedupeKey(_ context.Context, key string) (*domain.DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDevice(s.devices[id]), nil
}

func (s *MemoryStore) ListDevices(
	_ context.Context,
	opts *DeviceQuery,
) ([]domain.DeviceRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts == nil {
		opts = &DeviceQuery{}
	}

	var matched []domain.DeviceRecord
	for _, d := range s.devices {
		if opts.DealClass != nil && string(d.DealClass) != *opts.DealClass {
			continue
		}
		if opts.Grade != nil && string(d.FinalGrade) != *opts.Grade {
			continue
		}
		if opts.HotSellerOnly && !d.HotSeller {
			continue
		}
		matched = append(matched, *copyDevice(d))
	}

	switch opts.OrderBy {
	case "buyback_value":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].BuybackValue > matched[j].BuybackValue
		})
	case "risk_score":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].RiskScore < matched[j].RiskScore
		})
	default:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].LastUpdated.After(matched[j].LastUpdated)
		})
	}

	total := len(matched)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if opts.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[opts.Offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *MemoryStore) ListDedupeKeys(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make(map[string]struct{}, len(s.byKey))
	for k := range s.byKey {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (s *MemoryStore) DeleteDevice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byKey, d.DedupeKey)
	delete(s.devices, id)
	return nil
}

func (s *MemoryStore) ReplaceCatalog(_ context.Context, entries []domain.PricingCatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = make([]domain.PricingCatalogEntry, len(entries))
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		e := entries[i]
		e.Prices = make(map[domain.Grade]float64, len(entries[i].Prices))
		for g, p := range entries[i].Prices {
			e.Prices[g] = p
		}
		s.catalog[i] = e
	}
	return nil
}

func (s *MemoryStore) ListCatalog(_ context.Context) ([]domain.PricingCatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PricingCatalogEntry, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

func (s *MemoryStore) ReplaceVerdicts(_ context.Context, entries []domain.VerdictEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.verdicts = make([]domain.VerdictEntry, len(entries))
	for i := range entries {
		entries[i].ID = uuid.NewString()
		entries[i].CreatedAt = now
		s.verdicts[i] = entries[i]
	}
	return nil
}

func (s *MemoryStore) ListVerdicts(_ context.Context, limit int) ([]domain.VerdictEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultQueryLimit
	}
	out := make([]domain.VerdictEntry, len(s.verdicts))
	copy(out, s.verdicts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetVerdict(_ context.Context, id string) (*domain.VerdictEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.verdicts {
		if s.verdicts[i].ID == id {
			v := s.verdicts[i]
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SetVerdictStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.verdicts {
		if s.verdicts[i].ID == id {
			s.verdicts[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) AppendAudit(_ context.Context, e *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	c := *e
	c.Counts = make(map[string]int, len(e.Counts))
	for k, v := range e.Counts {
		c.Counts[k] = v
	}
	s.audit = append(s.audit, c)
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultQueryLimit
	}
	out := make([]domain.AuditEntry, len(s.audit))
	copy(out, s.audit)
	// Newest first, matching the SQL ordering.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Migrate is a no-op; the in-memory store has no schema.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
