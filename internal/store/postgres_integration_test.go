//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/resaleops/dealscout/internal/store"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dealscout_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testDevice(key string) *domain.DeviceRecord {
	return &domain.DeviceRecord{
		DedupeKey:     key,
		Platform:      "facebook",
		ListingURL:    "https://facebook.com/marketplace/item/" + key,
		Title:         "iPhone 13 Pro 256GB Unlocked",
		Brand:         "Apple",
		Model:         "iPhone 13 Pro",
		Variant:       "Pro",
		Storage:       "256GB",
		Carrier:       "Unlocked",
		Description:   "Great condition, always in a case",
		ConditionRaw:  "Used - Like New",
		ConditionNorm: "Like New",
		GuessedGrade:  domain.GradeA,
		FinalGrade:    domain.GradeA,
		AskingPrice:   550,
		Deductions:    []domain.Deduction{},
		Flags:         []string{},
		SellerName:    "Dana",
		SellerContact: "555-0100",
		Location:      "Springfield",
		DealClass:     domain.DealNew,
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_InsertDevice(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	d := testDevice("insert-1")
	require.NoError(t, s.InsertDevice(ctx, d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.LastUpdated.IsZero())

	got, err := s.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 13 Pro 256GB Unlocked", got.Title)
	assert.Equal(t, domain.GradeA, got.FinalGrade)
	assert.Empty(t, got.Deductions)
}

func TestPostgresStore_GetDeviceByDedupeKey(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		d := testDevice("dedupe-1")
		require.NoError(t, s.InsertDevice(ctx, d))

		got, err := s.GetDeviceByDedupeKey(ctx, "dedupe-1")
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetDeviceByDedupeKey(ctx, "nonexistent")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPostgresStore_UpdateDevice(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	d := testDevice("update-1")
	require.NoError(t, s.InsertDevice(ctx, d))

	d.MatchedBasePrice = 850
	d.Deductions = []domain.Deduction{{Reason: "cracked back glass", Amount: 80}}
	d.BuybackValue = 770
	d.MAO = 606
	d.OfferTarget = 515
	d.RiskScore = 3
	d.DealClass = domain.DealSolid
	d.Flags = []string{"positive:like new"}
	require.NoError(t, s.UpdateDevice(ctx, d))

	got, err := s.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.InDelta(t, 770.0, got.BuybackValue, 0.01)
	assert.Equal(t, domain.DealSolid, got.DealClass)
	require.Len(t, got.Deductions, 1)
	assert.Equal(t, "cracked back glass", got.Deductions[0].Reason)
	assert.Equal(t, []string{"positive:like new"}, got.Flags)
}

func TestPostgresStore_UpdateDevice_NotFound(t *testing.T) {
	s := setupPostgres(t)

	d := testDevice("ghost-1")
	d.ID = "00000000-0000-0000-0000-000000000000"
	err := s.UpdateDevice(context.Background(), d)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ListDevices(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	classes := []domain.DealClass{
		domain.DealHot, domain.DealSolid, domain.DealSolid,
		domain.DealMarginal, domain.DealPass,
	}
	for i, c := range classes {
		d := testDevice("list-" + string(rune('a'+i)))
		d.DealClass = c
		d.BuybackValue = float64(400 + i*100)
		require.NoError(t, s.InsertDevice(ctx, d))
	}

	t.Run("no filters", func(t *testing.T) {
		devices, total, err := s.ListDevices(ctx, &store.DeviceQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, devices, 5)
	})

	t.Run("filter by deal class", func(t *testing.T) {
		solid := string(domain.DealSolid)
		devices, total, err := s.ListDevices(ctx, &store.DeviceQuery{DealClass: &solid})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, devices, 2)
	})

	t.Run("order by buyback value", func(t *testing.T) {
		devices, _, err := s.ListDevices(ctx, &store.DeviceQuery{OrderBy: "buyback_value"})
		require.NoError(t, err)
		require.Len(t, devices, 5)
		assert.InDelta(t, 800.0, devices[0].BuybackValue, 0.01)
	})

	t.Run("pagination total count is correct", func(t *testing.T) {
		devices, total, err := s.ListDevices(ctx, &store.DeviceQuery{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, devices, 1)
	})
}

func TestPostgresStore_ListDedupeKeys(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDevice(ctx, testDevice("keys-1")))
	require.NoError(t, s.InsertDevice(ctx, testDevice("keys-2")))

	keys, err := s.ListDedupeKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "keys-1")
	assert.Contains(t, keys, "keys-2")
}

func TestPostgresStore_DeleteDevice(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	d := testDevice("delete-1")
	require.NoError(t, s.InsertDevice(ctx, d))
	require.NoError(t, s.DeleteDevice(ctx, d.ID))

	_, err := s.GetDevice(ctx, d.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteDevice(ctx, d.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_CatalogReplace(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	entries := []domain.PricingCatalogEntry{
		{
			Brand: "Apple", Model: "iPhone 13 Pro", Storage: "256GB",
			Prices: map[domain.Grade]float64{
				domain.GradeA: 850, domain.GradeB: 700, domain.GradeC: 500,
			},
		},
		{
			Brand: "Samsung", Model: "Galaxy S22", Storage: "128GB",
			Prices: map[domain.Grade]float64{domain.GradeA: 450},
		},
	}
	require.NoError(t, s.ReplaceCatalog(ctx, entries))

	got, err := s.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Apple", got[0].Brand)
	price, ok := got[0].PriceFor(domain.GradeB)
	require.True(t, ok)
	assert.InDelta(t, 700.0, price, 0.01)

	// Replacing again swaps the whole table.
	require.NoError(t, s.ReplaceCatalog(ctx, entries[:1]))
	got, err = s.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPostgresStore_VerdictLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	d := testDevice("verdict-1")
	require.NoError(t, s.InsertDevice(ctx, d))

	entries := []domain.VerdictEntry{
		{
			Rank: 1, DeviceID: d.ID, CompositeScore: 78.5,
			Title: d.Title, SellerName: d.SellerName, SellerContact: d.SellerContact,
			DealClass: domain.DealSolid, FinalGrade: domain.GradeA,
			AskingPrice: 550, BuybackValue: 850, MAO: 669, OfferTarget: 569,
			ExpectedProfit: 281, ProfitMarginPct: 0.33,
			RiskScore: 3, MarketAdvantage: 70.6,
			RecommendedAction: domain.ActionCall,
			AutoMessage:       "Hi! Saw your listing",
			Status:            domain.VerdictPending,
		},
	}
	require.NoError(t, s.ReplaceVerdicts(ctx, entries))
	assert.NotEmpty(t, entries[0].ID)

	list, err := s.ListVerdicts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Rank)
	assert.Equal(t, domain.ActionCall, list[0].RecommendedAction)

	got, err := s.GetVerdict(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictPending, got.Status)

	require.NoError(t, s.SetVerdictStatus(ctx, entries[0].ID, domain.VerdictContacted))
	got, err = s.GetVerdict(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictContacted, got.Status)

	// Wholesale replace drops the old worklist.
	require.NoError(t, s.ReplaceVerdicts(ctx, nil))
	list, err = s.ListVerdicts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPostgresStore_Audit(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	e := &domain.AuditEntry{
		Stage:   "ingest",
		Summary: "ingested 12 listings, 3 duplicates skipped",
		Counts:  map[string]int{"ingested": 12, "duplicates": 3},
	}
	require.NoError(t, s.AppendAudit(ctx, e))
	assert.NotEmpty(t, e.ID)

	entries, err := s.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ingest", entries[0].Stage)
	assert.Equal(t, 3, entries[0].Counts["duplicates"])
}
