package sellers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resaleops/dealscout/pkg/sellers"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		contact string
		seller  string
		want    string
	}{
		{name: "contact wins over name", contact: "555-123-4567", seller: "Jess Smith", want: "5551234567"},
		{name: "falls back to name", contact: "", seller: "Jess Smith", want: "jesssmith"},
		{name: "punctuation and case ignored", contact: "(555) 123.4567", seller: "", want: "5551234567"},
		{name: "empty when no identity", contact: "", seller: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sellers.Key(tt.contact, tt.seller))
		})
	}
}

func TestAggregate_HotSellerThreshold(t *testing.T) {
	t.Parallel()

	devices := []domain.DeviceRecord{
		{ID: "d1", SellerContact: "555-0001", DealClass: domain.DealHot},
		{ID: "d2", SellerContact: "555-0001", DealClass: domain.DealSolid},
		{ID: "d3", SellerContact: "555-0001", DealClass: domain.DealMarginal},
		{ID: "d4", SellerContact: "555-0001", DealClass: domain.DealPass},
		{ID: "d5", SellerContact: "555-0002", DealClass: domain.DealSolid},
	}

	aggs := sellers.Aggregate(devices, sellers.DefaultConfig())

	require.Len(t, aggs, 2)

	hot := aggs["5550001"]
	require.NotNil(t, hot)
	assert.True(t, hot.HotSeller)
	assert.Equal(t, 3, hot.QualifyingDeals)
	// PASS devices ride along so the flag reaches all of them.
	assert.Len(t, hot.DeviceIDs, 4)

	cold := aggs["5550002"]
	require.NotNil(t, cold)
	assert.False(t, cold.HotSeller)
	assert.Equal(t, 1, cold.QualifyingDeals)
}

func TestAggregate_NewAndPassNeverQualify(t *testing.T) {
	t.Parallel()

	devices := []domain.DeviceRecord{
		{ID: "d1", SellerName: "Sam Lee", DealClass: domain.DealNew},
		{ID: "d2", SellerName: "Sam Lee", DealClass: domain.DealPass},
		{ID: "d3", SellerName: "Sam Lee", DealClass: domain.DealPass},
	}

	aggs := sellers.Aggregate(devices, sellers.DefaultConfig())

	agg := aggs["samlee"]
	require.NotNil(t, agg)
	assert.Zero(t, agg.QualifyingDeals)
	assert.False(t, agg.HotSeller)
}

func TestAggregate_NoIdentityExcluded(t *testing.T) {
	t.Parallel()

	devices := []domain.DeviceRecord{
		{ID: "d1", DealClass: domain.DealSolid},
	}

	aggs := sellers.Aggregate(devices, sellers.DefaultConfig())
	assert.Empty(t, aggs)
}

func TestAggregate_ContactAndNameSameSeller(t *testing.T) {
	t.Parallel()

	// Same contact under different display names collapses into one
	// aggregate.
	devices := []domain.DeviceRecord{
		{ID: "d1", SellerName: "Jess", SellerContact: "555-0001", DealClass: domain.DealSolid},
		{ID: "d2", SellerName: "J. Smith", SellerContact: "555.0001", DealClass: domain.DealSolid},
	}

	aggs := sellers.Aggregate(devices, sellers.DefaultConfig())

	require.Len(t, aggs, 1)
	assert.Equal(t, 2, aggs["5550001"].QualifyingDeals)
}
