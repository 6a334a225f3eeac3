package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resaleops/dealscout/pkg/match"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func catalog() []domain.PricingCatalogEntry {
	return []domain.PricingCatalogEntry{
		{
			Brand: "Apple", Model: "iPhone 13", Storage: "128GB",
			Prices: map[domain.Grade]float64{
				domain.GradeA: 600, domain.GradeB: 480, domain.GradeC: 350,
			},
		},
		{
			Brand: "Apple", Model: "iPhone 13 Pro", Variant: "Pro", Storage: "256GB",
			Prices: map[domain.Grade]float64{
				domain.GradeA: 850, domain.GradeBPlus: 780, domain.GradeB: 700,
			},
		},
		{
			Brand: "Samsung", Model: "Galaxy S22", Storage: "",
			Prices: map[domain.Grade]float64{
				domain.GradeA: 550, domain.GradeB: 420,
			},
		},
	}
}

func TestDevice_PicksHighestConfidenceRow(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: "Apple", Model: "iPhone 13 Pro", Variant: "Pro",
		Storage: "256GB", FinalGrade: domain.GradeA,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	require.NotNil(t, res.Entry)
	assert.Equal(t, "iPhone 13 Pro", res.Entry.Model)
	assert.Equal(t, 850.0, res.BasePrice)
	assert.Equal(t, 850.0, res.FinalValue)
	// brand 25 + model exact 40 + storage exact 25 + variant 10
	assert.Equal(t, 100, res.Confidence)
	assert.Contains(t, res.Notes, "matched Apple iPhone 13 Pro")
}

func TestDevice_UnknownBrandNeverMatches(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: domain.Unknown, Model: "iPhone 13", FinalGrade: domain.GradeA,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	assert.Nil(t, res.Entry)
	assert.Equal(t, "no match", res.Notes)
}

func TestDevice_EmptyStorageRowPricesAnySize(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: "Samsung", Model: "Galaxy S22",
		Storage: "512GB", FinalGrade: domain.GradeB,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	require.NotNil(t, res.Entry)
	assert.Equal(t, 420.0, res.BasePrice)
	// brand 25 + model exact 40 + storage any 10
	assert.Equal(t, 75, res.Confidence)
}

func TestDevice_FuzzyModelMatch(t *testing.T) {
	t.Parallel()

	// "S22 Ultra" is no substring of "Galaxy S22"; the numeric token
	// comparison still pairs them after suffix stripping.
	dev := &domain.DeviceRecord{
		Brand: "Samsung", Model: "S22 Ultra",
		Storage: "128GB", FinalGrade: domain.GradeA,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	require.NotNil(t, res.Entry)
	assert.Equal(t, "Galaxy S22", res.Entry.Model)
	assert.Equal(t, 550.0, res.BasePrice)
}

func TestDevice_NoPriceForGrade(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: "Apple", Model: "iPhone 13 Pro", Variant: "Pro",
		Storage: "256GB", FinalGrade: domain.GradeD,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	assert.Nil(t, res.Entry)
	assert.Zero(t, res.BasePrice)
	assert.Contains(t, res.Notes, "no price for grade D")
	assert.Positive(t, res.Confidence)
}

func TestDevice_BlacklistedNotPriced(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: "Apple", Model: "iPhone 13",
		FinalGrade: domain.GradeBlacklisted,
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	assert.Nil(t, res.Entry)
	assert.Equal(t, "blacklisted; not priced", res.Notes)
}

func TestDevice_DeductionsReduceFinalValue(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Brand: "Apple", Model: "iPhone 13", Storage: "128GB",
		FinalGrade:  domain.GradeA,
		Description: "cracked back, weak battery holds maybe half a day",
	}

	res := match.Device(dev, catalog(), match.DefaultConfig())

	require.NotNil(t, res.Entry)
	assert.Equal(t, 600.0, res.BasePrice)
	// cracked back -80, degraded battery -45
	assert.Equal(t, 475.0, res.FinalValue)
	assert.Len(t, res.Deductions, 2)
	assert.Contains(t, res.Notes, "deductions:")
}

func TestDevice_FinalValueFloorsAtZero(t *testing.T) {
	t.Parallel()

	cheap := []domain.PricingCatalogEntry{{
		Brand: "Apple", Model: "iPhone 13", Storage: "128GB",
		Prices: map[domain.Grade]float64{domain.GradeC: 50},
	}}
	dev := &domain.DeviceRecord{
		Brand: "Apple", Model: "iPhone 13", Storage: "128GB",
		FinalGrade:  domain.GradeC,
		Description: "cracked back, cracked lens, carrier locked",
	}

	res := match.Device(dev, cheap, match.DefaultConfig())

	require.NotNil(t, res.Entry)
	assert.Zero(t, res.FinalValue)
}

func TestDeductions_RuleFiresOnce(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Description: "cracked back and the back glass cracked in two places",
	}

	ds := match.Deductions(dev, match.DefaultConfig())

	require.Len(t, ds, 1)
	assert.Equal(t, "cracked back", ds[0].Reason)
	assert.Equal(t, 80.0, ds[0].Amount)
}

func TestDeductions_MultipleCategoriesAdd(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		Description: "store demo, face id not working, no s pen",
	}

	ds := match.Deductions(dev, match.DefaultConfig())

	assert.Len(t, ds, 3)
	assert.Equal(t, 165.0, domain.DeductionTotal(ds))
}
