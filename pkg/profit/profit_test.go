package profit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resaleops/dealscout/pkg/profit"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func TestDevice_LowRiskMintDeal(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		FinalGrade:   domain.GradeA,
		BuybackValue: 850,
		AskingPrice:  600,
		Carrier:      "Unlocked",
	}

	res := profit.Device(dev, profit.DefaultConfig())

	// risk 5 - 2 (grade A) = 3, low-risk bonus applies:
	// 850 * 0.75 * 1.05 = 669.375 -> 669, offer 669 * 0.85 -> 569.
	assert.Equal(t, 3, res.RiskScore)
	assert.Equal(t, 669.0, res.MAO)
	assert.Equal(t, 569.0, res.OfferTarget)
	assert.Equal(t, 281.0, res.ExpectedProfit)
	assert.InDelta(t, 0.3306, res.ProfitMarginPct, 0.001)
	assert.Equal(t, domain.DealSolid, res.DealClass)
}

func TestDevice_OfferCapNearAsking(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		FinalGrade:   domain.GradeA,
		BuybackValue: 850,
		AskingPrice:  500,
		Carrier:      "Unlocked",
	}

	res := profit.Device(dev, profit.DefaultConfig())

	// Uncapped offer 569 exceeds 95% of asking (475); capped to 90%.
	assert.Equal(t, 450.0, res.OfferTarget)
	assert.Equal(t, 400.0, res.ExpectedProfit)
	assert.Equal(t, domain.DealHot, res.DealClass)
}

func TestDevice_UnmatchedIsPass(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		FinalGrade:  domain.GradeB,
		AskingPrice: 300,
		Carrier:     "Unlocked",
	}

	res := profit.Device(dev, profit.DefaultConfig())

	assert.Equal(t, domain.DealPass, res.DealClass)
	assert.Zero(t, res.MAO)
	assert.Zero(t, res.OfferTarget)
	assert.Zero(t, res.ExpectedProfit)
	// risk 5 + 0 (grade B) + 3 (no match) = 8
	assert.Equal(t, 8, res.RiskScore)
}

func TestDevice_NoAskingPrice(t *testing.T) {
	t.Parallel()

	dev := &domain.DeviceRecord{
		FinalGrade:   domain.GradeA,
		BuybackValue: 850,
		Carrier:      "Unlocked",
	}

	res := profit.Device(dev, profit.DefaultConfig())

	// An unpriced listing earns no market-advantage bonus, so the MAO
	// stays at 850 * 0.75 * 1.05 = 669 and the offer at 569.
	assert.Zero(t, res.MarketAdvantage)
	assert.Equal(t, 669.0, res.MAO)
	assert.Equal(t, 569.0, res.OfferTarget)
}

func TestDevice_HotSellerBonusRaisesMAO(t *testing.T) {
	t.Parallel()

	base := &domain.DeviceRecord{
		FinalGrade:   domain.GradeA,
		BuybackValue: 850,
		AskingPrice:  800,
		Carrier:      "Unlocked",
	}
	hot := *base
	hot.HotSeller = true

	cold := profit.Device(base, profit.DefaultConfig())
	warm := profit.Device(&hot, profit.DefaultConfig())

	assert.Equal(t, 669.0, cold.MAO)
	// 850 * 0.75 * 1.05 (risk 2 after hot -1) * 1.05 = 702.84 -> 703
	assert.Equal(t, 703.0, warm.MAO)
	assert.Equal(t, 2, warm.RiskScore)
}

func TestRiskScore(t *testing.T) {
	t.Parallel()

	cfg := profit.DefaultConfig()
	miles := func(m float64) *float64 { return &m }

	tests := []struct {
		name string
		dev  domain.DeviceRecord
		want int
	}{
		{
			name: "grade D with unknown carrier and no match",
			dev:  domain.DeviceRecord{FinalGrade: domain.GradeD, Carrier: domain.Unknown},
			// 5 + 2 + 1 + 3, clamped to 10
			want: 10,
		},
		{
			name: "problem carrier adds one",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeB, Carrier: "Boost", BuybackValue: 400,
			},
			want: 6,
		},
		{
			name: "deductions add half their count capped at two",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeB, Carrier: "Unlocked", BuybackValue: 400,
				Deductions: []domain.Deduction{
					{Amount: 80}, {Amount: 60}, {Amount: 50}, {Amount: 45},
					{Amount: 40}, {Amount: 35},
				},
			},
			// 5 + min(6/2, 2) = 7
			want: 7,
		},
		{
			name: "positive flags never raise risk",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeA, Carrier: "Unlocked", BuybackValue: 400,
				Flags: []string{"positive:with box", "positive:warranty"},
			},
			want: 3,
		},
		{
			name: "issue flags raise risk half each",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeB, Carrier: "Unlocked", BuybackValue: 400,
				Flags: []string{"moderate:cracked", "minor:scuff"},
			},
			want: 6,
		},
		{
			name: "far distance adds two",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeB, Carrier: "Unlocked", BuybackValue: 400,
				DistanceMiles: miles(150),
			},
			want: 7,
		},
		{
			name: "medium distance adds one",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeB, Carrier: "Unlocked", BuybackValue: 400,
				DistanceMiles: miles(60),
			},
			want: 6,
		},
		{
			name: "floor clamps at one",
			dev: domain.DeviceRecord{
				FinalGrade: domain.GradeA, Carrier: "Unlocked", BuybackValue: 400,
				HotSeller: true,
			},
			// 5 - 2 - 1 = 2, no clamp needed but stays in range
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := profit.RiskScore(&tt.dev, cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarketAdvantage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buyback float64
		asking  float64
		want    float64
	}{
		{name: "asking at half of buyback saturates", buyback: 800, asking: 400, want: 100},
		{name: "asking at buyback scores zero", buyback: 800, asking: 800, want: 0},
		{name: "asking above buyback floors at zero", buyback: 800, asking: 900, want: 0},
		{name: "quarter discount doubles to fifty", buyback: 800, asking: 600, want: 50},
		{name: "no buyback value", buyback: 0, asking: 100, want: 0},
		{name: "no asking price scores zero, not saturated", buyback: 800, asking: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := profit.MarketAdvantage(tt.buyback, tt.asking)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cfg := profit.DefaultConfig()

	tests := []struct {
		name   string
		margin float64
		prof   float64
		risk   int
		want   domain.DealClass
	}{
		{name: "hot deal", margin: 0.40, prof: 150, risk: 4, want: domain.DealHot},
		{name: "hot margin but risk too high falls to solid", margin: 0.40, prof: 150, risk: 6, want: domain.DealSolid},
		{name: "solid deal", margin: 0.28, prof: 80, risk: 5, want: domain.DealSolid},
		{name: "marginal deal", margin: 0.18, prof: 40, risk: 5, want: domain.DealMarginal},
		{name: "thin margin passes", margin: 0.10, prof: 40, risk: 4, want: domain.DealPass},
		{name: "risk ceiling always passes", margin: 0.50, prof: 300, risk: 9, want: domain.DealPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := profit.Classify(tt.margin, tt.prof, tt.risk, cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}
