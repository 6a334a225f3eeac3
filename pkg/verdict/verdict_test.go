package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resaleops/dealscout/pkg/verdict"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func TestDefaultWeights_SumToOne(t *testing.T) {
	t.Parallel()

	w := verdict.DefaultWeights()
	sum := w.Profit + w.Margin + w.Risk + w.Market + w.HotSeller
	assert.InDelta(t, 1.0, sum, 0.001, "default weights should sum to 1.0")
}

func TestCompositeScore(t *testing.T) {
	t.Parallel()

	cfg := verdict.DefaultConfig()

	// All factors saturated scores 100.
	best := &domain.DeviceRecord{
		ExpectedProfit:  300,
		ProfitMarginPct: 0.60,
		RiskScore:       1,
		MarketAdvantage: 100,
		HotSeller:       true,
	}
	assert.InDelta(t, 100.0, verdict.CompositeScore(best, cfg), 0.001)

	// Zero everywhere except max risk scores 0.
	worst := &domain.DeviceRecord{RiskScore: 10}
	assert.InDelta(t, 0.0, verdict.CompositeScore(worst, cfg), 0.001)

	// Mid-range device lands in between, dominated by margin weight.
	mid := &domain.DeviceRecord{
		ExpectedProfit:  100,
		ProfitMarginPct: 0.25,
		RiskScore:       5,
		MarketAdvantage: 40,
	}
	// profit 50*0.25 + margin 50*0.30 + risk (5/9*100)*0.20 + market 40*0.15
	want := 12.5 + 15.0 + (5.0/9.0*100)*0.20 + 6.0
	assert.InDelta(t, want, verdict.CompositeScore(mid, cfg), 0.001)
}

func TestRank(t *testing.T) {
	t.Parallel()

	devices := []domain.DeviceRecord{
		{
			ID: "low", Title: "Fair phone",
			ExpectedProfit: 40, ProfitMarginPct: 0.15, RiskScore: 6,
			DealClass: domain.DealMarginal,
		},
		{
			ID: "high", Title: "Mint phone",
			ExpectedProfit: 280, ProfitMarginPct: 0.33, RiskScore: 3,
			MarketAdvantage: 58, DealClass: domain.DealSolid,
			SellerContact: "555-0100",
		},
		{
			ID: "rejected", Title: "Stolen phone",
			FinalGrade: domain.GradeBlacklisted, DealClass: domain.DealPass,
		},
	}

	entries := verdict.Rank(devices, verdict.DefaultConfig())

	require.Len(t, entries, 2, "blacklisted devices are excluded")
	assert.Equal(t, "high", entries[0].DeviceID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "low", entries[1].DeviceID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Greater(t, entries[0].CompositeScore, entries[1].CompositeScore)
	assert.Equal(t, domain.VerdictPending, entries[0].Status)
	assert.NotEmpty(t, entries[0].AutoMessage)
}

func TestActionFor(t *testing.T) {
	t.Parallel()

	cfg := verdict.DefaultConfig()

	tests := []struct {
		name string
		dev  domain.DeviceRecord
		want domain.Action
	}{
		{
			name: "hot deal with contact gets a call",
			dev:  domain.DeviceRecord{DealClass: domain.DealHot, SellerContact: "555-0100"},
			want: domain.ActionCall,
		},
		{
			name: "hot deal without contact falls back to text",
			dev:  domain.DeviceRecord{DealClass: domain.DealHot},
			want: domain.ActionText,
		},
		{
			name: "solid deal gets a text",
			dev:  domain.DeviceRecord{DealClass: domain.DealSolid},
			want: domain.ActionText,
		},
		{
			name: "solid deal from hot seller upgrades to call",
			dev:  domain.DeviceRecord{DealClass: domain.DealSolid, HotSeller: true},
			want: domain.ActionCall,
		},
		{
			name: "marginal deal holds",
			dev:  domain.DeviceRecord{DealClass: domain.DealMarginal, RiskScore: 5},
			want: domain.ActionHold,
		},
		{
			name: "marginal low-risk hot seller gets a text",
			dev:  domain.DeviceRecord{DealClass: domain.DealMarginal, HotSeller: true, RiskScore: 3},
			want: domain.ActionText,
		},
		{
			name: "pass is pass",
			dev:  domain.DeviceRecord{DealClass: domain.DealPass},
			want: domain.ActionPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, verdict.ActionFor(&tt.dev, cfg))
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	cfg := verdict.DefaultConfig()

	d := &domain.DeviceRecord{
		Title:       "iPhone 13 Pro 256GB",
		OfferTarget: 569,
		SellerName:  "Jess Smith",
	}

	msg := verdict.Message(d, cfg)
	assert.Contains(t, msg, "iPhone 13 Pro 256GB")
	assert.Contains(t, msg, "$569")
	assert.NotContains(t, msg, "Hey Jess")

	d.HotSeller = true
	hotMsg := verdict.Message(d, cfg)
	assert.Contains(t, hotMsg, "Hey Jess, good to deal with you again!")
	assert.Contains(t, hotMsg, "$569")
}

func TestMessage_NoSellerName(t *testing.T) {
	t.Parallel()

	d := &domain.DeviceRecord{
		Title:       "Pixel 8",
		OfferTarget: 310,
		HotSeller:   true,
	}

	msg := verdict.Message(d, verdict.DefaultConfig())
	assert.Contains(t, msg, "Hey there,")
}
