// Package verdict scores every non-blacklisted device with a composite
// deal score, ranks the results, assigns a recommended action, and
// renders the templated outreach message.
package verdict

import (
	"fmt"
	"sort"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// Weights defines the relative importance of each composite factor.
// Weights must sum to 1.0.
type Weights struct {
	Profit    float64
	Margin    float64
	Risk      float64
	Market    float64
	HotSeller float64
}

// DefaultWeights returns the default composite weights.
func DefaultWeights() Weights {
	return Weights{
		Profit:    0.25,
		Margin:    0.30,
		Risk:      0.20,
		Market:    0.15,
		HotSeller: 0.10,
	}
}

// Config holds ranking parameters and the outreach template.
type Config struct {
	Weights Weights

	// Reference ceilings for normalizing profit dollars and margin into
	// 0-100 factor scores.
	ProfitCeiling float64
	MarginCeiling float64

	// LowRiskThreshold gates the MARGINAL → TEXT action for hot sellers.
	LowRiskThreshold int

	// MessageTemplate supports {title} and {offer} placeholders.
	// HotSellerGreeting supports {first_name} and is prepended for hot
	// sellers.
	MessageTemplate   string
	HotSellerGreeting string
}

// DefaultConfig returns the documented ranking defaults.
func DefaultConfig() Config {
	return Config{
		Weights:          DefaultWeights(),
		ProfitCeiling:    200,
		MarginCeiling:    0.50,
		LowRiskThreshold: 3,
		MessageTemplate: "Hi! Saw your listing for {title} - is it still available? " +
			"I can pay ${offer} cash and pick up today.",
		HotSellerGreeting: "Hey {first_name}, good to deal with you again! ",
	}
}

// CompositeScore computes the weighted 0-100 deal score for a device.
func CompositeScore(d *domain.DeviceRecord, cfg Config) float64 {
	w := cfg.Weights

	profitScore := clamp(d.ExpectedProfit/cfg.ProfitCeiling*100, 0, 100)
	marginScore := clamp(d.ProfitMarginPct/cfg.MarginCeiling*100, 0, 100)
	riskScore := float64(10-d.RiskScore) / 9 * 100

	var hotScore float64
	if d.HotSeller {
		hotScore = 100
	}

	return profitScore*w.Profit +
		marginScore*w.Margin +
		riskScore*w.Risk +
		d.MarketAdvantage*w.Market +
		hotScore*w.HotSeller
}

// Rank builds the full worklist: one entry per non-blacklisted device,
// sorted by composite score descending, rank recomputed from scratch.
func Rank(devices []domain.DeviceRecord, cfg Config) []domain.VerdictEntry {
	entries := make([]domain.VerdictEntry, 0, len(devices))

	for i := range devices {
		d := &devices[i]
		if d.Blacklisted() {
			continue
		}
		action := ActionFor(d, cfg)
		entries = append(entries, domain.VerdictEntry{
			DeviceID:          d.ID,
			CompositeScore:    CompositeScore(d, cfg),
			Title:             d.Title,
			SellerName:        d.SellerName,
			SellerContact:     d.SellerContact,
			DealClass:         d.DealClass,
			FinalGrade:        d.FinalGrade,
			AskingPrice:       d.AskingPrice,
			BuybackValue:      d.BuybackValue,
			MAO:               d.MAO,
			OfferTarget:       d.OfferTarget,
			ExpectedProfit:    d.ExpectedProfit,
			ProfitMarginPct:   d.ProfitMarginPct,
			RiskScore:         d.RiskScore,
			MarketAdvantage:   d.MarketAdvantage,
			HotSeller:         d.HotSeller,
			RecommendedAction: action,
			AutoMessage:       Message(d, cfg),
			Status:            domain.VerdictPending,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompositeScore > entries[j].CompositeScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// ActionFor derives the recommended action from deal class, risk,
// hot-seller flag, and contact availability.
func ActionFor(d *domain.DeviceRecord, cfg Config) domain.Action {
	hasContact := strings.TrimSpace(d.SellerContact) != ""

	switch d.DealClass {
	case domain.DealHot:
		if hasContact {
			return domain.ActionCall
		}
		return domain.ActionText
	case domain.DealSolid:
		if d.HotSeller {
			return domain.ActionCall
		}
		return domain.ActionText
	case domain.DealMarginal:
		if d.HotSeller && d.RiskScore <= cfg.LowRiskThreshold {
			return domain.ActionText
		}
		return domain.ActionHold
	case domain.DealPass:
		return domain.ActionPass
	default:
		return domain.ActionHold
	}
}

// Message renders the outreach message for a device, personalizing the
// greeting for hot sellers.
func Message(d *domain.DeviceRecord, cfg Config) string {
	msg := cfg.MessageTemplate
	msg = strings.ReplaceAll(msg, "{title}", d.Title)
	msg = strings.ReplaceAll(msg, "{offer}", fmt.Sprintf("%.0f", d.OfferTarget))

	if d.HotSeller && cfg.HotSellerGreeting != "" {
		greeting := strings.ReplaceAll(cfg.HotSellerGreeting, "{first_name}", firstName(d.SellerName))
		msg = greeting + msg
	}
	return msg
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
