// Package profit computes the risk score, maximum allowable offer,
// first offer, expected profit, and deal class for a matched device.
package profit

import (
	"math"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// Config holds pricing thresholds and multipliers. Every field has a
// documented default in DefaultConfig; absent settings fall back to it.
type Config struct {
	TargetMargin float64

	LowRiskThreshold  int
	HighRiskThreshold int
	LowRiskBonus      float64
	HighRiskPenalty   float64

	HotSellerBonus float64

	MarketAdvantageBonusThreshold float64
	MarketAdvantageBonus          float64

	OfferToMAORatio float64

	MaxAcceptableRisk int

	ProblemCarriers []string
	NearMiles       float64
	MediumMiles     float64

	// Deal class thresholds, evaluated strictly top-down.
	HotMarginThreshold      float64
	HotMinProfit            float64
	HotMaxRisk              int
	SolidMarginThreshold    float64
	SolidMinProfit          float64
	MarginalMarginThreshold float64
	MarginalMinProfit       float64
}

// DefaultConfig returns the documented default pricing settings.
func DefaultConfig() Config {
	return Config{
		TargetMargin:                  0.25,
		LowRiskThreshold:              3,
		HighRiskThreshold:             7,
		LowRiskBonus:                  1.05,
		HighRiskPenalty:               0.90,
		HotSellerBonus:                1.05,
		MarketAdvantageBonusThreshold: 60,
		MarketAdvantageBonus:          1.03,
		OfferToMAORatio:               0.85,
		MaxAcceptableRisk:             8,
		ProblemCarriers:               []string{"Boost", "Cricket", "Metro"},
		NearMiles:                     25,
		MediumMiles:                   100,
		HotMarginThreshold:            0.35,
		HotMinProfit:                  100,
		HotMaxRisk:                    5,
		SolidMarginThreshold:          0.25,
		SolidMinProfit:                60,
		MarginalMarginThreshold:       0.15,
		MarginalMinProfit:             30,
	}
}

// Result carries the computed commercial and risk fields.
type Result struct {
	RiskScore       int
	MarketAdvantage float64
	MAO             float64
	OfferTarget     float64
	ExpectedProfit  float64
	ProfitMarginPct float64
	DealClass       domain.DealClass
}

// Device prices one device. The device must already carry its grading
// and matching results (FinalGrade, BuybackValue, Deductions, Flags,
// HotSeller). An unmatched device (buyback value 0) is a legitimate
// terminal state: everything zeroes and the class is PASS.
func Device(dev *domain.DeviceRecord, cfg Config) Result {
	risk := RiskScore(dev, cfg)

	if dev.BuybackValue <= 0 {
		return Result{RiskScore: risk, DealClass: domain.DealPass}
	}

	ma := MarketAdvantage(dev.BuybackValue, dev.AskingPrice)

	mao := dev.BuybackValue * (1 - cfg.TargetMargin)
	switch {
	case risk <= cfg.LowRiskThreshold:
		mao *= cfg.LowRiskBonus
	case risk >= cfg.HighRiskThreshold:
		mao *= cfg.HighRiskPenalty
	}
	if dev.HotSeller {
		mao *= cfg.HotSellerBonus
	}
	if ma >= cfg.MarketAdvantageBonusThreshold {
		mao *= cfg.MarketAdvantageBonus
	}
	mao = math.Round(mao)

	offer := math.Round(mao * cfg.OfferToMAORatio)
	// Never reveal the full MAO: when the uncapped offer would exceed
	// 95% of asking, cap it at 90% of asking. A zero asking price means
	// the listing carries no price, so there is nothing to cap against;
	// such a device also gets no market-advantage bonus above.
	if dev.AskingPrice > 0 && offer > dev.AskingPrice*0.95 {
		offer = math.Min(offer, math.Round(dev.AskingPrice*0.90))
	}

	prof := dev.BuybackValue - offer
	margin := prof / dev.BuybackValue

	return Result{
		RiskScore:       risk,
		MarketAdvantage: ma,
		MAO:             mao,
		OfferTarget:     offer,
		ExpectedProfit:  prof,
		ProfitMarginPct: margin,
		DealClass:       Classify(margin, prof, risk, cfg),
	}
}

// gradeRiskOffset adjusts the neutral risk by condition tier.
func gradeRiskOffset(g domain.Grade) float64 {
	switch g {
	case domain.GradeA:
		return -2
	case domain.GradeBPlus:
		return -1
	case domain.GradeB:
		return 0
	case domain.GradeC:
		return 1
	case domain.GradeD:
		return 2
	default: // DOA and anything unpriceable
		return 3
	}
}

// RiskScore computes the 1-10 risk score for a device. Starts neutral at
// 5 and applies grade, deduction, flag, carrier, match, seller, and
// distance adjustments before rounding and clamping.
func RiskScore(dev *domain.DeviceRecord, cfg Config) int {
	r := 5.0
	r += gradeRiskOffset(dev.FinalGrade)

	r += math.Min(float64(len(dev.Deductions)/2), 2)
	r += math.Min(0.5*float64(issueFlagCount(dev.Flags)), 2)

	switch {
	case dev.Carrier == domain.Unknown || dev.Carrier == "":
		r++
	case isProblemCarrier(dev.Carrier, cfg.ProblemCarriers):
		r++
	}

	if dev.BuybackValue <= 0 {
		r += 3
	}
	if dev.HotSeller {
		r--
	}

	if dev.DistanceMiles != nil {
		switch {
		case *dev.DistanceMiles > cfg.MediumMiles:
			r += 2
		case *dev.DistanceMiles > cfg.NearMiles:
			r++
		}
	}

	score := int(math.Round(r))
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// MarketAdvantage scores 0-100 how far below buyback value the asking
// price sits. Doubled so an asking price at half of buyback saturates.
// An absent asking price is unknown, not free: it scores zero, so the
// bonus multiplier never fires on a listing with no price.
func MarketAdvantage(buyback, asking float64) float64 {
	if buyback <= 0 || asking <= 0 {
		return 0
	}
	ma := ((buyback - asking) / buyback) * 100 * 2
	if ma < 0 {
		return 0
	}
	if ma > 100 {
		return 100
	}
	return ma
}

// Classify assigns the deal class. Rules are evaluated top-down and the
// first rule whose conditions all hold wins, so classes are mutually
// exclusive. Risk above the acceptable ceiling is always a PASS.
func Classify(margin, prof float64, risk int, cfg Config) domain.DealClass {
	switch {
	case risk > cfg.MaxAcceptableRisk:
		return domain.DealPass
	case margin >= cfg.HotMarginThreshold && prof >= cfg.HotMinProfit && risk <= cfg.HotMaxRisk:
		return domain.DealHot
	case margin >= cfg.SolidMarginThreshold && prof >= cfg.SolidMinProfit:
		return domain.DealSolid
	case margin >= cfg.MarginalMarginThreshold && prof >= cfg.MarginalMinProfit:
		return domain.DealMarginal
	default:
		return domain.DealPass
	}
}

// issueFlagCount counts flags that describe problems. Positive
// indicator flags never raise risk.
func issueFlagCount(flags []string) int {
	n := 0
	for _, f := range flags {
		if !strings.HasPrefix(f, "positive:") {
			n++
		}
	}
	return n
}

func isProblemCarrier(carrier string, problem []string) bool {
	for _, p := range problem {
		if strings.EqualFold(carrier, p) {
			return true
		}
	}
	return false
}
