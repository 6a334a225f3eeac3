// Package domain defines the core business types for dealscout.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Grade represents a device condition tier. Grades are totally ordered:
// A is best, DOA is worst. Blacklisted sits outside the order and is
// never priced.
type Grade string

// Grade constants.
const (
	GradeA           Grade = "A"
	GradeBPlus       Grade = "B+"
	GradeB           Grade = "B"
	GradeC           Grade = "C"
	GradeD           Grade = "D"
	GradeDOA         Grade = "DOA"
	GradeBlacklisted Grade = "BLACKLISTED"
)

// gradeSequence is the fixed upgrade/downgrade ladder.
var gradeSequence = []Grade{GradeA, GradeBPlus, GradeB, GradeC, GradeD, GradeDOA}

// GradeIndex returns the position of g in the grade ladder, or -1 if g is
// not an ordered grade (e.g. BLACKLISTED or empty).
func GradeIndex(g Grade) int {
	for i, s := range gradeSequence {
		if s == g {
			return i
		}
	}
	return -1
}

// GradeAt returns the grade at ladder position i, clamped to the ladder
// boundaries.
func GradeAt(i int) Grade {
	if i < 0 {
		i = 0
	}
	if i >= len(gradeSequence) {
		i = len(gradeSequence) - 1
	}
	return gradeSequence[i]
}

// Priceable reports whether g can be looked up in a pricing catalog.
func (g Grade) Priceable() bool {
	return GradeIndex(g) >= 0
}

// DealClass is a discretized summary of profitability and risk.
type DealClass string

// Deal class constants. Classification is evaluated top-down; exactly one
// class applies to a priced device.
const (
	DealNew      DealClass = "NEW"
	DealHot      DealClass = "HOT DEAL"
	DealSolid    DealClass = "SOLID DEAL"
	DealMarginal DealClass = "MARGINAL"
	DealPass     DealClass = "PASS"
)

// Action is the recommended next step for a verdict entry.
type Action string

// Action constants.
const (
	ActionCall Action = "CALL"
	ActionText Action = "TEXT"
	ActionHold Action = "HOLD"
	ActionPass Action = "PASS"
)

// Unknown is the explicit sentinel for fields the normalizer could not
// parse. Fields are never silently dropped.
const Unknown = "Unknown"

// ListingRecord is one raw scraped or submitted listing. Immutable;
// created by intake, never mutated.
type ListingRecord struct {
	Platform      string    `json:"platform"`
	ListingURL    string    `json:"listing_url"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AskingPrice   float64   `json:"asking_price"`
	RawLocation   string    `json:"raw_location"`
	RawCondition  string    `json:"raw_condition"`
	RawCarrier    string    `json:"raw_carrier"`
	SellerName    string    `json:"seller_name"`
	SellerContact string    `json:"seller_contact"`
	Timestamp     time.Time `json:"timestamp"`
	SourceChannel string    `json:"source_channel"`
}

// DeviceRecord is the canonical record for one unique listing after
// dedup. Created by the normalizer; mutated in place by the grading,
// matching, and pricing stages.
type DeviceRecord struct {
	ID        string `json:"id"         db:"id"`
	DedupeKey string `json:"dedupe_key" db:"dedupe_key"`

	// Descriptive
	Platform   string `json:"platform"    db:"platform"`
	ListingURL string `json:"listing_url" db:"listing_url"`
	Title      string `json:"title"       db:"title"`
	Brand      string `json:"brand"       db:"brand"`
	Model      string `json:"model"       db:"model"`
	Variant    string `json:"variant"     db:"variant"`
	Storage    string `json:"storage"     db:"storage"`
	Carrier    string `json:"carrier"     db:"carrier"`

	// Condition
	Description   string `json:"description"            db:"description"`
	ConditionRaw  string `json:"condition_raw"          db:"condition_raw"`
	ConditionNorm string `json:"condition_norm"         db:"condition_norm"`
	GuessedGrade  Grade  `json:"guessed_grade"          db:"guessed_grade"`
	ManualGrade   Grade  `json:"manual_grade,omitempty" db:"manual_grade"`
	FinalGrade    Grade  `json:"final_grade"            db:"final_grade"`

	// Commercial
	AskingPrice      float64     `json:"asking_price"       db:"asking_price"`
	MatchedBasePrice float64     `json:"matched_base_price" db:"matched_base_price"`
	Deductions       []Deduction `json:"deductions"         db:"deductions"`
	BuybackValue     float64     `json:"buyback_value"      db:"buyback_value"`
	MAO              float64     `json:"mao"                db:"mao"`
	OfferTarget      float64     `json:"offer_target"       db:"offer_target"`
	ExpectedProfit   float64     `json:"expected_profit"    db:"expected_profit"`
	ProfitMarginPct  float64     `json:"profit_margin_pct"  db:"profit_margin_pct"`
	MatchConfidence  int         `json:"match_confidence"   db:"match_confidence"`
	MatchNotes       string      `json:"match_notes"        db:"match_notes"`

	// Risk / market
	RiskScore       int     `json:"risk_score"       db:"risk_score"`
	MarketAdvantage float64 `json:"market_advantage" db:"market_advantage"`
	HotSeller       bool    `json:"hot_seller"       db:"hot_seller"`

	// Audit
	Flags []string `json:"flags" db:"flags"`
	Notes string   `json:"notes" db:"notes"`

	// Seller
	SellerName    string   `json:"seller_name"              db:"seller_name"`
	SellerContact string   `json:"seller_contact"           db:"seller_contact"`
	Location      string   `json:"location"                 db:"location"`
	ZIP           string   `json:"zip"                      db:"zip"`
	DistanceMiles *float64 `json:"distance_miles,omitempty" db:"distance_miles"`

	// Lifecycle
	DealClass   DealClass `json:"deal_class"   db:"deal_class"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// EffectiveGrade returns the manual override when an operator supplied
// one, otherwise the computed grade. Overrides never get recomputed away.
func (d *DeviceRecord) EffectiveGrade() Grade {
	if d.ManualGrade != "" {
		return d.ManualGrade
	}
	return d.GuessedGrade
}

// Blacklisted reports whether the device was auto-rejected by grading.
func (d *DeviceRecord) Blacklisted() bool {
	return d.FinalGrade == GradeBlacklisted
}

// Deduction is one itemized dollar deduction applied against the matched
// base price.
type Deduction struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// DeductionTotal sums a deduction list.
func DeductionTotal(ds []Deduction) float64 {
	var total float64
	for _, d := range ds {
		total += d.Amount
	}
	return total
}

// DeductionSummary renders deductions as "reason (-$80); reason (-$60)"
// for audit and outreach notes.
func DeductionSummary(ds []Deduction) string {
	if len(ds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, fmt.Sprintf("%s (-$%.0f)", d.Reason, d.Amount))
	}
	return strings.Join(parts, "; ")
}

// PricingCatalogEntry is one row of the partner buyback price table.
// Read-only reference data supplied externally.
type PricingCatalogEntry struct {
	ID      string `json:"id,omitempty" db:"id"`
	Brand   string `json:"brand"        db:"brand"`
	Model   string `json:"model"        db:"model"`
	Variant string `json:"variant"      db:"variant"`
	Storage string `json:"storage"      db:"storage"`

	// Prices maps grade to buyback price. A grade missing from the map
	// has no price in that column and is treated as no-match.
	Prices map[Grade]float64 `json:"prices" db:"prices"`
}

// PriceFor returns the buyback price for a grade, if the row has one.
func (e *PricingCatalogEntry) PriceFor(g Grade) (float64, bool) {
	p, ok := e.Prices[g]
	return p, ok
}

// SellerAggregate groups a seller's devices for repeat-deal detection.
// Derived per pipeline run, not persisted.
type SellerAggregate struct {
	SellerKey       string   `json:"seller_key"`
	QualifyingDeals int      `json:"qualifying_deals"`
	HotSeller       bool     `json:"hot_seller"`
	DeviceIDs       []string `json:"device_ids"`
}

// VerdictEntry is one row of the ranked worklist. Fully rebuilt on each
// ranking run.
type VerdictEntry struct {
	ID             string  `json:"id"              db:"id"`
	Rank           int     `json:"rank"            db:"rank"`
	DeviceID       string  `json:"device_id"       db:"device_id"`
	CompositeScore float64 `json:"composite_score" db:"composite_score"`

	Title         string `json:"title"          db:"title"`
	SellerName    string `json:"seller_name"    db:"seller_name"`
	SellerContact string `json:"seller_contact" db:"seller_contact"`

	DealClass       DealClass `json:"deal_class"        db:"deal_class"`
	FinalGrade      Grade     `json:"final_grade"       db:"final_grade"`
	AskingPrice     float64   `json:"asking_price"      db:"asking_price"`
	BuybackValue    float64   `json:"buyback_value"     db:"buyback_value"`
	MAO             float64   `json:"mao"               db:"mao"`
	OfferTarget     float64   `json:"offer_target"      db:"offer_target"`
	ExpectedProfit  float64   `json:"expected_profit"   db:"expected_profit"`
	ProfitMarginPct float64   `json:"profit_margin_pct" db:"profit_margin_pct"`
	RiskScore       int       `json:"risk_score"        db:"risk_score"`
	MarketAdvantage float64   `json:"market_advantage"  db:"market_advantage"`
	HotSeller       bool      `json:"hot_seller"        db:"hot_seller"`

	RecommendedAction Action    `json:"recommended_action" db:"recommended_action"`
	AutoMessage       string    `json:"auto_message"       db:"auto_message"`
	Status            string    `json:"status"             db:"status"`
	CreatedAt         time.Time `json:"created_at"         db:"created_at"`
}

// Verdict status values. Collaborators mark entries contacted or
// scheduled via the store callback.
const (
	VerdictPending   = "pending"
	VerdictContacted = "contacted"
	VerdictScheduled = "scheduled"
)

// AuditEntry is one append-only audit trail row, emitted once per stage
// invocation.
type AuditEntry struct {
	ID        string         `json:"id"         db:"id"`
	Stage     string         `json:"stage"      db:"stage"`
	Summary   string         `json:"summary"    db:"summary"`
	Counts    map[string]int `json:"counts"     db:"counts"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
