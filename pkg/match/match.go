// Package match fuzzy-matches device records to partner buyback catalog
// rows and applies itemized condition deductions.
//
// Matching is a best-of-N scan with additive confidence points, never an
// early exit on the first acceptable row. Brand and model are gating:
// a row whose brand or model cannot be matched at any tier is excluded
// outright, whatever its other fields would have scored.
package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// Confidence points per matched field tier.
const (
	pointsBrand        = 25
	pointsModelExact   = 40
	pointsModelSubstr  = 30
	pointsModelFuzzy   = 20
	pointsStorageExact = 25
	pointsStorageUnit  = 20
	pointsStorageAny   = 10
	pointsVariant      = 10
)

// Result is the outcome of matching one device against the catalog.
type Result struct {
	Entry      *domain.PricingCatalogEntry
	BasePrice  float64
	Deductions []domain.Deduction
	FinalValue float64
	Confidence int
	Notes      string
}

// Device matches a device to the catalog row with the highest cumulative
// confidence and prices it for the device's final grade. Blacklisted
// devices short-circuit to a zero result.
func Device(dev *domain.DeviceRecord, catalog []domain.PricingCatalogEntry, cfg Config) Result {
	if dev.Blacklisted() {
		return Result{Notes: "blacklisted; not priced"}
	}

	var (
		best      *domain.PricingCatalogEntry
		bestScore int
	)
	for i := range catalog {
		score, ok := scoreRow(dev, &catalog[i])
		if !ok {
			continue
		}
		// Ties keep the first row encountered.
		if best == nil || score > bestScore {
			best = &catalog[i]
			bestScore = score
		}
	}

	if best == nil {
		return Result{Notes: "no match"}
	}

	g := dev.FinalGrade
	if !g.Priceable() {
		return Result{Confidence: bestScore, Notes: fmt.Sprintf("grade %s has no catalog price", g)}
	}
	base, ok := best.PriceFor(g)
	if !ok {
		return Result{Confidence: bestScore, Notes: fmt.Sprintf("matched %s %s but no price for grade %s", best.Brand, best.Model, g)}
	}

	deductions := Deductions(dev, cfg)
	final := base - domain.DeductionTotal(deductions)
	if final < 0 {
		final = 0
	}

	notes := fmt.Sprintf("matched %s %s (confidence %d), base $%.0f for grade %s",
		best.Brand, best.Model, bestScore, base, g)
	if summary := domain.DeductionSummary(deductions); summary != "" {
		notes += "; deductions: " + summary
	}

	return Result{
		Entry:      best,
		BasePrice:  base,
		Deductions: deductions,
		FinalValue: final,
		Confidence: bestScore,
		Notes:      notes,
	}
}

// scoreRow computes the cumulative confidence for one catalog row.
// Returns ok=false when the row is excluded (brand or model miss).
func scoreRow(dev *domain.DeviceRecord, row *domain.PricingCatalogEntry) (int, bool) {
	if !brandMatches(dev.Brand, row.Brand) {
		return 0, false
	}
	score := pointsBrand

	switch {
	case foldEqual(dev.Model, row.Model):
		score += pointsModelExact
	case foldContains(dev.Model, row.Model):
		score += pointsModelSubstr
	case fuzzyModelEqual(dev.Model, row.Model):
		score += pointsModelFuzzy
	default:
		return 0, false
	}

	switch {
	case row.Storage == "":
		// Row prices any storage size.
		score += pointsStorageAny
	case foldEqual(dev.Storage, row.Storage):
		score += pointsStorageExact
	case storageGB(dev.Storage) > 0 && storageGB(dev.Storage) == storageGB(row.Storage):
		score += pointsStorageUnit
	}

	if dev.Variant != "" && row.Variant != "" && foldEqual(dev.Variant, row.Variant) {
		score += pointsVariant
	}

	return score, true
}

func foldEqual(a, b string) bool {
	return normWS(a) != "" && normWS(a) == normWS(b)
}

func foldContains(a, b string) bool {
	na, nb := normWS(a), normWS(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func brandMatches(a, b string) bool {
	if a == domain.Unknown || a == "" {
		return false
	}
	return foldContains(a, b)
}

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	numRe     = regexp.MustCompile(`\d+`)
	suffixRe  = regexp.MustCompile(`(?i)\b(plus|ultra|pro|max)\b`)
	storageRe = regexp.MustCompile(`(?i)(\d+)\s?(gb|tb)`)
)

func normWS(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// fuzzyModelEqual strips plus/ultra/pro/max suffix tokens and compares
// the remainder, falling back to the leading numeric tokens.
func fuzzyModelEqual(a, b string) bool {
	sa := normWS(suffixRe.ReplaceAllString(a, ""))
	sb := normWS(suffixRe.ReplaceAllString(b, ""))
	if sa != "" && sa == sb {
		return true
	}
	na, nb := numRe.FindString(sa), numRe.FindString(sb)
	return na != "" && na == nb
}

// storageGB normalizes a storage label to gigabytes, e.g. "1TB" → 1000.
// Returns 0 when the label has no parseable size.
func storageGB(s string) int {
	m := storageRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if strings.EqualFold(m[2], "tb") {
		return n * 1000
	}
	return n
}
