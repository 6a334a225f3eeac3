// Package sellers groups device records by seller identity and flags
// repeat sellers eligible for a pricing bonus.
package sellers

import (
	"regexp"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// Config holds the repeat-seller threshold.
type Config struct {
	// MinQualifyingDeals is the count of non-PASS deals at which a
	// seller becomes hot.
	MinQualifyingDeals int
}

// DefaultConfig returns the documented default (3 qualifying deals).
func DefaultConfig() Config {
	return Config{MinQualifyingDeals: 3}
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Key builds the seller identity key: normalized contact, falling back
// to normalized name. Empty when neither is present; such devices are
// excluded from aggregation.
func Key(contact, name string) string {
	if k := normalize(contact); k != "" {
		return k
	}
	return normalize(name)
}

func normalize(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// Aggregate counts qualifying (non-PASS) deals per seller key and flags
// hot sellers. Every device of a hot seller is listed in the aggregate,
// including its PASS devices, so the flag can be written back onto all
// of them.
func Aggregate(devices []domain.DeviceRecord, cfg Config) map[string]*domain.SellerAggregate {
	aggs := make(map[string]*domain.SellerAggregate)

	for i := range devices {
		d := &devices[i]
		key := Key(d.SellerContact, d.SellerName)
		if key == "" {
			continue
		}
		agg, ok := aggs[key]
		if !ok {
			agg = &domain.SellerAggregate{SellerKey: key}
			aggs[key] = agg
		}
		agg.DeviceIDs = append(agg.DeviceIDs, d.ID)
		if qualifies(d.DealClass) {
			agg.QualifyingDeals++
		}
	}

	for _, agg := range aggs {
		agg.HotSeller = agg.QualifyingDeals >= cfg.MinQualifyingDeals
	}
	return aggs
}

// qualifies reports whether a deal class counts toward the hot-seller
// threshold. NEW devices have not been priced yet and never qualify.
func qualifies(c domain.DealClass) bool {
	switch c {
	case domain.DealHot, domain.DealSolid, domain.DealMarginal:
		return true
	default:
		return false
	}
}
