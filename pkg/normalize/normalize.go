// Package normalize parses free-text listing fields into structured
// device attributes and computes the stable deduplication key.
//
// Normalization is best-effort: a field that cannot be parsed is set to
// the explicit Unknown sentinel, never dropped. The only hard failure is
// a listing with no identity at all (no URL and no title), because no
// dedupe key can be derived for it.
package normalize

import (
	"errors"
	"regexp"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// ErrNoIdentity is returned when a listing has neither URL nor title.
var ErrNoIdentity = errors.New("listing has no url or title; cannot derive dedupe key")

// ModelRule maps a model-specific pattern to structured brand/model
// fields. Rules are evaluated in order; specific patterns must precede
// generic ones.
type ModelRule struct {
	Pattern *regexp.Regexp
	Brand   string
	Model   string
}

// Keyword maps a lower-cased substring to a normalized value.
type Keyword struct {
	Substr string
	Value  string
}

// Config holds the ordered rule tables the normalizer runs against.
// Tests substitute fixtures; production uses DefaultConfig.
type Config struct {
	ModelRules        []ModelRule
	BrandKeywords     []Keyword
	CarrierKeywords   []Keyword
	ConditionKeywords []Keyword
	VariantSuffixes   []string
	TitlePrefixLen    int
}

// Normalized condition labels. These feed the grading base-grade lookup.
const (
	CondLikeNew   = "Like New"
	CondExcellent = "Excellent"
	CondGood      = "Good"
	CondFair      = "Fair"
	CondPoor      = "Poor"
)

// DefaultConfig returns the production rule tables.
func DefaultConfig() Config {
	return Config{
		ModelRules: []ModelRule{
			{Pattern: regexp.MustCompile(`(?i)\biphone\s?(\d{1,2}\s?(?:pro\s?max|pro|plus|mini)?)`), Brand: "Apple", Model: "iPhone"},
			{Pattern: regexp.MustCompile(`(?i)\bgalaxy\s?(s\d{1,2}\s?(?:ultra|plus|fe)?)`), Brand: "Samsung", Model: "Galaxy"},
			{Pattern: regexp.MustCompile(`(?i)\bgalaxy\s?(z\s?(?:fold|flip)\s?\d?)`), Brand: "Samsung", Model: "Galaxy"},
			{Pattern: regexp.MustCompile(`(?i)\bgalaxy\s?(note\s?\d{1,2}\s?(?:ultra)?)`), Brand: "Samsung", Model: "Galaxy"},
			{Pattern: regexp.MustCompile(`(?i)\bpixel\s?(\d\s?(?:pro\s?xl|pro|a|xl)?)`), Brand: "Google", Model: "Pixel"},
			{Pattern: regexp.MustCompile(`(?i)\bipad\s?((?:pro|air|mini)?\s?\d{0,2})`), Brand: "Apple", Model: "iPad"},
			{Pattern: regexp.MustCompile(`(?i)\boneplus\s?(\d{1,2}\s?(?:pro|t|r)?)`), Brand: "OnePlus", Model: "OnePlus"},
		},
		BrandKeywords: []Keyword{
			{Substr: "apple", Value: "Apple"},
			{Substr: "iphone", Value: "Apple"},
			{Substr: "ipad", Value: "Apple"},
			{Substr: "samsung", Value: "Samsung"},
			{Substr: "galaxy", Value: "Samsung"},
			{Substr: "google", Value: "Google"},
			{Substr: "pixel", Value: "Google"},
			{Substr: "oneplus", Value: "OnePlus"},
			{Substr: "motorola", Value: "Motorola"},
			{Substr: "moto ", Value: "Motorola"},
			{Substr: "lg ", Value: "LG"},
		},
		CarrierKeywords: []Keyword{
			{Substr: "unlocked", Value: "Unlocked"},
			{Substr: "verizon", Value: "Verizon"},
			{Substr: "t-mobile", Value: "T-Mobile"},
			{Substr: "tmobile", Value: "T-Mobile"},
			{Substr: "at&t", Value: "AT&T"},
			{Substr: "att ", Value: "AT&T"},
			{Substr: "sprint", Value: "Sprint"},
			{Substr: "cricket", Value: "Cricket"},
			{Substr: "metro", Value: "Metro"},
			{Substr: "boost", Value: "Boost"},
		},
		ConditionKeywords: []Keyword{
			{Substr: "like new", Value: CondLikeNew},
			{Substr: "mint", Value: CondLikeNew},
			{Substr: "sealed", Value: CondLikeNew},
			{Substr: "brand new", Value: CondLikeNew},
			{Substr: "excellent", Value: CondExcellent},
			{Substr: "great condition", Value: CondExcellent},
			{Substr: "barely used", Value: CondExcellent},
			{Substr: "good condition", Value: CondGood},
			{Substr: "good", Value: CondGood},
			{Substr: "fair", Value: CondFair},
			{Substr: "used", Value: CondFair},
			{Substr: "worn", Value: CondFair},
			{Substr: "poor", Value: CondPoor},
			{Substr: "rough", Value: CondPoor},
			{Substr: "damaged", Value: CondPoor},
		},
		VariantSuffixes: []string{"Pro Max", "Pro XL", "Ultra", "Pro", "Plus", "Max", "Mini", "XL", "FE"},
		TitlePrefixLen: 50,
	}
}

var (
	storageRe = regexp.MustCompile(`(?i)\b(\d+)\s?(gb|tb)\b`)
	zipRe     = regexp.MustCompile(`\b(\d{5})\b`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// DedupeKey computes the stable deduplication key for a listing:
// platform, listing URL, and the first prefixLen characters of the
// title, lower-cased and whitespace-normalized.
func DedupeKey(platform, listingURL, title string, prefixLen int) string {
	norm := func(s string) string {
		return spaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
	}
	t := norm(title)
	if prefixLen > 0 {
		// Truncate in runes, not bytes, so a multi-byte title never
		// yields an invalid-UTF-8 key.
		if r := []rune(t); len(r) > prefixLen {
			t = string(r[:prefixLen])
		}
	}
	return norm(platform) + "|" + norm(listingURL) + "|" + t
}

// Record normalizes one raw listing into a canonical device record with
// default analysis fields. The record is never rejected for missing
// attributes; gaps surface as Unknown.
func Record(rec *domain.ListingRecord, cfg Config) (*domain.DeviceRecord, error) {
	if strings.TrimSpace(rec.ListingURL) == "" && strings.TrimSpace(rec.Title) == "" {
		return nil, ErrNoIdentity
	}

	text := rec.Title + " " + rec.Description
	lower := strings.ToLower(text)

	brand, model := domain.Unknown, domain.Unknown
	for _, rule := range cfg.ModelRules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		brand = rule.Brand
		model = rule.Model
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			model = rule.Model + " " + titleCase(spaceRe.ReplaceAllString(strings.TrimSpace(m[1]), " "))
		}
		break
	}
	if brand == domain.Unknown {
		for _, kw := range cfg.BrandKeywords {
			if strings.Contains(lower, kw.Substr) {
				brand = kw.Value
				break
			}
		}
	}

	dev := &domain.DeviceRecord{
		DedupeKey:     DedupeKey(rec.Platform, rec.ListingURL, rec.Title, cfg.TitlePrefixLen),
		Platform:      rec.Platform,
		ListingURL:    rec.ListingURL,
		Title:         rec.Title,
		Description:   rec.Description,
		Brand:         brand,
		Model:         model,
		Variant:       variantOf(model, cfg.VariantSuffixes),
		Storage:       storageOf(text),
		Carrier:       carrierOf(rec.RawCarrier, lower, cfg.CarrierKeywords),
		ConditionRaw:  rec.RawCondition,
		ConditionNorm: Condition(rec.RawCondition, rec.Description, cfg.ConditionKeywords),
		AskingPrice:   rec.AskingPrice,
		SellerName:    rec.SellerName,
		SellerContact: rec.SellerContact,
		Location:      rec.RawLocation,
		ZIP:           zipOf(rec.RawLocation + " " + rec.Description),
		DealClass:     domain.DealNew,
		LastUpdated:   rec.Timestamp,
	}
	return dev, nil
}

// Condition normalizes the explicit condition field when supplied,
// falling back to keyword detection over the description.
func Condition(rawCondition, description string, table []Keyword) string {
	for _, src := range []string{rawCondition, description} {
		lower := strings.ToLower(src)
		if strings.TrimSpace(lower) == "" {
			continue
		}
		for _, kw := range table {
			if strings.Contains(lower, kw.Substr) {
				return kw.Value
			}
		}
	}
	return domain.Unknown
}

func storageOf(text string) string {
	m := storageRe.FindStringSubmatch(text)
	if m == nil {
		return domain.Unknown
	}
	return m[1] + strings.ToUpper(m[2])
}

func carrierOf(rawCarrier, lowerText string, table []Keyword) string {
	if c := strings.TrimSpace(rawCarrier); c != "" {
		lc := strings.ToLower(c)
		for _, kw := range table {
			if strings.Contains(lc, kw.Substr) {
				return kw.Value
			}
		}
		return c
	}
	for _, kw := range table {
		if strings.Contains(lowerText, kw.Substr) {
			return kw.Value
		}
	}
	return domain.Unknown
}

func zipOf(text string) string {
	m := zipRe.FindStringSubmatch(text)
	if m == nil {
		return domain.Unknown
	}
	return m[1]
}

// variantOf pulls a trailing variant suffix (Pro Max, Ultra, ...) out of
// a parsed model string.
func variantOf(model string, suffixes []string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(strings.ToLower(model), strings.ToLower(s)) {
			return s
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
