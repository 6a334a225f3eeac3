package normalize_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resaleops/dealscout/pkg/normalize"
	domain "github.com/resaleops/dealscout/pkg/types"
)

func TestDedupeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		platform  string
		url       string
		title     string
		prefixLen int
		want      string
	}{
		{
			name:     "lowercases and collapses whitespace",
			platform: "Facebook",
			url:      "https://EXAMPLE.com/item/1",
			title:    "  Mint   iPhone ",
			want:     "facebook|https://example.com/item/1|mint iphone",
		},
		{
			name:      "truncates title to prefix length",
			platform:  "offerup",
			url:       "u",
			title:     "abcdefghij",
			prefixLen: 4,
			want:      "offerup|u|abcd",
		},
		{
			name:     "same listing differing only in title case collides",
			platform: "craigslist",
			url:      "https://cl.example/123",
			title:    "IPHONE 13 PRO",
			want:     "craigslist|https://cl.example/123|iphone 13 pro",
		},
		{
			name:      "truncation counts runes, not bytes",
			platform:  "offerup",
			url:       "u",
			title:     "téléphone",
			prefixLen: 4,
			want:      "offerup|u|télé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalize.DedupeKey(tt.platform, tt.url, tt.title, tt.prefixLen)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupeKey_MultibyteBoundary(t *testing.T) {
	t.Parallel()

	// A multi-byte rune straddling the prefix boundary must not be
	// split; the key has to stay valid UTF-8 for the database.
	title := strings.Repeat("a", 49) + "é pour pièces"
	got := normalize.DedupeKey("facebook", "https://fb.example/1", title, 50)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, strings.Repeat("a", 49)+"é"))
}

func TestRecord_ParsesAttributes(t *testing.T) {
	t.Parallel()

	rec := &domain.ListingRecord{
		Platform:    "facebook",
		ListingURL:  "https://fb.example/item/1",
		Title:       "iPhone 13 Pro 256GB Unlocked",
		Description: "Mint, sealed in box. Pick up in Portland, OR 97205.",
		AskingPrice: 600,
		RawLocation: "Portland, OR",
		SellerName:  "Jess Smith",
	}

	dev, err := normalize.Record(rec, normalize.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Apple", dev.Brand)
	assert.Equal(t, "iPhone 13 Pro", dev.Model)
	assert.Equal(t, "Pro", dev.Variant)
	assert.Equal(t, "256GB", dev.Storage)
	assert.Equal(t, "Unlocked", dev.Carrier)
	assert.Equal(t, normalize.CondLikeNew, dev.ConditionNorm)
	assert.Equal(t, "97205", dev.ZIP)
	assert.Equal(t, domain.DealNew, dev.DealClass)
	assert.NotEmpty(t, dev.DedupeKey)
}

func TestRecord_GalaxyModel(t *testing.T) {
	t.Parallel()

	rec := &domain.ListingRecord{
		Platform:   "offerup",
		ListingURL: "https://ou.example/item/2",
		Title:      "Samsung Galaxy S22 Ultra 128gb Verizon",
	}

	dev, err := normalize.Record(rec, normalize.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Samsung", dev.Brand)
	assert.Equal(t, "Galaxy S22 Ultra", dev.Model)
	assert.Equal(t, "Ultra", dev.Variant)
	assert.Equal(t, "128GB", dev.Storage)
	assert.Equal(t, "Verizon", dev.Carrier)
}

func TestRecord_UnknownSentinels(t *testing.T) {
	t.Parallel()

	rec := &domain.ListingRecord{
		Platform:   "craigslist",
		ListingURL: "https://cl.example/item/3",
		Title:      "Random gadget for sale",
	}

	dev, err := normalize.Record(rec, normalize.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, domain.Unknown, dev.Brand)
	assert.Equal(t, domain.Unknown, dev.Model)
	assert.Equal(t, domain.Unknown, dev.Storage)
	assert.Equal(t, domain.Unknown, dev.Carrier)
	assert.Equal(t, domain.Unknown, dev.ConditionNorm)
	assert.Equal(t, domain.Unknown, dev.ZIP)
}

func TestRecord_NoIdentity(t *testing.T) {
	t.Parallel()

	rec := &domain.ListingRecord{Platform: "facebook", Description: "no url or title"}

	_, err := normalize.Record(rec, normalize.DefaultConfig())
	require.ErrorIs(t, err, normalize.ErrNoIdentity)
}

func TestRecord_BrandKeywordFallback(t *testing.T) {
	t.Parallel()

	// No model rule matches, but the brand keyword does.
	rec := &domain.ListingRecord{
		Platform:   "facebook",
		ListingURL: "https://fb.example/item/4",
		Title:      "Motorola phone, works great",
	}

	dev, err := normalize.Record(rec, normalize.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Motorola", dev.Brand)
	assert.Equal(t, domain.Unknown, dev.Model)
}

func TestCondition(t *testing.T) {
	t.Parallel()

	cfg := normalize.DefaultConfig()

	tests := []struct {
		name        string
		raw         string
		description string
		want        string
	}{
		{name: "explicit condition field wins", raw: "Good condition", description: "damaged", want: normalize.CondGood},
		{name: "falls back to description", raw: "", description: "barely used, no issues", want: normalize.CondExcellent},
		{name: "poor keywords", raw: "rough shape", description: "", want: normalize.CondPoor},
		{name: "nothing recognized", raw: "", description: "call me", want: domain.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalize.Condition(tt.raw, tt.description, cfg.ConditionKeywords)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_CarrierFromRawField(t *testing.T) {
	t.Parallel()

	rec := &domain.ListingRecord{
		Platform:   "facebook",
		ListingURL: "https://fb.example/item/5",
		Title:      "iPhone 12 64GB",
		RawCarrier: "T-Mobile branded",
	}

	dev, err := normalize.Record(rec, normalize.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "T-Mobile", dev.Carrier)
}
