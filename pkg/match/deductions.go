package match

import (
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// DeductionRule maps a keyword set to a fixed dollar deduction. A rule
// fires at most once per device; rules are independent and additive.
type DeductionRule struct {
	Reason   string
	Keywords []string
	Amount   float64
}

// Config holds the deduction table. Amounts are configurable; the
// default table comes from DefaultConfig.
type Config struct {
	DeductionRules []DeductionRule
}

// DefaultConfig returns the production deduction table.
func DefaultConfig() Config {
	return Config{
		DeductionRules: []DeductionRule{
			{Reason: "cracked back", Amount: 80, Keywords: []string{
				"cracked back", "back glass cracked", "back cracked",
			}},
			{Reason: "cracked lens", Amount: 60, Keywords: []string{
				"cracked lens", "lens cracked", "camera lens cracked", "camera crack",
			}},
			{Reason: "carrier locked", Amount: 50, Keywords: []string{
				"carrier locked", "network locked", "locked to boost",
				"locked to cricket", "locked to metro",
			}},
			{Reason: "demo unit", Amount: 70, Keywords: []string{
				"demo unit", "display unit", "store demo", "demo phone",
			}},
			{Reason: "missing stylus", Amount: 40, Keywords: []string{
				"missing stylus", "no stylus", "no s pen", "without s pen",
			}},
			{Reason: "heavy scratches", Amount: 35, Keywords: []string{
				"heavy scratches", "heavily scratched", "deep scratches",
			}},
			{Reason: "degraded battery", Amount: 45, Keywords: []string{
				"degraded battery", "weak battery", "battery service",
				"battery health below",
			}},
			{Reason: "biometric disabled", Amount: 55, Keywords: []string{
				"face id not working", "no face id", "touch id not working",
				"fingerprint not working", "face id disabled",
			}},
		},
	}
}

// Deductions scans the device's combined free text against the deduction
// table. Each matched category contributes its fixed amount; a device can
// match several categories.
func Deductions(dev *domain.DeviceRecord, cfg Config) []domain.Deduction {
	text := strings.ToLower(strings.Join([]string{
		dev.Title, dev.Description, dev.ConditionRaw,
		strings.Join(dev.Flags, " "), dev.Notes,
	}, " "))

	var out []domain.Deduction
	for _, rule := range cfg.DeductionRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				out = append(out, domain.Deduction{Reason: rule.Reason, Amount: rule.Amount})
				break
			}
		}
	}
	return out
}
