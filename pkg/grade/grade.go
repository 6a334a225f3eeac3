// Package grade assigns a condition letter grade to a device record.
//
// Evaluation order is fixed: blacklist short-circuit, DOA short-circuit,
// base grade from normalized condition, then severity-tiered keyword
// modifiers. A manual operator override always wins over the computed
// grade and is never recomputed away.
package grade

import (
	"fmt"
	"math"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// Config holds the keyword tables and base-grade lookup the grader runs
// against. Tests substitute fixtures; production uses DefaultConfig.
type Config struct {
	BlacklistKeywords []string
	DOAKeywords       []string

	// BaseGrades maps normalized condition labels to a starting grade.
	// Unrecognized conditions start at B.
	BaseGrades map[string]domain.Grade

	// Issue tiers. Severe keywords downgrade two levels each, moderate
	// one level each, minor a half level each (accumulated, rounded up).
	SevereKeywords   []string
	ModerateKeywords []string
	MinorKeywords    []string

	// Positive indicators upgrade one level, only when no downgrade
	// triggered.
	PositiveKeywords []string
}

// DefaultConfig returns the production grading tables.
func DefaultConfig() Config {
	return Config{
		BlacklistKeywords: []string{
			"icloud lock", "activation lock", "stolen", "bad imei",
			"blocked imei", "blacklisted", "frp lock", "google lock",
			"finance lock", "payments owed",
		},
		DOAKeywords: []string{
			"broken", "dead", "not working", "won't turn on",
			"doesn't turn on", "does not turn on", "no power",
			"shattered screen", "for parts", "parts only",
		},
		BaseGrades: map[string]domain.Grade{
			"Like New":  domain.GradeA,
			"Excellent": domain.GradeBPlus,
			"Good":      domain.GradeB,
			"Fair":      domain.GradeC,
			"Poor":      domain.GradeD,
		},
		SevereKeywords: []string{
			"water damage", "liquid damage", "bent frame",
			"screen lifting", "no display", "boot loop",
		},
		ModerateKeywords: []string{
			"cracked", "chipped", "deep scratch",
			"screen burn", "dead pixel", "battery service",
		},
		MinorKeywords: []string{
			"scratches", "scuff", "light wear", "dings", "dent",
		},
		PositiveKeywords: []string{
			"pristine", "with box", "in box", "original box",
			"warranty", "applecare",
		},
	}
}

// Result carries the computed grade with its audit trail.
type Result struct {
	Grade domain.Grade
	Flags []string
	Notes string
}

// Device grades one device record. The returned flags and notes are
// persisted on the record for audit; the caller applies the manual
// override rule via DeviceRecord.EffectiveGrade.
func Device(dev *domain.DeviceRecord, cfg Config) Result {
	text := strings.ToLower(strings.Join([]string{
		dev.Title, dev.Description, dev.ConditionRaw,
		strings.Join(dev.Flags, " "), dev.Notes,
	}, " "))

	if kw := firstMatch(text, cfg.BlacklistKeywords); kw != "" {
		return Result{
			Grade: domain.GradeBlacklisted,
			Flags: []string{"blacklist:" + kw},
			Notes: fmt.Sprintf("auto-rejected: blacklist keyword %q", kw),
		}
	}

	if kw := firstMatch(text, cfg.DOAKeywords); kw != "" {
		return Result{
			Grade: domain.GradeDOA,
			Flags: []string{"doa:" + kw},
			Notes: fmt.Sprintf("non-functional: keyword %q", kw),
		}
	}

	base, ok := cfg.BaseGrades[dev.ConditionNorm]
	if !ok {
		base = domain.GradeB
	}

	var (
		flags    []string
		reasons  []string
		downs    int
		minorCnt int
	)

	for _, kw := range allMatches(text, cfg.SevereKeywords) {
		downs += 2
		flags = append(flags, "severe:"+kw)
		reasons = append(reasons, fmt.Sprintf("severe issue %q (-2)", kw))
	}
	for _, kw := range allMatches(text, cfg.ModerateKeywords) {
		downs++
		flags = append(flags, "moderate:"+kw)
		reasons = append(reasons, fmt.Sprintf("moderate issue %q (-1)", kw))
	}
	for _, kw := range allMatches(text, cfg.MinorKeywords) {
		minorCnt++
		flags = append(flags, "minor:"+kw)
		reasons = append(reasons, fmt.Sprintf("minor issue %q (-0.5)", kw))
	}
	if minorCnt > 0 {
		downs += int(math.Ceil(float64(minorCnt) * 0.5))
	}

	idx := domain.GradeIndex(base)
	switch {
	case downs > 0:
		idx += downs
	default:
		// Positive indicators only apply when nothing downgraded.
		if kw := firstMatch(text, cfg.PositiveKeywords); kw != "" {
			idx--
			flags = append(flags, "positive:"+kw)
			reasons = append(reasons, fmt.Sprintf("positive indicator %q (+1)", kw))
		}
	}

	final := domain.GradeAt(idx)
	notes := fmt.Sprintf("base %s from condition %q", base, dev.ConditionNorm)
	if len(reasons) > 0 {
		notes += "; " + strings.Join(reasons, "; ")
	}
	notes += fmt.Sprintf("; graded %s", final)

	return Result{Grade: final, Flags: flags, Notes: notes}
}

func firstMatch(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func allMatches(text string, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}
