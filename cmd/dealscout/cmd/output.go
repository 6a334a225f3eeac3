package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printDevicesTable(devices []domain.DeviceRecord) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tGRADE\tASK\tBUYBACK\tOFFER\tRISK\tCLASS\tSELLER\n")
	for i := range devices {
		d := &devices[i]
		tw.writef("%s\t%s\t%s\t$%.0f\t$%.0f\t$%.0f\t%d\t%s\t%s\n",
			d.ID,
			truncate(d.Title, 40),
			d.FinalGrade,
			d.AskingPrice,
			d.BuybackValue,
			d.OfferTarget,
			d.RiskScore,
			d.DealClass,
			d.SellerName,
		)
	}
	return tw.finish()
}

func printVerdictsTable(verdicts []domain.VerdictEntry) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RANK\tSCORE\tTITLE\tCLASS\tOFFER\tPROFIT\tRISK\tACTION\tSTATUS\tSELLER\n")
	for i := range verdicts {
		v := &verdicts[i]
		tw.writef("%d\t%.1f\t%s\t%s\t$%.0f\t$%.0f\t%d\t%s\t%s\t%s\n",
			v.Rank,
			v.CompositeScore,
			truncate(v.Title, 40),
			v.DealClass,
			v.OfferTarget,
			v.ExpectedProfit,
			v.RiskScore,
			v.RecommendedAction,
			v.Status,
			v.SellerName,
		)
	}
	return tw.finish()
}

func printCatalogTable(entries []domain.PricingCatalogEntry) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("BRAND\tMODEL\tVARIANT\tSTORAGE\tPRICES\n")
	for i := range entries {
		e := &entries[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			e.Brand,
			e.Model,
			e.Variant,
			e.Storage,
			formatPrices(e.Prices),
		)
	}
	return tw.finish()
}

func printAuditTable(entries []domain.AuditEntry) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TIME\tSTAGE\tSUMMARY\n")
	for i := range entries {
		e := &entries[i]
		tw.writef("%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Stage,
			truncate(e.Summary, 70),
		)
	}
	return tw.finish()
}

// formatPrices renders a grade price map in ladder order, e.g.
// "A:$850 B+:$780 B:$700".
func formatPrices(prices map[domain.Grade]float64) string {
	type gp struct {
		grade domain.Grade
		price float64
	}
	pairs := make([]gp, 0, len(prices))
	for g, p := range prices {
		pairs = append(pairs, gp{g, p})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return domain.GradeIndex(pairs[i].grade) < domain.GradeIndex(pairs[j].grade)
	})

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s:$%.0f", p.grade, p.price))
	}
	return strings.Join(parts, " ")
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
