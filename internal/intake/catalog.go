package intake

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// gradeColumns maps CSV price column names to grades. A blank cell
// means the row has no price for that grade.
var gradeColumns = map[string]domain.Grade{
	"price_a":      domain.GradeA,
	"price_b_plus": domain.GradeBPlus,
	"price_b":      domain.GradeB,
	"price_c":      domain.GradeC,
	"price_d":      domain.GradeD,
	"price_doa":    domain.GradeDOA,
}

// ReadCatalogFile reads a pricing catalog snapshot from a CSV file.
// Row order is preserved; it is the tie-break order for matching.
func ReadCatalogFile(path string) ([]domain.PricingCatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return ReadCatalogCSV(f)
}

// ReadCatalogCSV parses catalog rows. Unlike listings, a malformed
// catalog row fails the whole load: reference data must be complete.
func ReadCatalogCSV(r io.Reader) ([]domain.PricingCatalogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var entries []domain.PricingCatalogEntry
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}

		e := domain.PricingCatalogEntry{Prices: make(map[domain.Grade]float64)}
		for i, v := range row {
			if i >= len(header) {
				break
			}
			v = strings.TrimSpace(v)
			switch col := header[i]; col {
			case "brand":
				e.Brand = v
			case "model":
				e.Model = v
			case "variant":
				e.Variant = v
			case "storage":
				e.Storage = v
			default:
				g, ok := gradeColumns[col]
				if !ok || v == "" {
					continue
				}
				p, err := strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64)
				if err != nil {
					return nil, fmt.Errorf("catalog line %d: %s %q: %w", line, col, v, err)
				}
				e.Prices[g] = p
			}
		}

		if e.Brand == "" || e.Model == "" {
			return nil, fmt.Errorf("catalog line %d: brand and model are required", line)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
