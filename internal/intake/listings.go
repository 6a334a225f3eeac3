// Package intake reads batches of raw listings and pricing catalog
// snapshots from files. Readers skip malformed records and report them
// instead of aborting the batch.
package intake

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domain "github.com/resaleops/dealscout/pkg/types"
)

// LineError records one skipped input record.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ReadListingsFile reads a listing batch, picking the format from the
// file extension (.jsonl/.ndjson or .csv).
func ReadListingsFile(path string) ([]domain.ListingRecord, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening listings file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadListingsCSV(f)
	case ".jsonl", ".ndjson", ".json":
		return ReadListingsJSONL(f)
	default:
		return nil, nil, fmt.Errorf("unsupported listings format %q", filepath.Ext(path))
	}
}

// ReadListingsJSONL reads one JSON-encoded ListingRecord per line.
// Blank lines are ignored; malformed lines are skipped and reported.
func ReadListingsJSONL(r io.Reader) ([]domain.ListingRecord, []LineError, error) {
	var (
		records []domain.ListingRecord
		skipped []LineError
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec domain.ListingRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			skipped = append(skipped, LineError{Line: line, Err: err})
			continue
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now().UTC()
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading listings: %w", err)
	}

	return records, skipped, nil
}

// listingsCSVHeader maps recognized column names to field setters.
var listingsCSVHeader = map[string]func(*domain.ListingRecord, string) error{
	"platform":       func(r *domain.ListingRecord, v string) error { r.Platform = v; return nil },
	"listing_url":    func(r *domain.ListingRecord, v string) error { r.ListingURL = v; return nil },
	"title":          func(r *domain.ListingRecord, v string) error { r.Title = v; return nil },
	"description":    func(r *domain.ListingRecord, v string) error { r.Description = v; return nil },
	"location":       func(r *domain.ListingRecord, v string) error { r.RawLocation = v; return nil },
	"condition":      func(r *domain.ListingRecord, v string) error { r.RawCondition = v; return nil },
	"carrier":        func(r *domain.ListingRecord, v string) error { r.RawCarrier = v; return nil },
	"seller_name":    func(r *domain.ListingRecord, v string) error { r.SellerName = v; return nil },
	"seller_contact": func(r *domain.ListingRecord, v string) error { r.SellerContact = v; return nil },
	"source_channel": func(r *domain.ListingRecord, v string) error { r.SourceChannel = v; return nil },
	"asking_price": func(r *domain.ListingRecord, v string) error {
		if v == "" {
			return nil
		}
		p, err := strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64)
		if err != nil {
			return fmt.Errorf("asking_price %q: %w", v, err)
		}
		r.AskingPrice = p
		return nil
	},
}

// ReadListingsCSV reads a listing batch from CSV. The first row is a
// header; unrecognized columns are ignored. Malformed rows are skipped
// and reported.
func ReadListingsCSV(r io.Reader) ([]domain.ListingRecord, []LineError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var (
		records []domain.ListingRecord
		skipped []LineError
	)

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, LineError{Line: line, Err: err})
			continue
		}

		rec := domain.ListingRecord{Timestamp: time.Now().UTC()}
		var rowErr error
		for i, v := range row {
			if i >= len(header) {
				break
			}
			set, ok := listingsCSVHeader[header[i]]
			if !ok {
				continue
			}
			if err := set(&rec, strings.TrimSpace(v)); err != nil {
				rowErr = err
				break
			}
		}
		if rowErr != nil {
			skipped = append(skipped, LineError{Line: line, Err: rowErr})
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}
