// Package ingest reads, cleans and generates product-sales records for bulk
// loading into a record store.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"salesreport/internal/core"
)

// Columns lists the header fields an input file must carry.
var Columns = []string{
	"product_id", "product_name", "category", "price", "quantity_sold", "rating", "review_count",
}

// RawRecord is one input row before type conversion. Line is 1-based and
// counts the header.
type RawRecord struct {
	Line         int
	ProductID    string
	ProductName  string
	Category     string
	Price        string
	QuantitySold string
	Rating       string
	ReviewCount  string
}

// ReadCSV reads rows keyed by header name. Column order is free and extra
// columns are ignored. A missing required column yields *core.SchemaError.
func ReadCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &core.SchemaError{Missing: append([]string(nil), Columns...)}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &core.SchemaError{Missing: missing}
	}

	field := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		out = append(out, RawRecord{
			Line:         line,
			ProductID:    field(row, "product_id"),
			ProductName:  field(row, "product_name"),
			Category:     field(row, "category"),
			Price:        field(row, "price"),
			QuantitySold: field(row, "quantity_sold"),
			Rating:       field(row, "rating"),
			ReviewCount:  field(row, "review_count"),
		})
	}
	return out, nil
}
