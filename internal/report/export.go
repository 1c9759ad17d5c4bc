package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"salesreport/internal/core"
)

const (
	// Filename is the suggested download name of the rendered report.
	Filename = "summary_report.csv"
	// ContentType marks the rendered report as a delimited-text file.
	ContentType = "text/csv"
)

// Header is the fixed column order of the summary report.
var Header = []string{"category", "total_revenue", "top_product", "top_product_quantity_sold"}

// RenderCSV writes the header followed by one line per row, in the order given.
func RenderCSV(w io.Writer, rows []core.CategorySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Category,
			row.TotalRevenue.String(),
			row.TopProduct,
			strconv.FormatInt(row.TopProductQuantitySold, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", row.Category, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render returns the CSV document as bytes.
func Render(rows []core.CategorySummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Values returns the report as a header row plus data rows, for tabular sinks
// such as spreadsheets.
func Values(rows []core.CategorySummary) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	out = append(out, head)
	for _, row := range rows {
		out = append(out, []interface{}{
			row.Category,
			row.TotalRevenue.String(),
			row.TopProduct,
			row.TopProductQuantitySold,
		})
	}
	return out
}
