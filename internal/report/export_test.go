package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"salesreport/internal/core"
)

func TestRenderEmpty(t *testing.T) {
	out, err := Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "category,total_revenue,top_product,top_product_quantity_sold\n" {
		t.Fatalf("unexpected document %q", out)
	}
}

func TestRenderRowsInOrder(t *testing.T) {
	rows := []core.CategorySummary{
		{Category: "B", TotalRevenue: decimal.RequireFromString("1"), TopProduct: "Z", TopProductQuantitySold: 1},
		{Category: "A", TotalRevenue: decimal.RequireFromString("150.50"), TopProduct: "Y", TopProductQuantitySold: 1},
	}
	out, err := Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "category,total_revenue,top_product,top_product_quantity_sold\n" +
		"B,1,Z,1\n" +
		"A,150.5,Y,1\n"
	if string(out) != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestRenderQuotesDelimiters(t *testing.T) {
	rows := []core.CategorySummary{
		{Category: "Home, Garden", TotalRevenue: decimal.NewFromInt(3), TopProduct: `12" Pot`, TopProductQuantitySold: 3},
	}
	out, err := Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[1] != `"Home, Garden",3,"12"" Pot",3` {
		t.Fatalf("unexpected quoting: %s", lines[1])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRenderCSVWriteError(t *testing.T) {
	if err := RenderCSV(failingWriter{}, nil); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestAggregateThenRender(t *testing.T) {
	records := []core.ProductRecord{
		rec("A", "X", "10", 5),
		rec("A", "Y", "100", 1),
		rec("B", "Z", "1", 1),
	}
	rows, err := Aggregate(records)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	out, err := Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "category,total_revenue,top_product,top_product_quantity_sold\nA,150,Y,1\nB,1,Z,1\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestValues(t *testing.T) {
	rows := []core.CategorySummary{{Category: "A", TotalRevenue: decimal.NewFromInt(2), TopProduct: "X", TopProductQuantitySold: 2}}
	v := Values(rows)
	if len(v) != 2 || v[0][0] != "category" || v[1][1] != "2" || v[1][3] != int64(2) {
		t.Fatalf("unexpected values %v", v)
	}
}
