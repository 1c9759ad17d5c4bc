// Package report turns product-sales records into the per-category summary
// report and renders it as CSV.
package report

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"salesreport/internal/core"
)

type productKey struct {
	category string
	name     string
}

// ProductAggregates groups records by (category, product name), summing
// quantity and revenue. The result is ordered by category ascending, then by
// revenue descending; equal revenues keep the product seen first in records,
// then product name ascending.
//
// Records with a null price or quantity fail with *core.MalformedRecordError,
// negative values with *core.InvalidValueError. No partial result is returned.
func ProductAggregates(records []core.ProductRecord) ([]core.ProductAggregate, error) {
	index := make(map[productKey]int, len(records))
	aggs := make([]core.ProductAggregate, 0, len(records))

	for i, r := range records {
		if err := checkRecord(i, r); err != nil {
			return nil, err
		}

		key := productKey{category: r.Category, name: r.ProductName}
		pos, ok := index[key]
		if !ok {
			pos = len(aggs)
			index[key] = pos
			aggs = append(aggs, core.ProductAggregate{
				Category:    r.Category,
				ProductName: r.ProductName,
				Revenue:     decimal.Zero,
				FirstSeen:   i,
			})
		}
		aggs[pos].QuantitySold += r.QuantitySold.Int64
		aggs[pos].Revenue = aggs[pos].Revenue.Add(r.Revenue())
	}

	sort.SliceStable(aggs, func(i, j int) bool {
		a, b := aggs[i], aggs[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		if a.FirstSeen != b.FirstSeen {
			return a.FirstSeen < b.FirstSeen
		}
		return a.ProductName < b.ProductName
	})

	return aggs, nil
}

// Aggregate computes one CategorySummary per distinct category, sorted by
// category name. TotalRevenue covers every product of the category; the top
// product is the first aggregate of the category in ProductAggregates order.
func Aggregate(records []core.ProductRecord) ([]core.CategorySummary, error) {
	aggs, err := ProductAggregates(records)
	if err != nil {
		return nil, err
	}

	summaries := make([]core.CategorySummary, 0)
	for _, a := range aggs {
		n := len(summaries)
		if n > 0 && summaries[n-1].Category == a.Category {
			summaries[n-1].TotalRevenue = summaries[n-1].TotalRevenue.Add(a.Revenue)
			continue
		}
		summaries = append(summaries, core.CategorySummary{
			Category:               a.Category,
			TotalRevenue:           a.Revenue,
			TopProduct:             a.ProductName,
			TopProductQuantitySold: a.QuantitySold,
		})
	}
	return summaries, nil
}

func checkRecord(i int, r core.ProductRecord) error {
	if !r.Price.Valid {
		return &core.MalformedRecordError{Index: i, Field: "price"}
	}
	if !r.QuantitySold.Valid {
		return &core.MalformedRecordError{Index: i, Field: "quantity_sold"}
	}
	if r.Price.Decimal.IsNegative() {
		return &core.InvalidValueError{Index: i, Field: "price", Value: r.Price.Decimal.String()}
	}
	if r.QuantitySold.Int64 < 0 {
		return &core.InvalidValueError{Index: i, Field: "quantity_sold", Value: strconv.FormatInt(r.QuantitySold.Int64, 10)}
	}
	return nil
}
