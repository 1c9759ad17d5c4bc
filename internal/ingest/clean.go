package ingest

import (
	"database/sql"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"salesreport/internal/core"
)

// CleanReport counts what Clean changed.
type CleanReport struct {
	Rows            int `json:"rows"`
	Kept            int `json:"kept"`
	ImputedPrice    int `json:"imputed_price"`
	ImputedQuantity int `json:"imputed_quantity"`
	ImputedRating   int `json:"imputed_rating"`
	Dropped         int `json:"dropped"`
}

type parsedRow struct {
	id, reviews int64
	name, cat   string
	price       decimal.NullDecimal
	qty         sql.NullInt64
	rating      sql.NullFloat64
}

// Clean converts raw rows into records:
//   - non-numeric price, quantity_sold or rating count as missing;
//   - missing price and quantity take the column median (quantity rounded
//     half-up);
//   - prices are rounded half away from zero to two fractional digits;
//   - missing rating takes the mean rating of the row's category;
//   - rows still missing a value, or whose product_id, review_count, name or
//     category are unusable, are dropped.
func Clean(raw []RawRecord) ([]core.ProductRecord, CleanReport) {
	rep := CleanReport{Rows: len(raw)}

	rows := make([]parsedRow, 0, len(raw))
	for _, r := range raw {
		id, err := parseInt(r.ProductID)
		if err != nil {
			rep.Dropped++
			continue
		}
		reviews, err := parseInt(r.ReviewCount)
		if err != nil || reviews < 0 {
			rep.Dropped++
			continue
		}
		if r.ProductName == "" || r.Category == "" {
			rep.Dropped++
			continue
		}
		p := parsedRow{id: id, reviews: reviews, name: r.ProductName, cat: r.Category}
		if d, err := decimal.NewFromString(r.Price); err == nil {
			p.price = decimal.NewNullDecimal(d.Round(core.PriceScale))
		}
		if q, err := parseInt(r.QuantitySold); err == nil {
			p.qty = sql.NullInt64{Int64: q, Valid: true}
		}
		if f, err := strconv.ParseFloat(r.Rating, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			p.rating = sql.NullFloat64{Float64: f, Valid: true}
		}
		rows = append(rows, p)
	}

	medPrice, hasPrice := medianPrice(rows)
	medQty, hasQty := medianQuantity(rows)
	catMean := categoryMeanRating(rows)

	out := make([]core.ProductRecord, 0, len(rows))
	for _, p := range rows {
		if !p.price.Valid && hasPrice {
			p.price = decimal.NewNullDecimal(medPrice)
			rep.ImputedPrice++
		}
		if !p.qty.Valid && hasQty {
			p.qty = sql.NullInt64{Int64: medQty, Valid: true}
			rep.ImputedQuantity++
		}
		if !p.rating.Valid {
			if m, ok := catMean[p.cat]; ok {
				p.rating = sql.NullFloat64{Float64: m, Valid: true}
				rep.ImputedRating++
			}
		}
		if !p.price.Valid || !p.qty.Valid || !p.rating.Valid {
			rep.Dropped++
			continue
		}
		out = append(out, core.ProductRecord{
			ProductID:    p.id,
			ProductName:  p.name,
			Category:     p.cat,
			Price:        p.price,
			QuantitySold: p.qty,
			Rating:       p.rating,
			ReviewCount:  p.reviews,
		})
	}
	rep.Kept = len(out)
	return out, rep
}

// parseInt accepts integral values written as floats, e.g. "12.0".
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64 {
		return 0, strconv.ErrSyntax
	}
	return int64(f), nil
}

func medianPrice(rows []parsedRow) (decimal.Decimal, bool) {
	var vals []decimal.Decimal
	for _, p := range rows {
		if p.price.Valid {
			vals = append(vals, p.price.Decimal)
		}
	}
	if len(vals) == 0 {
		return decimal.Zero, false
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return vals[mid-1].Add(vals[mid]).Div(decimal.NewFromInt(2)).Round(core.PriceScale), true
}

func medianQuantity(rows []parsedRow) (int64, bool) {
	var vals []int64
	for _, p := range rows {
		if p.qty.Valid {
			vals = append(vals, p.qty.Int64)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return int64(math.Floor(float64(vals[mid-1]+vals[mid])/2 + 0.5)), true
}

func categoryMeanRating(rows []parsedRow) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range rows {
		if p.rating.Valid {
			sums[p.cat] += p.rating.Float64
			counts[p.cat]++
		}
	}
	means := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		means[cat] = sum / float64(counts[cat])
	}
	return means
}
