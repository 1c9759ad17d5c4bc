package core

import (
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// ProductRecord is one row of product-sales data as held by a record store.
	// Numeric fields are nullable so that incomplete rows can be represented
	// (and rejected) rather than silently coerced.
	ProductRecord struct {
		ProductID    int64
		ProductName  string
		Category     string
		Price        decimal.NullDecimal
		QuantitySold sql.NullInt64
		Rating       sql.NullFloat64
		ReviewCount  int64
	}

	// ProductAggregate holds the summed sales of one product within a category.
	ProductAggregate struct {
		Category     string          `json:"category"`
		ProductName  string          `json:"product_name"`
		QuantitySold int64           `json:"quantity_sold"`
		Revenue      decimal.Decimal `json:"revenue"`
		// FirstSeen is the index of the first contributing record in the input.
		FirstSeen int `json:"-"`
	}

	// CategorySummary is one row of the summary report.
	CategorySummary struct {
		Category               string          `json:"category"`
		TotalRevenue           decimal.Decimal `json:"total_revenue"`
		TopProduct             string          `json:"top_product"`
		TopProductQuantitySold int64           `json:"top_product_quantity_sold"`
	}
)

// PriceScale is the number of fractional digits a stored price may carry.
// Every backend holds prices as NUMERIC(10, 2) or its text equivalent.
const PriceScale = 2

var maxPrice = decimal.New(1, 8)

// NewProductRecord builds a fully populated record.
func NewProductRecord(id int64, name, category string, price decimal.Decimal, qty int64, rating float64, reviews int64) ProductRecord {
	return ProductRecord{
		ProductID:    id,
		ProductName:  name,
		Category:     category,
		Price:        decimal.NewNullDecimal(price),
		QuantitySold: sql.NullInt64{Int64: qty, Valid: true},
		Rating:       sql.NullFloat64{Float64: rating, Valid: true},
		ReviewCount:  reviews,
	}
}

// Revenue returns price * quantity_sold. Callers must check Price and
// QuantitySold validity first.
func (r ProductRecord) Revenue() decimal.Decimal {
	return r.Price.Decimal.Mul(decimal.NewFromInt(r.QuantitySold.Int64))
}

// Validate checks the basic shape of a record before it is stored:
// required text fields present and numeric fields populated.
func (r ProductRecord) Validate() error {
	if strings.TrimSpace(r.ProductName) == "" {
		return &ValidationError{Field: "product_name", Reason: "required"}
	}
	if len(r.ProductName) > 255 {
		return &ValidationError{Field: "product_name", Reason: "too long (max 255 characters)"}
	}
	if strings.TrimSpace(r.Category) == "" {
		return &ValidationError{Field: "category", Reason: "required"}
	}
	if len(r.Category) > 255 {
		return &ValidationError{Field: "category", Reason: "too long (max 255 characters)"}
	}
	if !r.Price.Valid {
		return &ValidationError{Field: "price", Reason: "required"}
	}
	if !r.Price.Decimal.Equal(r.Price.Decimal.Round(PriceScale)) {
		return &ValidationError{Field: "price", Reason: "more than 2 fractional digits"}
	}
	if r.Price.Decimal.Abs().GreaterThanOrEqual(maxPrice) {
		return &ValidationError{Field: "price", Reason: "more than 8 integer digits"}
	}
	if !r.QuantitySold.Valid {
		return &ValidationError{Field: "quantity_sold", Reason: "required"}
	}
	if !r.Rating.Valid {
		return &ValidationError{Field: "rating", Reason: "required"}
	}
	return nil
}

// User is an account allowed to request reports.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
