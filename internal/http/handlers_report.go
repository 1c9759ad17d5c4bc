package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"salesreport/internal/core"
	applog "salesreport/internal/log"
	"salesreport/internal/report"
)

// handleSummaryCSV streams the category summary as a CSV attachment.
func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	body, err := s.reports.CSV(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).InfoContext(r.Context(),
		"Summary report exported", applog.FieldUsername, SubjectFromContext(r.Context()))
	NewResponse().
		Header("Content-Disposition", "attachment; filename="+report.Filename).
		Body(report.ContentType, body).
		Write(w)
}

// handleSummaryJSON returns the same rows as the CSV download.
func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpSummary, err)
		return
	}
	if rows == nil {
		rows = []core.CategorySummary{}
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).DebugContext(r.Context(),
		"Summary served", applog.FieldCategories, len(rows))
	NewResponse().JSON(map[string]interface{}{"categories": rows}).Write(w)
}

// handleProducts returns the per-product aggregates the summary is built from.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	aggs, err := s.reports.Products(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpProducts, err)
		return
	}
	if aggs == nil {
		aggs = []core.ProductAggregate{}
	}
	NewResponse().JSON(map[string]interface{}{"products": aggs}).Write(w)
}

// recordView is the JSON shape of a stored record. Missing numeric values
// render as null.
type recordView struct {
	ProductID    int64            `json:"product_id"`
	ProductName  string           `json:"product_name"`
	Category     string           `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	QuantitySold *int64           `json:"quantity_sold"`
	Rating       *float64         `json:"rating"`
	ReviewCount  int64            `json:"review_count"`
}

func newRecordView(rec core.ProductRecord) recordView {
	v := recordView{
		ProductID:   rec.ProductID,
		ProductName: rec.ProductName,
		Category:    rec.Category,
		ReviewCount: rec.ReviewCount,
	}
	if rec.Price.Valid {
		v.Price = &rec.Price.Decimal
	}
	if rec.QuantitySold.Valid {
		v.QuantitySold = &rec.QuantitySold.Int64
	}
	if rec.Rating.Valid {
		v.Rating = &rec.Rating.Float64
	}
	return v
}

// handleRecords lists the stored records in insertion order.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.reports.Records(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpRecords, err)
		return
	}
	views := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, newRecordView(rec))
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).DebugContext(r.Context(),
		"Records listed", applog.FieldRecords, len(views))
	NewResponse().JSON(map[string]interface{}{"count": len(views), "records": views}).Write(w)
}
