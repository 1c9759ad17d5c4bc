package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"salesreport/internal/core"
	"salesreport/internal/records"
	"salesreport/internal/report"
)

// ErrNoPublisher is returned by Publish when no report destination is set.
var ErrNoPublisher = errors.New("no report publisher configured")

// ReportPublisher pushes a rendered summary to an external destination.
type ReportPublisher interface {
	WriteReport(ctx context.Context, rows []core.CategorySummary) error
}

// ReportService computes the category summary from a store snapshot.
// Nothing is cached: every call rescans and reaggregates.
type ReportService struct {
	store     records.Store
	publisher ReportPublisher
}

func NewReportService(store records.Store, publisher ReportPublisher) *ReportService {
	return &ReportService{store: store, publisher: publisher}
}

func (s *ReportService) Summary(ctx context.Context) ([]core.CategorySummary, error) {
	start := time.Now()
	recs, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}

	rows, err := report.Aggregate(recs)
	if err != nil {
		slog.WarnContext(ctx, "Aggregation rejected snapshot", "records", len(recs), "error", err)
		return nil, err
	}

	slog.DebugContext(ctx, "Summary computed",
		"records", len(recs),
		"categories", len(rows),
		"duration_ms", time.Since(start).Milliseconds())
	return rows, nil
}

// Products returns the per-product aggregates behind the summary, ordered by
// category then revenue.
func (s *ReportService) Products(ctx context.Context) ([]core.ProductAggregate, error) {
	recs, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return report.ProductAggregates(recs)
}

// Records returns the stored records in insertion order.
func (s *ReportService) Records(ctx context.Context) ([]core.ProductRecord, error) {
	recs, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return recs, nil
}

// CSV renders the current summary as a CSV document.
func (s *ReportService) CSV(ctx context.Context) ([]byte, error) {
	rows, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	data, err := report.Render(rows)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return data, nil
}

// Publish recomputes the summary and hands it to the publisher. It returns
// the number of category rows written.
func (s *ReportService) Publish(ctx context.Context) (int, error) {
	if s.publisher == nil {
		return 0, ErrNoPublisher
	}
	rows, err := s.Summary(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.publisher.WriteReport(ctx, rows); err != nil {
		return 0, fmt.Errorf("write report: %w", err)
	}
	slog.InfoContext(ctx, "Report published", "categories", len(rows))
	return len(rows), nil
}
