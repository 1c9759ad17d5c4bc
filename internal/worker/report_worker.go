// Package worker republishes the category summary when records change.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salesreport/internal/amqp"
	"salesreport/internal/core"
)

// Publisher recomputes and publishes the report, returning the row count.
type Publisher interface {
	Publish(ctx context.Context) (int, error)
}

// ReportWorker publishes the report on records.replaced events and,
// optionally, on a fixed interval.
type ReportWorker struct {
	reports  Publisher
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReportWorker(reports Publisher, interval time.Duration) *ReportWorker {
	return &ReportWorker{reports: reports, interval: interval}
}

// HandleRecordsReplaced processes a single records.replaced message from AMQP.
// A snapshot that fails aggregation is logged and acknowledged: redelivery
// cannot fix it before the next load.
func (w *ReportWorker) HandleRecordsReplaced(ctx context.Context, msg *amqp.RecordsReplacedMessage) error {
	slog.InfoContext(ctx, "Processing records replaced message",
		"records", msg.Records,
		"source", msg.Source,
		"timestamp", msg.Timestamp)

	n, err := w.reports.Publish(ctx)
	if err != nil {
		if core.IsDataIntegrity(err) {
			slog.ErrorContext(ctx, "Skipping report publish for inconsistent records", "error", err)
			return nil
		}
		return fmt.Errorf("publish report: %w", err)
	}

	slog.InfoContext(ctx, "Report republished", "categories", n)
	return nil
}

// Start begins the periodic publish loop. Returns an error if already running.
// With a non-positive interval Start is a no-op.
func (w *ReportWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return nil
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("report worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Periodic report publishing started", "interval", w.interval)
	return nil
}

// Stop gracefully stops the loop and waits for completion.
func (w *ReportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Report worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *ReportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// publish immediately on startup
	w.publishOnce(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.publishOnce(ctx)
		}
	}
}

func (w *ReportWorker) publishOnce(ctx context.Context) {
	n, err := w.reports.Publish(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Periodic report publish failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Periodic report published", "categories", n)
}
