package services

import (
	"context"
	"fmt"
	"log/slog"

	"salesreport/internal/core"
	"salesreport/internal/records"
)

// EventPublisher announces that the record set changed.
type EventPublisher interface {
	PublishRecordsReplaced(ctx context.Context, records int, source string) error
}

// LoadService replaces the record set and notifies downstream consumers.
type LoadService struct {
	store  records.Store
	events EventPublisher
}

func NewLoadService(store records.Store, events EventPublisher) *LoadService {
	return &LoadService{store: store, events: events}
}

// Replace installs recs as the full record set. A failed notification is
// logged and does not fail the load.
func (s *LoadService) Replace(ctx context.Context, recs []core.ProductRecord, source string) error {
	if err := s.store.ReplaceAll(ctx, recs); err != nil {
		return fmt.Errorf("replace records: %w", err)
	}

	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping records replaced message")
		return nil
	}
	if err := s.events.PublishRecordsReplaced(ctx, len(recs), source); err != nil {
		slog.ErrorContext(ctx, "Failed to publish records replaced message",
			"records", len(recs), "source", source, "error", err)
	}
	return nil
}
