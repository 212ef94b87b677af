package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// ReportStore is the slice of the reservation repository the sales
// report needs: the full history (sold and canceled rows) under a
// consistent, non-dirty read.
type ReportStore interface {
	ListRecords(ctx context.Context, eventID *uint64) ([]model.SalesRecord, error)
}

// ReportService aggregates the sales history for external rendering.
type ReportService struct {
	store ReportStore
}

// NewReportService constructs a ReportService.
func NewReportService(store ReportStore) *ReportService {
	if store == nil {
		panic("nil store passed to NewReportService")
	}
	return &ReportService{store: store}
}

// ListReservations returns every reservation record (sold and
// canceled) ordered by reservation timestamp ascending. A nil eventID
// covers all events. The read never observes a mid-flight
// cancellation and is retried up to readAttempts times on transient
// storage errors before surfacing ErrStorageUnavailable.
func (s *ReportService) ListReservations(ctx context.Context, eventID *uint64) ([]model.SalesRecord, error) {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		records, err := s.store.ListRecords(ctx, eventID)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, lastErr)
}
