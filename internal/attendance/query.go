package attendance

import (
	"context"
	"fmt"
	"time"
)

// QueryRepository is the read side of the record store.
type QueryRepository interface {
	ListForWorker(ctx context.Context, tenantID, workerID string, from, to *time.Time) ([]Record, error)
	LastForWorker(ctx context.Context, tenantID, workerID string) (*Record, error)
	Report(ctx context.Context, tenantID string, opts ReportOptions) ([]ReportRow, int64, error)
}

// ReportOptions controls the paginated report view.
type ReportOptions struct {
	// Search matches worker name, email, or employee id, case-insensitively.
	Search string
	// SortBy names a record field; unknown fields fall back to the default
	// newest-first ordering.
	SortBy     string
	Descending bool
	Page       int
	PageSize   int
}

// Query is the read-only projection service over attendance records.
type Query struct {
	repo  QueryRepository
	clock Clock
}

// NewQuery wires the read side. A nil clock falls back to the system clock.
func NewQuery(repo QueryRepository, clock Clock) *Query {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Query{repo: repo, clock: clock}
}

// Records returns the worker's records within the optional inclusive date
// range, newest first.
func (q *Query) Records(ctx context.Context, tenantID, workerID string, from, to *time.Time) ([]RecordView, error) {
	if tenantID == "" {
		return nil, ErrTenantNotSet
	}
	recs, err := q.repo.ListForWorker(ctx, tenantID, workerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return views(recs), nil
}

// TodayRecords returns the worker's records for the provider's "today",
// from midnight through end of day.
func (q *Query) TodayRecords(ctx context.Context, tenantID, workerID string) ([]RecordView, error) {
	now := q.clock.Now()
	from := startOfDay(now)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return q.Records(ctx, tenantID, workerID, &from, &to)
}

// LastRecord returns the worker's most recent record across all time, or nil.
func (q *Query) LastRecord(ctx context.Context, tenantID, workerID string) (*RecordView, error) {
	if tenantID == "" {
		return nil, ErrTenantNotSet
	}
	rec, err := q.repo.LastForWorker(ctx, tenantID, workerID)
	if err != nil {
		return nil, fmt.Errorf("load last record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	view := rec.View()
	return &view, nil
}

// Report returns one page of the report view plus the total row count.
func (q *Query) Report(ctx context.Context, tenantID string, opts ReportOptions) ([]ReportRow, int64, error) {
	if tenantID == "" {
		return nil, 0, ErrTenantNotSet
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 || opts.PageSize > 200 {
		opts.PageSize = 50
	}
	rows, total, err := q.repo.Report(ctx, tenantID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("report query: %w", err)
	}
	return rows, total, nil
}

func views(recs []Record) []RecordView {
	out := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.View())
	}
	return out
}
