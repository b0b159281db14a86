package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingQueryRepo struct {
	from, to *time.Time
	opts     ReportOptions
	records  []Record
	last     *Record
}

func (c *capturingQueryRepo) ListForWorker(ctx context.Context, tenantID, workerID string, from, to *time.Time) ([]Record, error) {
	c.from, c.to = from, to
	return c.records, nil
}

func (c *capturingQueryRepo) LastForWorker(ctx context.Context, tenantID, workerID string) (*Record, error) {
	return c.last, nil
}

func (c *capturingQueryRepo) Report(ctx context.Context, tenantID string, opts ReportOptions) ([]ReportRow, int64, error) {
	c.opts = opts
	return nil, 0, nil
}

func TestTodayRecordsRange(t *testing.T) {
	repo := &capturingQueryRepo{}
	q := NewQuery(repo, fixedClock{now: time.Date(2025, 3, 10, 14, 45, 12, 0, time.UTC)})

	_, err := q.TodayRecords(context.Background(), "t1", "w1")
	require.NoError(t, err)

	require.NotNil(t, repo.from)
	require.NotNil(t, repo.to)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *repo.from)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), *repo.to)
}

func TestLastRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("nil when the worker has no records", func(t *testing.T) {
		q := NewQuery(&capturingQueryRepo{}, nil)
		view, err := q.LastRecord(ctx, "t1", "w1")
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("projects the most recent record", func(t *testing.T) {
		rec := Record{ID: "r1", WorkerID: "w1", Type: TypeCheckOut, Method: MethodGPS, Status: StatusValid}
		q := NewQuery(&capturingQueryRepo{last: &rec}, nil)
		view, err := q.LastRecord(ctx, "t1", "w1")
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, "r1", view.ID)
		assert.Equal(t, string(TypeCheckOut), view.Type)
	})

	t.Run("requires a tenant", func(t *testing.T) {
		q := NewQuery(&capturingQueryRepo{}, nil)
		_, err := q.LastRecord(ctx, "", "w1")
		assert.ErrorIs(t, err, ErrTenantNotSet)
	})
}

func TestReportDefaults(t *testing.T) {
	repo := &capturingQueryRepo{}
	q := NewQuery(repo, nil)

	_, _, err := q.Report(context.Background(), "t1", ReportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.opts.Page)
	assert.Equal(t, 50, repo.opts.PageSize)

	_, _, err = q.Report(context.Background(), "t1", ReportOptions{Page: 3, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.opts.Page)
	assert.Equal(t, 50, repo.opts.PageSize)
}

func TestViewDefaultsCoordinatesToZero(t *testing.T) {
	view := Record{ID: "r1", Type: TypeCheckIn, Method: MethodManual, Status: StatusValid}.View()
	assert.Equal(t, 0.0, view.Latitude)
	assert.Equal(t, 0.0, view.Longitude)
	assert.Empty(t, view.GeofenceID)
}
