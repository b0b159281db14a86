package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const recordColumns = `id, tenant_id, worker_id, occurred_at, type, method, status,
	latitude, longitude, location_name, address,
	within_geofence, geofence_id, beacon_id, beacon_name,
	biometric_verified, photo_ref, device_id, device_type,
	offline_record, notes, approved, created_at`

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record. The partial unique index on
// (tenant_id, worker_id, day, type) for online records turns a concurrent
// double submission into ErrDuplicateEvent here, after the in-process check
// already passed.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (
			id, tenant_id, worker_id, occurred_at, day, type, method, status,
			latitude, longitude, location_name, address,
			within_geofence, geofence_id, beacon_id, beacon_name,
			biometric_verified, photo_ref, device_id, device_type,
			offline_record, notes, approved
		) VALUES (
			$1,$2,$3,$4,($4 AT TIME ZONE 'UTC')::date,$5,$6,$7,
			$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22
		)
		RETURNING created_at
	`, rec.ID, rec.TenantID, rec.WorkerID, rec.Timestamp, rec.Type, rec.Method, rec.Status,
		rec.Latitude, rec.Longitude, rec.LocationName, rec.Address,
		rec.WithinGeofence, rec.GeofenceID, rec.BeaconID, rec.BeaconName,
		rec.BiometricVerified, rec.PhotoRef, rec.DeviceID, rec.DeviceType,
		rec.OfflineRecord, rec.Notes, rec.Approved)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicateEvent
		}
		return Record{}, err
	}
	return rec, nil
}

// LastOnlineOfDay returns the most recent online event of the given type for
// the worker on the given day, or nil.
func (r *Repository) LastOnlineOfDay(ctx context.Context, tenantID, workerID string, day time.Time, typ EventType) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE tenant_id = $1 AND worker_id = $2 AND day = ($3 AT TIME ZONE 'UTC')::date
			AND type = $4 AND NOT offline_record
		ORDER BY occurred_at DESC
		LIMIT 1
	`, tenantID, workerID, day, typ)
	return scanOptionalRecord(row)
}

// GetRecord returns a single record by id, or nil when absent.
func (r *Repository) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	return scanOptionalRecord(row)
}

// ListForWorker returns a worker's records, optionally bounded by an
// inclusive date range, newest first.
func (r *Repository) ListForWorker(ctx context.Context, tenantID, workerID string, from, to *time.Time) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE tenant_id = $1 AND worker_id = $2`
	args := []any{tenantID, workerID}
	if from != nil {
		args = append(args, *from)
		query += ` AND occurred_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND occurred_at <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY occurred_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LastForWorker returns the worker's most recent record across all time.
func (r *Repository) LastForWorker(ctx context.Context, tenantID, workerID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE tenant_id = $1 AND worker_id = $2
		ORDER BY occurred_at DESC
		LIMIT 1
	`, tenantID, workerID)
	return scanOptionalRecord(row)
}

// reportSortColumns whitelists sortable fields; anything else falls back to
// newest first.
var reportSortColumns = map[string]string{
	"timestamp":  "r.occurred_at",
	"type":       "r.type",
	"method":     "r.method",
	"status":     "r.status",
	"workerId":   "r.worker_id",
	"approved":   "r.approved",
	"offline":    "r.offline_record",
	"workerName": "w.name",
}

// Report returns one page of records joined with directory info, plus the
// total matching count.
func (r *Repository) Report(ctx context.Context, tenantID string, opts ReportOptions) ([]ReportRow, int64, error) {
	where := ` FROM attendance_records r
		LEFT JOIN workers w ON w.tenant_id = r.tenant_id AND w.worker_id = r.worker_id
		WHERE r.tenant_id = $1
			AND ($2 = '' OR w.name ILIKE '%' || $2 || '%'
				OR w.email ILIKE '%' || $2 || '%'
				OR w.employee_id ILIKE '%' || $2 || '%')`

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, tenantID, opts.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "r.occurred_at DESC"
	if col, ok := reportSortColumns[opts.SortBy]; ok {
		dir := "ASC"
		if opts.Descending {
			dir = "DESC"
		}
		orderBy = col + " " + dir
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.tenant_id, r.worker_id, r.occurred_at, r.type, r.method, r.status,
			r.latitude, r.longitude, r.location_name, r.address,
			r.within_geofence, r.geofence_id, r.beacon_id, r.beacon_name,
			r.biometric_verified, r.photo_ref, r.device_id, r.device_type,
			r.offline_record, r.notes, r.approved, r.created_at,
			COALESCE(w.name, ''), COALESCE(w.email, ''), COALESCE(w.employee_id, '')
		%s ORDER BY %s LIMIT $3 OFFSET $4`, where, orderBy)

	rows, err := r.db.QueryContext(ctx, query, tenantID, opts.Search, opts.PageSize, (opts.Page-1)*opts.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var (
			rec                     Record
			name, email, employeeID string
		)
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.WorkerID, &rec.Timestamp, &rec.Type, &rec.Method, &rec.Status,
			&rec.Latitude, &rec.Longitude, &rec.LocationName, &rec.Address,
			&rec.WithinGeofence, &rec.GeofenceID, &rec.BeaconID, &rec.BeaconName,
			&rec.BiometricVerified, &rec.PhotoRef, &rec.DeviceID, &rec.DeviceType,
			&rec.OfflineRecord, &rec.Notes, &rec.Approved, &rec.CreatedAt,
			&name, &email, &employeeID,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, ReportRow{
			RecordView:  rec.View(),
			WorkerName:  name,
			WorkerEmail: email,
			EmployeeID:  employeeID,
		})
	}
	return out, total, rows.Err()
}

// UpsertWorker refreshes the directory read model used by the report search.
func (r *Repository) UpsertWorker(ctx context.Context, w Worker) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workers (tenant_id, worker_id, name, email, employee_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, worker_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			employee_id = EXCLUDED.employee_id,
			updated_at = NOW()
	`, w.TenantID, w.WorkerID, w.Name, w.Email, w.EmployeeID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.WorkerID, &rec.Timestamp, &rec.Type, &rec.Method, &rec.Status,
		&rec.Latitude, &rec.Longitude, &rec.LocationName, &rec.Address,
		&rec.WithinGeofence, &rec.GeofenceID, &rec.BeaconID, &rec.BeaconName,
		&rec.BiometricVerified, &rec.PhotoRef, &rec.DeviceID, &rec.DeviceType,
		&rec.OfflineRecord, &rec.Notes, &rec.Approved, &rec.CreatedAt,
	)
	return rec, err
}

func scanOptionalRecord(row *sql.Row) (*Record, error) {
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
