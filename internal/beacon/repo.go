package beacon

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository loads beacon data from Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindActiveByUID returns the active beacon with the given external identifier.
func (r *PostgresRepository) FindActiveByUID(ctx context.Context, tenantID, uid string) (*Beacon, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, beacon_uid, name, active, geofence_id
		FROM beacons
		WHERE tenant_id = $1 AND beacon_uid = $2 AND active
	`, tenantID, uid)

	var b Beacon
	if err := row.Scan(&b.ID, &b.TenantID, &b.UID, &b.Name, &b.Active, &b.GeofenceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// AssignmentExists reports whether the worker is assigned to the geofence.
func (r *PostgresRepository) AssignmentExists(ctx context.Context, tenantID, geofenceID, workerID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_geofences
			WHERE tenant_id = $1 AND geofence_id = $2 AND worker_id = $3
		)
	`, tenantID, geofenceID, workerID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
