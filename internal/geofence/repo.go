package geofence

import (
	"context"
	"database/sql"
)

// Repository loads geofence data from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ZonesForWorker returns the worker's assigned active zones, oldest first.
// The ordering is the validator's tie-break scan order, so it must stay
// deterministic across calls.
func (r *Repository) ZonesForWorker(ctx context.Context, tenantID, workerID string) ([]Zone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.tenant_id, g.name, g.latitude, g.longitude, g.radius_m, g.active
		FROM geofences g
		JOIN user_geofences ug ON ug.geofence_id = g.id AND ug.tenant_id = g.tenant_id
		WHERE g.tenant_id = $1 AND ug.worker_id = $2 AND g.active
		ORDER BY g.created_at, g.id
	`, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var z Zone
		if err := rows.Scan(&z.ID, &z.TenantID, &z.Name, &z.Latitude, &z.Longitude, &z.RadiusMeters, &z.Active); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
