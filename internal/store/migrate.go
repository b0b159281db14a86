package store

import (
	"context"
	"fmt"
)

// migrations are idempotent DDL statements applied on startup, in order.
// The partial unique index is the storage-level guard against concurrent
// duplicate online submissions; the in-process duplicate check alone races.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		day DATE NOT NULL,
		type TEXT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		location_name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		within_geofence BOOLEAN NOT NULL DEFAULT FALSE,
		geofence_id UUID,
		beacon_id TEXT NOT NULL DEFAULT '',
		beacon_name TEXT NOT NULL DEFAULT '',
		biometric_verified BOOLEAN NOT NULL DEFAULT FALSE,
		photo_ref TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT '',
		device_type TEXT NOT NULL DEFAULT '',
		offline_record BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_online_event_per_day
		ON attendance_records (tenant_id, worker_id, day, type)
		WHERE NOT offline_record`,
	`CREATE INDEX IF NOT EXISTS idx_records_worker_time
		ON attendance_records (tenant_id, worker_id, occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS geofences (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		radius_m DOUBLE PRECISION NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS beacons (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		beacon_uid TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		geofence_id UUID REFERENCES geofences(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, beacon_uid)
	)`,
	`CREATE TABLE IF NOT EXISTS user_geofences (
		tenant_id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		geofence_id UUID NOT NULL REFERENCES geofences(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (tenant_id, worker_id, geofence_id)
	)`,
	`CREATE TABLE IF NOT EXISTS workers (
		tenant_id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		employee_id TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (tenant_id, worker_id)
	)`,
}

// Migrate applies the schema.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
