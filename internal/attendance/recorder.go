package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alsairy/AttendancePro-sub003/internal/geofence"
)

// Clock supplies the server's notion of now; injected so tests control time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock, always UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// RecordRepository persists attendance records. Insert must enforce the
// at-most-one online event per (tenant, worker, day, type) constraint at the
// storage level and surface a violation as ErrDuplicateEvent, since the
// in-process duplicate check races under concurrent submissions.
type RecordRepository interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	LastOnlineOfDay(ctx context.Context, tenantID, workerID string, day time.Time, typ EventType) (*Record, error)
}

// GeofenceValidator is the containment contract the recorder needs.
type GeofenceValidator interface {
	IsWithinAny(ctx context.Context, tenantID, workerID string, lat, lon float64) (bool, error)
	NearestMatch(ctx context.Context, tenantID, workerID string, lat, lon float64) (*geofence.Zone, error)
}

// BeaconValidator is the beacon authorization contract the recorder needs.
type BeaconValidator interface {
	IsValidForWorker(ctx context.Context, tenantID, uid, workerID string) (bool, error)
	NameOf(ctx context.Context, tenantID, uid string) (string, error)
}

// PhotoProcessor turns a photo payload into a stored reference.
type PhotoProcessor interface {
	Process(ctx context.Context, payload string) (string, error)
}

// Recorder orchestrates a single check-in or check-out: duplicate detection,
// geofence/beacon validation, photo processing, and the final write.
type Recorder struct {
	repo    RecordRepository
	zones   GeofenceValidator
	beacons BeaconValidator
	photos  PhotoProcessor
	clock   Clock
	log     *zap.Logger
}

// NewRecorder wires a recorder. A nil clock falls back to the system clock.
func NewRecorder(repo RecordRepository, zones GeofenceValidator, beacons BeaconValidator, photos PhotoProcessor, clock Clock, log *zap.Logger) *Recorder {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{repo: repo, zones: zones, beacons: beacons, photos: photos, clock: clock, log: log}
}

// RecordCheckIn records a check-in for the worker.
func (r *Recorder) RecordCheckIn(ctx context.Context, tenantID, workerID string, req Request) (*RecordView, error) {
	return r.record(ctx, tenantID, workerID, req, TypeCheckIn)
}

// RecordCheckOut records a check-out; it requires a check-in earlier today.
func (r *Recorder) RecordCheckOut(ctx context.Context, tenantID, workerID string, req Request) (*RecordView, error) {
	return r.record(ctx, tenantID, workerID, req, TypeCheckOut)
}

func (r *Recorder) record(ctx context.Context, tenantID, workerID string, req Request, typ EventType) (*RecordView, error) {
	if tenantID == "" {
		return nil, ErrTenantNotSet
	}

	now := r.clock.Now()
	today := startOfDay(now)

	if typ == TypeCheckOut {
		prior, err := r.repo.LastOnlineOfDay(ctx, tenantID, workerID, today, TypeCheckIn)
		if err != nil {
			return nil, fmt.Errorf("load prior check-in: %w", err)
		}
		if prior == nil {
			return nil, ErrNoPriorCheckIn
		}
	}

	// Offline submissions bypass the once-per-day constraint; they are
	// reconciled later by a reviewer.
	last, err := r.repo.LastOnlineOfDay(ctx, tenantID, workerID, today, typ)
	if err != nil {
		return nil, fmt.Errorf("load prior event: %w", err)
	}
	if last != nil && !req.IsOffline {
		return nil, ErrDuplicateEvent
	}

	rec := Record{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		WorkerID:          workerID,
		Type:              typ,
		Status:            StatusValid,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		LocationName:      req.LocationName,
		Address:           req.Address,
		BeaconID:          req.BeaconID,
		BiometricVerified: req.BiometricData != "",
		DeviceID:          req.DeviceID,
		DeviceType:        req.DeviceType,
		OfflineRecord:     req.IsOffline,
		Notes:             req.Notes,
	}

	if req.Latitude != nil && req.Longitude != nil {
		within, err := r.zones.IsWithinAny(ctx, tenantID, workerID, *req.Latitude, *req.Longitude)
		if err != nil {
			return nil, fmt.Errorf("geofence validation: %w", err)
		}
		rec.WithinGeofence = within
		if within {
			zone, err := r.zones.NearestMatch(ctx, tenantID, workerID, *req.Latitude, *req.Longitude)
			if err != nil {
				return nil, fmt.Errorf("geofence match: %w", err)
			}
			if zone != nil {
				rec.GeofenceID = &zone.ID
			}
		}
	}

	beaconValid := false
	if req.BeaconID != "" {
		beaconValid, err = r.beacons.IsValidForWorker(ctx, tenantID, req.BeaconID, workerID)
		if err != nil {
			return nil, fmt.Errorf("beacon validation: %w", err)
		}
		// Display name is best effort; a nameless beacon is not an error.
		if name, err := r.beacons.NameOf(ctx, tenantID, req.BeaconID); err == nil {
			rec.BeaconName = name
		}
	}

	rec.Method = deriveMethod(req)

	if req.PhotoPayload != "" {
		ref, err := r.photos.Process(ctx, req.PhotoPayload)
		if err != nil {
			return nil, err
		}
		rec.PhotoRef = ref
	}

	// Offline events keep the client-supplied time verbatim; no skew
	// correction is applied.
	rec.Timestamp = now
	if req.IsOffline && req.OfflineTimestamp != nil {
		rec.Timestamp = *req.OfflineTimestamp
	}

	rec.Approved = rec.WithinGeofence || beaconValid

	saved, err := r.repo.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	r.log.Info("attendance recorded",
		zap.String("record_id", saved.ID),
		zap.String("worker_id", workerID),
		zap.String("type", string(typ)),
		zap.String("method", string(saved.Method)),
		zap.Bool("approved", saved.Approved),
		zap.Bool("offline", saved.OfflineRecord),
	)

	view := saved.View()
	return &view, nil
}

// deriveMethod picks the strongest evidence present, not submission order.
func deriveMethod(req Request) Method {
	switch {
	case req.BiometricData != "":
		return MethodBiometric
	case req.BeaconID != "":
		return MethodBeacon
	case req.Latitude != nil && req.Longitude != nil:
		return MethodGPS
	default:
		return MethodManual
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
