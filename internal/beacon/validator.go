package beacon

import "context"

// Beacon is a short-range transmitter standing in for a geofence when GPS is
// unreliable. GeofenceID is nil for beacons not linked to any zone.
type Beacon struct {
	ID         string
	TenantID   string
	UID        string
	Name       string
	Active     bool
	GeofenceID *string
}

// Repository materializes the beacon and assignment rows the validator needs.
type Repository interface {
	// FindActiveByUID returns the active beacon with the given external
	// identifier, or nil when none exists.
	FindActiveByUID(ctx context.Context, tenantID, uid string) (*Beacon, error)
	// AssignmentExists reports whether the worker is assigned to the geofence.
	AssignmentExists(ctx context.Context, tenantID, geofenceID, workerID string) (bool, error)
}

// Validator decides whether a beacon counts as presence evidence for a worker.
type Validator struct {
	repo Repository
}

// NewValidator creates a validator backed by a beacon repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo}
}

// IsValidForWorker reports whether the worker may use the beacon as presence
// evidence. Beacons are never trusted on their own: the beacon must be active,
// linked to a geofence, and that geofence assigned to the worker.
func (v *Validator) IsValidForWorker(ctx context.Context, tenantID, uid, workerID string) (bool, error) {
	b, err := v.repo.FindActiveByUID(ctx, tenantID, uid)
	if err != nil {
		return false, err
	}
	if b == nil || b.GeofenceID == nil {
		return false, nil
	}
	return v.repo.AssignmentExists(ctx, tenantID, *b.GeofenceID, workerID)
}

// NameOf resolves the beacon's display name. Best effort: unknown beacons
// yield an empty name, not an error.
func (v *Validator) NameOf(ctx context.Context, tenantID, uid string) (string, error) {
	b, err := v.repo.FindActiveByUID(ctx, tenantID, uid)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", nil
	}
	return b.Name, nil
}
