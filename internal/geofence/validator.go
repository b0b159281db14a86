package geofence

import (
	"context"
	"math"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distance.
const earthRadiusMeters = 6371000.0

// Zone is a circular geofence assigned to workers as valid presence evidence.
type Zone struct {
	ID           string
	TenantID     string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Active       bool
}

// ZoneRepository returns a worker's candidate zones: active geofences the
// worker is assigned to, in a stable order (creation order). The whole set is
// fetched in one query so validation never walks assignment rows one by one.
type ZoneRepository interface {
	ZonesForWorker(ctx context.Context, tenantID, workerID string) ([]Zone, error)
}

// Validator answers geofence containment questions for a worker.
type Validator struct {
	zones ZoneRepository
}

// NewValidator creates a validator backed by a zone repository.
func NewValidator(zones ZoneRepository) *Validator {
	return &Validator{zones: zones}
}

// IsWithinAny reports whether the point falls inside at least one of the
// worker's assigned active zones.
func (v *Validator) IsWithinAny(ctx context.Context, tenantID, workerID string, lat, lon float64) (bool, error) {
	zones, err := v.zones.ZonesForWorker(ctx, tenantID, workerID)
	if err != nil {
		return false, err
	}
	for _, z := range zones {
		if Distance(lat, lon, z.Latitude, z.Longitude) <= z.RadiusMeters {
			return true, nil
		}
	}
	return false, nil
}

// NearestMatch returns the matching zone with the smallest distance to the
// point, or nil when no zone contains it. The comparison is a strict
// less-than, so on an exact distance tie the first zone in scan order wins.
func (v *Validator) NearestMatch(ctx context.Context, tenantID, workerID string, lat, lon float64) (*Zone, error) {
	zones, err := v.zones.ZonesForWorker(ctx, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	var (
		best     *Zone
		bestDist float64
	)
	for i := range zones {
		z := zones[i]
		d := Distance(lat, lon, z.Latitude, z.Longitude)
		if d > z.RadiusMeters {
			continue
		}
		if best == nil || d < bestDist {
			best = &z
			bestDist = d
		}
	}
	return best, nil
}

// Distance computes the great-circle distance in meters between two
// latitude/longitude points using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
