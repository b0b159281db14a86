package attendance

import "time"

// EventType distinguishes check-ins from check-outs.
type EventType string

const (
	TypeCheckIn  EventType = "check_in"
	TypeCheckOut EventType = "check_out"
)

// Method is the strongest presence evidence attached to the event, by
// priority: biometric, beacon, GPS, manual.
type Method string

const (
	MethodBiometric Method = "biometric"
	MethodBeacon    Method = "beacon"
	MethodGPS       Method = "gps"
	MethodManual    Method = "manual"
)

// Status marks record validity. Only "valid" is produced today; disputed and
// voided are reserved for the review workflow.
type Status string

const (
	StatusValid Status = "valid"
)

// Record is one presence event. A record is immutable once persisted.
type Record struct {
	ID       string
	TenantID string
	WorkerID string

	Timestamp time.Time
	Type      EventType
	Method    Method
	Status    Status

	Latitude     *float64
	Longitude    *float64
	LocationName string
	Address      string

	WithinGeofence bool
	GeofenceID     *string

	BeaconID   string
	BeaconName string

	BiometricVerified bool
	PhotoRef          string

	DeviceID   string
	DeviceType string

	OfflineRecord bool
	Notes         string

	// Approved is true iff geofence or beacon validation succeeded. An event
	// with neither signal is still recorded, flagged for review.
	Approved bool

	CreatedAt time.Time
}

// Request carries a check-in or check-out submission. All fields are
// optional; OfflineTimestamp is honored only when IsOffline is set.
type Request struct {
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	LocationName     string     `json:"locationName"`
	Address          string     `json:"address"`
	BeaconID         string     `json:"beaconId"`
	BiometricData    string     `json:"biometricData"`
	PhotoPayload     string     `json:"photoPayload"`
	DeviceID         string     `json:"deviceId"`
	DeviceType       string     `json:"deviceType"`
	Notes            string     `json:"notes"`
	IsOffline        bool       `json:"isOffline"`
	OfflineTimestamp *time.Time `json:"offlineTimestamp"`
}

// Worker is the directory read model used by the report search. It is kept
// current by the worker process, not by check-in traffic.
type Worker struct {
	TenantID   string
	WorkerID   string
	Name       string
	Email      string
	EmployeeID string
	UpdatedAt  time.Time
}
