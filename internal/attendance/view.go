package attendance

import "time"

// RecordView is the external projection of a Record. Latitude and longitude
// default to 0.0 rather than null when absent; existing clients depend on
// that, so it stays.
type RecordView struct {
	ID                  string    `json:"id"`
	WorkerID            string    `json:"workerId"`
	Timestamp           time.Time `json:"timestamp"`
	Type                string    `json:"type"`
	Method              string    `json:"method"`
	Status              string    `json:"status"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	LocationName        string    `json:"locationName"`
	Address             string    `json:"address"`
	IsWithinGeofence    bool      `json:"isWithinGeofence"`
	GeofenceID          string    `json:"geofenceId,omitempty"`
	BeaconID            string    `json:"beaconId,omitempty"`
	BeaconName          string    `json:"beaconName,omitempty"`
	IsBiometricVerified bool      `json:"isBiometricVerified"`
	PhotoRef            string    `json:"photoRef,omitempty"`
	DeviceID            string    `json:"deviceId,omitempty"`
	DeviceType          string    `json:"deviceType,omitempty"`
	IsOfflineRecord     bool      `json:"isOfflineRecord"`
	Notes               string    `json:"notes,omitempty"`
	IsApproved          bool      `json:"isApproved"`
}

// View projects the record for API responses.
func (r Record) View() RecordView {
	v := RecordView{
		ID:                  r.ID,
		WorkerID:            r.WorkerID,
		Timestamp:           r.Timestamp,
		Type:                string(r.Type),
		Method:              string(r.Method),
		Status:              string(r.Status),
		LocationName:        r.LocationName,
		Address:             r.Address,
		IsWithinGeofence:    r.WithinGeofence,
		BeaconID:            r.BeaconID,
		BeaconName:          r.BeaconName,
		IsBiometricVerified: r.BiometricVerified,
		PhotoRef:            r.PhotoRef,
		DeviceID:            r.DeviceID,
		DeviceType:          r.DeviceType,
		IsOfflineRecord:     r.OfflineRecord,
		Notes:               r.Notes,
		IsApproved:          r.Approved,
	}
	if r.Latitude != nil {
		v.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		v.Longitude = *r.Longitude
	}
	if r.GeofenceID != nil {
		v.GeofenceID = *r.GeofenceID
	}
	return v
}

// Envelope is the uniform response body; no endpoint returns a raw error.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ReportRow is a record joined with the worker directory info the report
// search and listing need.
type ReportRow struct {
	RecordView
	WorkerName  string `json:"workerName"`
	WorkerEmail string `json:"workerEmail"`
	EmployeeID  string `json:"employeeId"`
}
