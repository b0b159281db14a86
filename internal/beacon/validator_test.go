package beacon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	beacons     map[string]*Beacon
	assignments map[string][]string // geofence id -> worker ids
}

func (s *stubRepo) FindActiveByUID(ctx context.Context, tenantID, uid string) (*Beacon, error) {
	return s.beacons[uid], nil
}

func (s *stubRepo) AssignmentExists(ctx context.Context, tenantID, geofenceID, workerID string) (bool, error) {
	for _, w := range s.assignments[geofenceID] {
		if w == workerID {
			return true, nil
		}
	}
	return false, nil
}

func TestIsValidForWorker(t *testing.T) {
	ctx := context.Background()
	zoneID := "zone-1"

	repo := &stubRepo{
		beacons: map[string]*Beacon{
			"lobby":    {ID: "b1", UID: "lobby", Name: "Lobby", Active: true, GeofenceID: &zoneID},
			"unlinked": {ID: "b2", UID: "unlinked", Name: "Spare", Active: true},
		},
		assignments: map[string][]string{
			zoneID: {"w1"},
		},
	}
	v := NewValidator(repo)

	tests := []struct {
		name     string
		uid      string
		workerID string
		want     bool
	}{
		{"assigned worker", "lobby", "w1", true},
		{"worker without assignment", "lobby", "w2", false},
		{"beacon with no linked zone", "unlinked", "w1", false},
		{"unknown beacon", "nope", "w1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.IsValidForWorker(ctx, "t1", tt.uid, tt.workerID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNameOf(t *testing.T) {
	ctx := context.Background()
	v := NewValidator(&stubRepo{beacons: map[string]*Beacon{
		"lobby": {ID: "b1", UID: "lobby", Name: "Lobby", Active: true},
	}})

	name, err := v.NameOf(ctx, "t1", "lobby")
	require.NoError(t, err)
	assert.Equal(t, "Lobby", name)

	name, err = v.NameOf(ctx, "t1", "missing")
	require.NoError(t, err)
	assert.Empty(t, name)
}
