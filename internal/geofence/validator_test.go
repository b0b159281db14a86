package geofence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubZones struct {
	zones []Zone
	err   error
}

func (s *stubZones) ZonesForWorker(ctx context.Context, tenantID, workerID string) ([]Zone, error) {
	return s.zones, s.err
}

func zone(id string, lat, lon, radius float64) Zone {
	return Zone{ID: id, TenantID: "t1", Name: id, Latitude: lat, Longitude: lon, RadiusMeters: radius, Active: true}
}

func TestDistance(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		assert.Zero(t, Distance(40.0, -75.0, 40.0, -75.0))
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := Distance(40.0, -75.0, 41.5, -73.25)
		ba := Distance(41.5, -73.25, 40.0, -75.0)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// Half a millidegree of longitude at 40N is roughly 43m.
		d := Distance(40.0, -75.0, 40.0, -75.0005)
		assert.InDelta(t, 42.6, d, 1.0)
	})
}

func TestIsWithinAny(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		zones    []Zone
		lat, lon float64
		want     bool
	}{
		{
			name:  "point at zone center matches any positive radius",
			zones: []Zone{zone("z1", 40.0, -75.0, 1)},
			lat:   40.0, lon: -75.0,
			want: true,
		},
		{
			name:  "point inside radius",
			zones: []Zone{zone("z1", 40.0, -75.0, 100)},
			lat:   40.0, lon: -75.0005,
			want: true,
		},
		{
			name:  "point outside radius",
			zones: []Zone{zone("z1", 40.0, -75.0, 30)},
			lat:   40.0, lon: -75.0005,
			want: false,
		},
		{
			name: "second zone matches",
			zones: []Zone{
				zone("z1", 10.0, 10.0, 50),
				zone("z2", 40.0, -75.0, 100),
			},
			lat: 40.0, lon: -75.0,
			want: true,
		},
		{
			name: "no assigned zones",
			lat:  40.0, lon: -75.0,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(&stubZones{zones: tt.zones})
			got, err := v.IsWithinAny(ctx, "t1", "w1", tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNearestMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("closest of two overlapping zones wins", func(t *testing.T) {
		v := NewValidator(&stubZones{zones: []Zone{
			zone("far", 40.001, -75.0, 500),
			zone("near", 40.0, -75.0001, 500),
		}})
		z, err := v.NearestMatch(ctx, "t1", "w1", 40.0, -75.0)
		require.NoError(t, err)
		require.NotNil(t, z)
		assert.Equal(t, "near", z.ID)
	})

	t.Run("exact tie keeps first in scan order", func(t *testing.T) {
		// Two zones at the same center: identical distances.
		v := NewValidator(&stubZones{zones: []Zone{
			zone("first", 40.0, -75.0, 500),
			zone("second", 40.0, -75.0, 500),
		}})
		z, err := v.NearestMatch(ctx, "t1", "w1", 40.0, -75.0002)
		require.NoError(t, err)
		require.NotNil(t, z)
		assert.Equal(t, "first", z.ID)
	})

	t.Run("nil when nothing matches", func(t *testing.T) {
		v := NewValidator(&stubZones{zones: []Zone{zone("z1", 10.0, 10.0, 20)}})
		z, err := v.NearestMatch(ctx, "t1", "w1", 40.0, -75.0)
		require.NoError(t, err)
		assert.Nil(t, z)
	})

	t.Run("zone containing the point beats a nearer non-matching zone", func(t *testing.T) {
		v := NewValidator(&stubZones{zones: []Zone{
			zone("tiny", 40.0, -75.0004, 5),
			zone("wide", 40.0, -75.001, 200),
		}})
		z, err := v.NearestMatch(ctx, "t1", "w1", 40.0, -75.0005)
		require.NoError(t, err)
		require.NotNil(t, z)
		assert.Equal(t, "wide", z.ID)
	})
}
