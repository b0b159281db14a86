package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a profile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/workers/w1", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"worker_id":"w1","name":"Ada","email":"ada@corp.test","employee_id":"E100"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, false)
		p, err := c.Lookup(ctx, "w1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Ada", p.Name)
		assert.Equal(t, "ada@corp.test", p.Email)
		assert.Equal(t, "E100", p.EmployeeID)
	})

	t.Run("nil for unknown workers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		p, err := New(srv.URL, false).Lookup(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("skip mode returns canned profiles", func(t *testing.T) {
		p, err := New("http://unused", true).Lookup(ctx, "w9")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "w9", p.WorkerID)
		assert.NotEmpty(t, p.Email)
	})
}
