package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Profile is the directory service's view of a worker, the fields the
// report search indexes on.
type Profile struct {
	WorkerID   string `json:"worker_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
}

// Client calls the platform directory/identity service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set, lookups return canned profiles so the
// rest of the pipeline works without the directory service running.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Health checks the directory service.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("directory health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Lookup fetches a worker's profile by id.
func (c *Client) Lookup(ctx context.Context, workerID string) (*Profile, error) {
	if c.Skip {
		return &Profile{
			WorkerID:   workerID,
			Name:       "Dev Worker " + workerID,
			Email:      workerID + "@example.test",
			EmployeeID: "EMP-" + workerID,
		}, nil
	}

	endpoint := c.BaseURL + "/v1/workers/" + url.PathEscape(workerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory lookup status %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	return &profile, nil
}
