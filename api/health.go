package api

import "context"

// Health is the backend's service status report.
type Health struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  map[string]any `json:"services,omitempty"`
	Err       string         `json:"error,omitempty"`
}

// Health checks the backend. The endpoint is unauthenticated.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.GetJSON(ctx, "api.Health", "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
