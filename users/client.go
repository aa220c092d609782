package users

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/chatterbox/chatterbox-go/api"
)

// Client translates profile operations into requests against the user
// resource endpoints.
type Client struct {
	api *api.Client
}

func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := c.api.GetJSON(ctx, "users.Profile", "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends a partial profile update and returns the fields the
// backend echoed back, for the caller to merge.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if err := c.api.PutJSON(ctx, "users.UpdateProfile", "/users/profile", fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword submits the current and new password as a URL-encoded form,
// matching the backend's form-field contract.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	form := url.Values{}
	form.Set("current_password", currentPassword)
	form.Set("new_password", newPassword)
	return c.api.PutForm(ctx, "users.ChangePassword", "/users/password", form, nil)
}
