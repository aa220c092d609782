package users

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// User is the profile record returned by the backend. It is replaced
// wholesale on login and profile fetch; the only partial mutation path is
// the explicit profile update, which shallow-merges the returned fields.
type User struct {
	ID          string         `json:"id,omitempty"`
	Username    string         `json:"username"`
	Email       string         `json:"email,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	LastLogin   string         `json:"last_login,omitempty"`
	IsActive    bool           `json:"is_active,omitempty"`
	MemoryStats map[string]any `json:"memory_stats,omitempty"`
}

// Merge overlays the fields present in updates onto u and returns the
// merged record. Fields absent from updates keep their current values.
func Merge(u *User, updates map[string]json.RawMessage) (*User, error) {
	if u == nil {
		u = &User{}
	}
	if len(updates) == 0 {
		merged := *u
		return &merged, nil
	}

	current, err := json.Marshal(u)
	if err != nil {
		return nil, errors.Wrap(err, "[users.Merge] marshal current user")
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return nil, errors.Wrap(err, "[users.Merge] unmarshal current user")
	}
	for key, value := range updates {
		fields[key] = value
	}
	combined, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "[users.Merge] marshal merged fields")
	}

	var merged User
	if err := json.Unmarshal(combined, &merged); err != nil {
		return nil, errors.Wrap(err, "[users.Merge] unmarshal merged user")
	}
	return &merged, nil
}
