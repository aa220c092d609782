// Package plugins is the resource client for listing and executing backend
// plugins (weather, news, wikipedia, and whatever else the server registers).
package plugins

import (
	"context"
	"fmt"

	"github.com/chatterbox/chatterbox-go/api"
)

type Client struct {
	api *api.Client
}

func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type Info struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Version       string   `json:"version"`
	Capabilities  []string `json:"capabilities"`
	HelpText      string   `json:"help_text"`
	UsageExamples []string `json:"usage_examples"`
}

// Result is the uniform plugin execution envelope. A failed execution is a
// 2xx response with Success=false and Error set, not an HTTP failure.
type Result struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (c *Client) List(ctx context.Context) ([]Info, error) {
	var out struct {
		Plugins []Info `json:"plugins"`
	}
	if err := c.api.GetJSON(ctx, "plugins.List", "/plugins", nil, &out); err != nil {
		return nil, err
	}
	return out.Plugins, nil
}

func (c *Client) Execute(ctx context.Context, name string, params map[string]any) (*Result, error) {
	if params == nil {
		params = map[string]any{}
	}
	var out Result
	p := fmt.Sprintf("/plugins/%s/execute", name)
	if err := c.api.PostJSON(ctx, "plugins.Execute", p, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
