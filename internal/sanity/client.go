// Package sanity queries a Sanity dataset over its HTTP API and renders
// Portable Text.
package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options mirror the project settings of a Sanity client.
type Options struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string

	// BaseURL overrides the host derived from ProjectID.
	BaseURL    string
	HTTPClient *http.Client
}

// Client runs GROQ queries.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New returns a client for one project and dataset.
func New(opts Options) (*Client, error) {
	if opts.ProjectID == "" && opts.BaseURL == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if opts.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}
	version := strings.TrimPrefix(opts.APIVersion, "v")
	if version == "" {
		version = "1"
	}

	base := opts.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if opts.UseCDN && opts.Token == "" {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", opts.ProjectID, host)
	}

	c := &Client{
		endpoint: fmt.Sprintf("%s/v%s/data/query/%s", strings.TrimSuffix(base, "/"), version, url.PathEscape(opts.Dataset)),
		token:    opts.Token,
		http:     opts.HTTPClient,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

// QueryError is an error reported by the query endpoint.
type QueryError struct {
	StatusCode  int
	Description string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sanity: query failed (%d): %s", e.StatusCode, e.Description)
}

// Query runs a GROQ query and decodes its result into out. Params are
// JSON-encoded and passed as $name variables.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("sanity: encoding param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sanity: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity: query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sanity: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		desc := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &payload) == nil && payload.Error.Description != "" {
			desc = payload.Error.Description
		}
		return &QueryError{StatusCode: resp.StatusCode, Description: desc}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("sanity: decoding response: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("sanity: decoding result: %w", err)
	}
	return nil
}
