package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/mizan-mobiles/storefront-go/internal/errors"
)

// Client is a thin JSON client over the authenticated transport. All
// storefront API calls go through it so auth handling and error mapping
// live in one place.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient constructs a Client. The supplied http.Client is expected to
// carry a *Transport; a bare client still works but gets no auth handling.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: baseURL}
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// GetUnwrapped issues a GET and decodes the response through an envelope.
func (c *Client) GetUnwrapped(ctx context.Context, path string, env *Envelope, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	return env.Decode(raw, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "encode %s %s request", method, path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeNetwork, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.Unauthorized(fmt.Sprintf("%s %s: authentication required", method, path))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.Network(fmt.Sprintf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeNetwork, "read %s %s response", method, path)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeNetwork, "decode %s %s response", method, path)
	}
	return nil
}
