// Package client talks to a running `weightlog serve` instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/server"
)

const (
	requestTimeout = 5 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrRejected indicates the server refused the request as invalid input.
	ErrRejected = errors.New("client: rejected by server")
	// ErrUnavailable indicates the server answered with a 5xx status.
	ErrUnavailable = errors.New("client: server error")
)

// Client calls the weightlog HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for addr, which may be host:port or a full URL.
func New(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: addr,
		http:    &http.Client{},
	}
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health reports whether /healthz answers ok.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// Summary fetches the current progress summary.
func (c *Client) Summary(ctx context.Context) (*server.SummaryResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/summary", nil)
	if err != nil {
		return nil, err
	}
	var sum server.SummaryResponse
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("client: parsing summary: %w", err)
	}
	return &sum, nil
}

// Observations fetches the full log.
func (c *Client) Observations(ctx context.Context) (model.Log, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/observations", nil)
	if err != nil {
		return nil, err
	}
	var raw []server.ObservationJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("client: parsing observations: %w", err)
	}
	obs := make([]model.Observation, 0, len(raw))
	for _, o := range raw {
		d, err := time.Parse(model.DateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("client: observation date %q: %w", o.Date, err)
		}
		obs = append(obs, model.Observation{Date: d, Weight: o.Weight})
	}
	return model.NormalizeLog(obs), nil
}

// LogObservation upserts one weight on the server.
func (c *Client) LogObservation(ctx context.Context, date time.Time, weight float64) error {
	payload, err := json.Marshal(server.ObservationJSON{Date: date.Format(model.DateLayout), Weight: weight})
	if err != nil {
		return fmt.Errorf("client: encoding observation: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/v1/observations", payload)
	return err
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "weightlog/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrRejected, errorMessage(body))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, errorMessage(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// errorMessage extracts {"error": "..."} from a response, falling back to
// the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
