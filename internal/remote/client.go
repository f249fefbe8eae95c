// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package remote is the backend for a hosted database service that
// exposes tables over a PostgREST-style HTTP API (/rest/v1) and password
// sessions over /auth/v1. Reads use the project's access key; writes run
// with the dashboard user's access token when one is on the context.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/query"
)

// DefaultTimeout bounds a single request to the hosted service.
const DefaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	// URL is the project URL, e.g. https://abc.example.co.
	URL string
	// Key is the project's public access key.
	Key string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client talks to the hosted service.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, errors.New("remote: url and key are required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote: invalid url %q", cfg.URL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
		http:    hc,
	}, nil
}

type tokenKey struct{}

// WithAccessToken returns a context whose requests authenticate as the
// session owning token instead of with the project key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// APIError is a non-2xx response from the hosted service.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote API error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote API error (status %d): %s", e.Status, e.Message)
}

// Is reports unique violations as query.ErrConflict.
func (e *APIError) Is(target error) bool {
	return target == query.ErrConflict && (e.Code == "23505" || e.Status == http.StatusConflict)
}

// request describes one call to the service.
type request struct {
	method string
	path   string
	params url.Values
	body   any
	prefer string
	// bearer overrides the token taken from the context.
	bearer string
}

// do sends r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint := c.baseURL + r.path
	if len(r.params) > 0 {
		endpoint += "?" + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("remote marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("remote request: %w", err)
	}

	bearer := r.bearer
	if bearer == "" {
		bearer = accessToken(ctx)
	}
	if bearer == "" {
		bearer = c.key
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("remote unmarshal: %w", err)
	}
	return nil
}
