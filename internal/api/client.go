// Package api is the HTTP client for the desktop's /api endpoints.
//
// Every request carries the token and device id as query parameters, the
// same credential scheme the WebSocket uses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ginkgo-talk/gtalk-remote/internal/config"
)

// ErrUnauthorized is returned when the desktop rejects the token (HTTP 401).
var ErrUnauthorized = errors.New("token rejected by desktop")

// ErrRejected is returned when the desktop refuses a pairing code.
var ErrRejected = errors.New("pairing code rejected")

// ErrUnavailable is returned when the desktop answers with a non-OK status
// other than 401. Network-level failures are returned as-is so callers can
// tell "service broken" from "service unreachable".
var ErrUnavailable = errors.New("desktop service unavailable")

// Credentials supplies the current token and device id per request, so a
// token stored mid-session is picked up without rebuilding the client.
type Credentials interface {
	Token() string
	DeviceID() (string, error)
}

// Client talks to the desktop's HTTP API.
type Client struct {
	base  string
	creds Credentials
	http  *http.Client
}

// New creates a client for the desktop at baseURL (scheme + host[:port]).
func New(baseURL string, creds Credentials) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		creds: creds,
		http:  &http.Client{Timeout: config.HTTPTimeout},
	}
}

// SetBaseURL points the client at a different desktop (config hot reload).
func (c *Client) SetBaseURL(baseURL string) {
	c.base = strings.TrimRight(baseURL, "/")
}

// withAuth appends token and device_id query parameters to path.
func (c *Client) withAuth(path string) (string, error) {
	u, err := url.Parse(c.base + path)
	if err != nil {
		return "", fmt.Errorf("bad server url: %w", err)
	}
	q := u.Query()
	if tok := c.creds.Token(); tok != "" {
		q.Set("token", tok)
	}
	id, err := c.creds.DeviceID()
	if err != nil {
		return "", err
	}
	if id != "" {
		q.Set("device_id", id)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PairStatus calls GET /api/pair. It reports whether this device is paired.
// Returns ErrUnauthorized when the desktop rejects the token.
func (c *Client) PairStatus(ctx context.Context) (bool, error) {
	var out struct {
		Paired bool `json:"paired"`
	}
	if err := c.getJSON(ctx, "/api/pair", &out); err != nil {
		return false, err
	}
	return out.Paired, nil
}

// SubmitPair calls POST /api/pair with a pairing code. On success it returns
// the session token issued by the desktop (may be empty if the desktop
// relies on the token already attached).
func (c *Client) SubmitPair(ctx context.Context, code string) (string, error) {
	id, err := c.creds.DeviceID()
	if err != nil {
		return "", err
	}
	body, _ := json.Marshal(map[string]string{"code": code, "deviceId": id})

	u, err := c.withAuth("/api/pair")
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pair request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrRejected
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode pair response: %w", err)
	}
	return out.Token, nil
}

// Status holds the desktop's current availability flags.
type Status struct {
	Paired      bool `json:"paired"`
	AIAvailable bool `json:"aiAvailable"`
}

// FetchStatus calls GET /api/status.
func (c *Client) FetchStatus(ctx context.Context) (Status, error) {
	var out Status
	err := c.getJSON(ctx, "/api/status", &out)
	return out, err
}

// DesktopConfig is the desktop's AI configuration. Secrets come back masked.
type DesktopConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	Model   string `json:"model,omitempty"`
	LanIP   string `json:"lanIp,omitempty"`
}

// FetchConfig calls GET /api/config.
func (c *Client) FetchConfig(ctx context.Context) (DesktopConfig, error) {
	var out DesktopConfig
	err := c.getJSON(ctx, "/api/config", &out)
	return out, err
}

// SaveResult is the desktop's answer to a config write.
type SaveResult struct {
	OK          bool `json:"ok"`
	AIAvailable bool `json:"aiAvailable"`
}

// SaveConfig calls POST /api/config with any subset of recognized fields.
func (c *Client) SaveConfig(ctx context.Context, fields DesktopConfig) (SaveResult, error) {
	var res SaveResult

	body, _ := json.Marshal(fields)
	u, err := c.withAuth("/api/config")
	if err != nil {
		return res, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("save config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return res, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("save config: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return res, fmt.Errorf("decode save response: %w", err)
	}
	return res, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u, err := c.withAuth(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: status %d: %w", path, resp.StatusCode, ErrUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
