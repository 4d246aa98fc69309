// Package riot is a thin authenticated client for the remote inventory and
// party services.
package riot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

const defaultTimeout = 15 * time.Second

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from a remote service.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Options struct {
	HTTPClient *http.Client
	Endpoints  Endpoints
	Logger     *zap.Logger
}

type Client struct {
	http      *http.Client
	endpoints Endpoints
	creds     Credentials
	headers   http.Header
	log       *zap.Logger
}

func NewClient(creds Credentials, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(defaultTimeout)
	}
	if opts.Endpoints.PlayerData == nil || opts.Endpoints.Party == nil {
		opts.Endpoints = DefaultEndpoints
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		http:      opts.HTTPClient,
		endpoints: opts.Endpoints,
		creds:     creds,
		headers:   Headers(creds),
		log:       opts.Logger,
	}
}

func (c *Client) loadoutURL() string {
	return fmt.Sprintf("%s/personalization/v3/players/%s/playerloadout", c.endpoints.PlayerData(c.creds.Region), c.creds.UserID)
}

// GetLoadout fetches the loadout currently equipped on the remote side.
func (c *Client) GetLoadout(ctx context.Context) (*Loadout, error) {
	var out Loadout
	if err := c.do(ctx, http.MethodGet, c.loadoutURL(), nil, &out); err != nil {
		return nil, fmt.Errorf("get loadout: %w", err)
	}
	return &out, nil
}

// PutLoadout replaces the remote loadout. It is not retried.
func (c *Client) PutLoadout(ctx context.Context, loadout *Loadout) error {
	if err := c.do(ctx, http.MethodPut, c.loadoutURL(), loadout, nil); err != nil {
		return fmt.Errorf("put loadout: %w", err)
	}
	return nil
}

// GetEntitlements fetches owned items and reshapes them by category.
func (c *Client) GetEntitlements(ctx context.Context) (Entitlements, error) {
	url := fmt.Sprintf("%s/store/v1/entitlements/%s", c.endpoints.PlayerData(c.creds.Region), c.creds.UserID)
	var out entitlementsResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, fmt.Errorf("get entitlements: %w", err)
	}
	return categorize(out.EntitlementsByTypes, c.log), nil
}

func (c *Client) GetPregamePlayer(ctx context.Context) (*PregamePlayer, error) {
	url := fmt.Sprintf("%s/pregame/v1/players/%s", c.endpoints.Party(c.creds.Region, c.creds.Shard), c.creds.UserID)
	var out PregamePlayer
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, fmt.Errorf("get pregame player: %w", err)
	}
	return &out, nil
}

func (c *Client) GetPregameMatch(ctx context.Context, matchID string) (*PregameMatch, error) {
	url := fmt.Sprintf("%s/pregame/v1/matches/%s", c.endpoints.Party(c.creds.Region, c.creds.Shard), matchID)
	var out PregameMatch
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, fmt.Errorf("get pregame match: %w", err)
	}
	return &out, nil
}

// GetParty is the lightweight call used to probe which shard serves a player.
func (c *Client) GetParty(ctx context.Context) (*Party, error) {
	url := fmt.Sprintf("%s/parties/v1/players/%s", c.endpoints.Party(c.creds.Region, c.creds.Shard), c.creds.UserID)
	var out Party
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
