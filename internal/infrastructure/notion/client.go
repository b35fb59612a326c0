package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/orsayn/site-api/internal/contact/domain"
)

const (
	DefaultEndpoint = "https://api.notion.com"
	DefaultVersion  = "2022-06-28"

	errorBodyLimit = 1 << 16
)

// Config holds the Notion integration secrets.
type Config struct {
	APIKey     string
	DatabaseID string
	Endpoint   string
	Version    string
	HTTPClient *http.Client
}

// Client talks to the Notion REST API on behalf of one integration and
// one target database.
type Client struct {
	apiKey     string
	databaseID string
	endpoint   string
	version    string
	client     *http.Client
}

func NewClient(cfg Config) *Client {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		databaseID: strings.TrimSpace(cfg.DatabaseID),
		endpoint:   endpoint,
		version:    version,
		client:     client,
	}
}

// Configured reports whether both secrets are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.databaseID != ""
}

func (c *Client) checkConfig() error {
	if c.apiKey == "" {
		return fmt.Errorf("notion: api key: %w", domain.ErrConfigMissing)
	}
	if c.databaseID == "" {
		return fmt.Errorf("notion: database id: %w", domain.ErrConfigMissing)
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends a JSON request and decodes a JSON answer into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("notion: encode payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("notion: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notion: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		upstream := &domain.UpstreamError{Service: "notion", Status: res.StatusCode, Body: strings.TrimSpace(string(raw))}
		var decoded errorResponse
		if json.Unmarshal(raw, &decoded) == nil {
			upstream.Code = decoded.Code
		}
		return upstream
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("notion: decode response: %w", err)
	}
	return nil
}
