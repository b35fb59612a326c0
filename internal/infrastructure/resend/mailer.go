package resend

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

// DefaultEndpoint is the public Resend API base URL.
const DefaultEndpoint = "https://api.resend.com"

const errorBodyLimit = 1 << 16

// Config holds the Resend credentials.
type Config struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// Mailer sends transactional email through the Resend REST API.
type Mailer struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewMailer builds a Mailer. An empty API key is accepted; every Send then
// fails with domain.ErrConfigMissing.
func NewMailer(cfg Config) *Mailer {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Mailer{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: endpoint,
		client:   client,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send posts msg to the /emails endpoint.
func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	if m.apiKey == "" {
		return fmt.Errorf("resend: api key: %w", domain.ErrConfigMissing)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("resend: recipient: %w", domain.ErrConfigMissing)
	}

	body, err := json.Marshal(sendRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		upstream := &domain.UpstreamError{Service: "resend", Status: res.StatusCode, Body: strings.TrimSpace(string(raw))}
		var decoded errorResponse
		if json.Unmarshal(raw, &decoded) == nil {
			upstream.Code = decoded.Name
		}
		return upstream
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
