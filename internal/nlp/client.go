// Package nlp is a thin client for the external text-to-datetime service
// that turns spoken or free-form input ("tomorrow at 5pm") into a
// canonical instant plus pre-rendered display strings. The core never
// parses natural language itself.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ParsedDateTime is the external service's response. Display strings come
// back in both date-format and time-format variants so the caller can
// pick the one matching the user's settings.
type ParsedDateTime struct {
	Original   string    `json:"original"`
	ISO        time.Time `json:"iso"`
	DateStrDMY string    `json:"date_str_dmy"`
	DateStrMDY string    `json:"date_str_mdy"`
	TimeStr12  string    `json:"time_str_12"`
	TimeStr24  string    `json:"time_str_24"`
}

// Client calls the parse endpoint.
type Client struct {
	url    string
	client *http.Client
}

// NewClient returns a Client for the given endpoint URL. An empty URL
// yields a disabled client whose Parse always errors.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, client: &http.Client{Timeout: timeout}}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Parse sends text to the external service.
func (c *Client) Parse(ctx context.Context, text string) (ParsedDateTime, error) {
	if !c.Enabled() {
		return ParsedDateTime{}, fmt.Errorf("natural-language parsing is not configured")
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return ParsedDateTime{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return ParsedDateTime{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ParsedDateTime{}, fmt.Errorf("parse-datetime request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ParsedDateTime{}, fmt.Errorf("parse-datetime service returned %s", resp.Status)
	}
	var out ParsedDateTime
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ParsedDateTime{}, fmt.Errorf("parse-datetime decode: %w", err)
	}
	return out, nil
}
