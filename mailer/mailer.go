// Package mailer talks to the transactional email provider. Delivery is
// best-effort: the site never blocks a user-facing response on an email, and
// provider failures are logged, not surfaced.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Client posts messages to an HTTP email API (Resend-style JSON endpoint
// with a bearer key).
type Client struct {
	endpoint string
	apiKey   string
	from     string
	http     *http.Client
}

// New returns a Client for the given provider endpoint. An empty endpoint or
// key yields a disabled client whose sends are logged and dropped, which
// keeps local development free of provider credentials.
func New(endpoint, apiKey, from string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the client has provider credentials.
func (c *Client) Enabled() bool {
	return c.endpoint != "" && c.apiKey != ""
}

// Send delivers one message synchronously.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		log.Printf("mailer disabled, dropping email to %s (%s)", msg.To, msg.Subject)
		return nil
	}

	payload, err := json.Marshal(struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}{c.from, msg.To, msg.Subject, msg.HTML})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// SendAsync delivers a message on its own goroutine with its own deadline.
// Failures are logged and swallowed; the caller's request is never failed or
// delayed by the provider.
func (c *Client) SendAsync(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := c.Send(ctx, msg); err != nil {
			log.Printf("email to %s failed: %v", msg.To, err)
		}
	}()
}
