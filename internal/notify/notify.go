// Package notify delivers best-effort report notifications. Delivery
// failures are never allowed to affect already-persisted scan results.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers a notification that a report is ready for an owner.
type Sender interface {
	Send(ctx context.Context, ownerID, reportID, location string) error
}

// WebhookSender posts a JSON payload to a configured webhook URL.
type WebhookSender struct {
	URL  string
	HTTP *http.Client
}

// NewWebhookSender returns a webhook sender with the given request timeout.
func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	return &WebhookSender{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	OwnerID          string `json:"owner_id"`
	ReportID         string `json:"report_id"`
	ArtifactLocation string `json:"artifact_location"`
}

// Send posts the report reference. Any non-2xx response is an error; the
// caller logs it and moves on.
func (s *WebhookSender) Send(ctx context.Context, ownerID, reportID, location string) error {
	body, err := json.Marshal(webhookPayload{OwnerID: ownerID, ReportID: reportID, ArtifactLocation: location})
	if err != nil {
		return fmt.Errorf("notify payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("notify send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify send: status %d", resp.StatusCode)
	}
	return nil
}
