package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultEndpoint = "https://api.onesignal.com/notifications"

// OneSignalNotifier sends a single push notification to all subscribed
// devices. Callers treat it as fire-and-forget: failures are theirs to log,
// never to retry.
type OneSignalNotifier struct {
	client   *http.Client
	endpoint string
	appID    string
	apiKey   string
}

type notificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	ExternalID       string            `json:"external_id,omitempty"`
}

func NewOneSignalNotifier(appID, apiKey, endpoint string) *OneSignalNotifier {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &OneSignalNotifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		appID:    appID,
		apiKey:   apiKey,
	}
}

// Send posts one notification with recipients = all. The response body is not
// consulted beyond the status code; each dispatch carries its own external id.
func (n *OneSignalNotifier) Send(ctx context.Context, title, message string) error {
	body, err := json.Marshal(notificationRequest{
		AppID:            n.appID,
		IncludedSegments: []string{"All"},
		Headings:         map[string]string{"en": title},
		Contents:         map[string]string{"en": message},
		ExternalID:       uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push service returned %s", resp.Status)
	}
	return nil
}
