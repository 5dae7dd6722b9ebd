package deliver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/errors"
)

// webhookPayload is the JSON body posted to generic webhook endpoints.
type webhookPayload struct {
	ID           string                 `json:"id"`
	NodeID       string                 `json:"node_id"`
	Type         alert.Type             `json:"alert_type"`
	Severity     alert.Severity         `json:"severity"`
	Message      string                 `json:"message"`
	Timestamp    time.Time              `json:"timestamp"`
	Acknowledged bool                   `json:"acknowledged"`
	Resolved     bool                   `json:"resolved"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// sendWebhook posts the full alert record to the configured endpoint. Any
// non-2xx response is a delivery failure.
func (d *Dispatcher) sendWebhook(a alert.Alert, url string) error {
	payload := webhookPayload{
		ID:           a.ID,
		NodeID:       a.NodeID,
		Type:         a.Type,
		Severity:     a.Severity,
		Message:      a.Message,
		Timestamp:    a.Timestamp,
		Acknowledged: a.Acknowledged,
		Resolved:     a.Resolved,
		Metadata:     a.Metadata,
	}
	return d.postJSON(url, payload)
}

// postJSON marshals v and posts it, treating any non-2xx status as failure.
func (d *Dispatcher) postJSON(url string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDeliver, "Failed to encode alert payload", "")
	}

	resp, err := d.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDeliver,
			"Failed to post alert to "+url,
			"Check the endpoint URL and network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.ErrDeliver,
			fmt.Sprintf("Alert endpoint returned %d", resp.StatusCode),
			"Check the receiving service at "+url)
	}
	return nil
}
