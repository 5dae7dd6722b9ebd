package deliver

import (
	"github.com/openmesh/xmon/internal/alert"
)

// Slack attachment colors per severity.
const (
	slackColorInfo     = "#36a64f"
	slackColorWarning  = "#ff9900"
	slackColorCritical = "#ff0000"
)

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields"`
	Ts     int64        `json:"ts"`
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

func slackColor(sev alert.Severity) string {
	switch sev {
	case alert.SeverityCritical:
		return slackColorCritical
	case alert.SeverityWarning:
		return slackColorWarning
	default:
		return slackColorInfo
	}
}

// sendSlack posts the alert as a colored attachment to a Slack incoming
// webhook.
func (d *Dispatcher) sendSlack(a alert.Alert, url string) error {
	payload := slackPayload{
		Attachments: []slackAttachment{{
			Color: slackColor(a.Severity),
			Title: "xNode Alert: " + a.ID,
			Text:  a.Message,
			Fields: []slackField{
				{Title: "Node", Value: a.NodeID, Short: true},
				{Title: "Type", Value: string(a.Type), Short: true},
				{Title: "Severity", Value: string(a.Severity), Short: true},
			},
			Ts: a.Timestamp.Unix(),
		}},
	}
	return d.postJSON(url, payload)
}
