package deliver

import (
	"strings"

	"github.com/openmesh/xmon/internal/alert"
)

// sendEmail is a placeholder: no SMTP transport is configured yet, so the
// attempt is recorded in the log and treated as handled.
//
// TODO: wire an SMTP transport once the fleet has a relay host to send
// through; the recipient list is already carried in the config.
func (d *Dispatcher) sendEmail(a alert.Alert, recipients []string) error {
	d.log.Info("email alert %s for %s to %s (no SMTP transport configured)",
		a.ID, a.NodeID, strings.Join(recipients, ", "))
	return nil
}
