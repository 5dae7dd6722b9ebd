package cli

import (
	"github.com/openmesh/xmon/internal/dashboard"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/monitor"
)

// runDashboard hands control to the Bubble Tea program until the user quits,
// then persists whatever the refresh cycles recorded.
func runDashboard(system *monitor.System, nodes []inventory.NodeRef) error {
	if err := dashboard.Run(system, nodes); err != nil {
		return err
	}
	return system.Save()
}
