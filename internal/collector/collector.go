// Package collector gathers resource-usage metrics from a node over SSH.
// One batched read-only command is executed per collection; any connection
// or parse failure yields a typed error and no sample. Collectors are
// stateless and safe to use concurrently for different nodes.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/pkg/sshutil"
)

// Config holds collection settings.
type Config struct {
	// Timeout bounds the whole collection (dial + exec + parse).
	Timeout time.Duration
}

// DialFunc opens an SSH connection to a node. Swappable in tests.
type DialFunc func(node inventory.NodeRef, timeout time.Duration) (sshutil.SSHClient, error)

// Collector executes the metrics command against nodes.
type Collector struct {
	dial DialFunc
}

// New creates a Collector that dials nodes with their inventory credentials.
func New() *Collector {
	return &Collector{dial: dialNode}
}

// NewWithDialer creates a Collector with a custom dial function.
func NewWithDialer(dial DialFunc) *Collector {
	return &Collector{dial: dial}
}

// Collect opens a remote command channel to the node, runs the batched
// metrics command, and parses the output into a sample. On any failure it
// returns a COLLECT error and no sample.
func (c *Collector) Collect(ctx context.Context, node inventory.NodeRef, cfg Config) (ResourceMetrics, error) {
	if node.Address == "" {
		return ResourceMetrics{}, errors.New(errors.ErrCollect,
			fmt.Sprintf("No address known for node '%s'", node.ID),
			"Set the node's address in the inventory")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	client, err := c.dial(node, cfg.Timeout)
	if err != nil {
		return ResourceMetrics{}, errors.WrapWithCode(err, errors.ErrCollect,
			fmt.Sprintf("Couldn't open command channel to '%s'", node.ID),
			"Check the node's address and SSH credentials in the inventory")
	}
	defer client.Close()

	stdout, stderr, exitCode, err := client.ExecContext(ctx, MetricsCommand)
	if err != nil {
		return ResourceMetrics{}, errors.WrapWithCode(err, errors.ErrCollect,
			fmt.Sprintf("Metrics command failed on '%s'", node.ID),
			"Check that top, free, and df are available on the node")
	}
	if exitCode != 0 {
		return ResourceMetrics{}, errors.New(errors.ErrCollect,
			fmt.Sprintf("Metrics command exited %d on '%s': %s", exitCode, node.ID, firstLine(stderr)),
			"Check that top, free, and df are available on the node")
	}

	metrics, err := parseOutput(node.ID, string(stdout))
	if err != nil {
		return ResourceMetrics{}, err
	}

	return metrics, nil
}

// dialNode opens the real SSH connection using the node's credentials.
func dialNode(node inventory.NodeRef, timeout time.Duration) (sshutil.SSHClient, error) {
	return sshutil.DialSpecced(sshutil.DialSpec{
		Host:    node.Address,
		User:    node.User,
		KeyPath: node.KeyPath,
		Port:    node.ServicePort,
	}, timeout)
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			out = out[:i]
			break
		}
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return string(out)
}
