// Package inventory supplies node identity and connection parameters to the
// monitoring engine. The engine never discovers nodes itself; callers pass a
// read-only sequence of NodeRef values on every cycle.
package inventory

import (
	"os"
	"path/filepath"

	"github.com/openmesh/xmon/internal/errors"
	"gopkg.in/yaml.v3"
)

// NodesFileName is the default inventory file name.
const NodesFileName = "nodes.yaml"

// DefaultPath returns the default inventory location (~/.xmon/nodes.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".xmon", NodesFileName)
}

// NodeRef identifies a single xNode and how to reach it.
type NodeRef struct {
	// ID is the stable node identifier used to key history and alerts.
	ID string `yaml:"id"`

	// Address is the network address (hostname or IP) of the node.
	Address string `yaml:"address"`

	// User is the SSH user for metrics collection. Defaults to root.
	User string `yaml:"user"`

	// KeyPath is an optional SSH private key path for metrics collection.
	KeyPath string `yaml:"key_path"`

	// ServicePort is the TCP port checked by the service probe. Defaults to 22.
	ServicePort int `yaml:"service_port"`

	// HasHTTPService enables the HTTP liveness probe for this node.
	HasHTTPService bool `yaml:"has_http_service"`
}

// nodesFile is the on-disk shape of the inventory file.
type nodesFile struct {
	Nodes []NodeRef `yaml:"nodes"`
}

// Load reads NodeRefs from a YAML inventory file.
func Load(path string) ([]NodeRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read inventory file",
			"Check that "+path+" exists and is readable")
	}

	var f nodesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid inventory file format",
			"Check the YAML syntax in "+path)
	}

	for i := range f.Nodes {
		if f.Nodes[i].ID == "" {
			return nil, errors.New(errors.ErrConfig,
				"Inventory entry missing id",
				"Every node in "+path+" needs an 'id' field")
		}
		applyDefaults(&f.Nodes[i])
	}

	return f.Nodes, nil
}

// Save writes NodeRefs to a YAML inventory file.
func Save(nodes []NodeRef, path string) error {
	data, err := yaml.Marshal(nodesFile{Nodes: nodes})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize inventory", "")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create inventory directory",
			"Check permissions on "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write inventory file",
			"Check permissions on "+path)
	}
	return nil
}

// Find returns the node with the given id, if present.
func Find(nodes []NodeRef, id string) (NodeRef, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeRef{}, false
}

func applyDefaults(n *NodeRef) {
	if n.User == "" {
		n.User = "root"
	}
	if n.ServicePort == 0 {
		n.ServicePort = 22
	}
}
