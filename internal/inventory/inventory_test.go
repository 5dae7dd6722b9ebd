package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/errors"
)

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeInventory(t, `nodes:
  - id: worker-1
    address: 10.0.0.5
  - id: web-1
    address: 10.0.0.6
    user: deploy
    service_port: 8080
    has_http_service: true
`)

	nodes, err := Load(path)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "root", nodes[0].User)
	assert.Equal(t, 22, nodes[0].ServicePort)
	assert.False(t, nodes[0].HasHTTPService)

	assert.Equal(t, "deploy", nodes[1].User)
	assert.Equal(t, 8080, nodes[1].ServicePort)
	assert.True(t, nodes[1].HasHTTPService)
}

func TestLoadMissingID(t *testing.T) {
	path := writeInventory(t, "nodes:\n  - address: 10.0.0.5\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "missing id")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeInventory(t, "nodes: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "nodes.yaml")
	nodes := []NodeRef{
		{ID: "worker-1", Address: "10.0.0.5", User: "root", ServicePort: 22},
		{ID: "web-1", Address: "10.0.0.6", User: "deploy", ServicePort: 8080, HasHTTPService: true},
	}

	require.NoError(t, Save(nodes, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, nodes, loaded)
}

func TestFind(t *testing.T) {
	nodes := []NodeRef{{ID: "a"}, {ID: "b"}}

	n, ok := Find(nodes, "b")
	assert.True(t, ok)
	assert.Equal(t, "b", n.ID)

	_, ok = Find(nodes, "c")
	assert.False(t, ok)
}
