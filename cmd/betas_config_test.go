package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/carrier-sim/carrier-sim/sim"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBetas(t *testing.T) {
	path := writeTempFile(t, "betas.yaml", `
version: "1"
shippers:
  ASC_accept: 1.5
  B_Delivery_fee_small: -0.12
recipients:
  ASC_accept: 0.8
  B_Tracking: 0.3
`)

	shippers, recipients, err := LoadBetas(path)
	require.NoError(t, err)

	assert.Equal(t, 1.5, shippers.Weight(sim.InterceptCoefficient))
	assert.Equal(t, -0.12, shippers.Weight("B_Delivery_fee_small"))
	assert.Equal(t, 0.8, recipients.Weight(sim.InterceptCoefficient))
	assert.Equal(t, 0.3, recipients.Weight("B_Tracking"))
	// Absent keys weigh zero.
	assert.Equal(t, 0.0, shippers.Weight("B_Signature"))
}

func TestLoadBetas_MissingFile(t *testing.T) {
	_, _, err := LoadBetas(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBetas_EmptyTablesRejected(t *testing.T) {
	path := writeTempFile(t, "betas.yaml", `
version: "1"
shippers:
  ASC_accept: 1.5
recipients: {}
`)
	_, _, err := LoadBetas(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty")
}

func TestLoadBetas_MalformedYAML(t *testing.T) {
	path := writeTempFile(t, "betas.yaml", "shippers: [not, a, map\n")
	_, _, err := LoadBetas(path)
	assert.Error(t, err)
}
