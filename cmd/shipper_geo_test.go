package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShipperGeography(t *testing.T) {
	path := writeTempFile(t, "shippers.csv",
		"Shipper ID,Shipper Volume_share,Distance to Depot\n"+
			"S1,0.5,10\n"+
			"S2,0.3,20\n"+
			"S3,0.2,6\n")

	geo, err := LoadShipperGeography(path)
	require.NoError(t, err)
	require.Len(t, geo, 3)

	assert.Equal(t, "S1", geo[0].ID)
	assert.Equal(t, 0.5, geo[0].VolumeShare)
	assert.Equal(t, 20.0, geo[1].DepotDistance)
	assert.InDelta(t, 12.0, geo.MeanDepotDistance(), 1e-9)
}

func TestLoadShipperGeography_IDColumnOptional(t *testing.T) {
	path := writeTempFile(t, "shippers.csv",
		"Shipper Volume_share,Distance to Depot,Region\n"+
			"0.6,12,north\n"+
			"0.4,8,south\n")

	geo, err := LoadShipperGeography(path)
	require.NoError(t, err)
	require.Len(t, geo, 2)
	assert.Empty(t, geo[0].ID)
	assert.Equal(t, 8.0, geo[1].DepotDistance)
}

func TestLoadShipperGeography_MissingColumn(t *testing.T) {
	path := writeTempFile(t, "shippers.csv",
		"Shipper ID,Distance to Depot\nS1,10\n")

	_, err := LoadShipperGeography(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Shipper Volume_share")
}

func TestLoadShipperGeography_BadNumber(t *testing.T) {
	path := writeTempFile(t, "shippers.csv",
		"Shipper Volume_share,Distance to Depot\n"+
			"lots,10\n")

	_, err := LoadShipperGeography(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadShipperGeography_MissingFile(t *testing.T) {
	_, err := LoadShipperGeography(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
