package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	sim "github.com/carrier-sim/carrier-sim/sim"
)

// Shipper geography CSV column names, matching the original data file.
const (
	geoColVolumeShare   = "Shipper Volume_share"
	geoColDepotDistance = "Distance to Depot"
	geoColShipperID     = "Shipper ID"
)

// LoadShipperGeography reads the shipper geography table from a CSV file with
// a "Shipper Volume_share" and a "Distance to Depot" column. An optional
// "Shipper ID" column is carried through; other columns are ignored.
func LoadShipperGeography(path string) (sim.GeographyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shipper geography: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("shipper geography: read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	shareIdx, ok := index[geoColVolumeShare]
	if !ok {
		return nil, fmt.Errorf("shipper geography: %s has no %q column", path, geoColVolumeShare)
	}
	distIdx, ok := index[geoColDepotDistance]
	if !ok {
		return nil, fmt.Errorf("shipper geography: %s has no %q column", path, geoColDepotDistance)
	}
	idIdx, hasID := index[geoColShipperID]

	var geo sim.GeographyTable
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("shipper geography: %s line %d: %w", path, line, err)
		}
		share, err := strconv.ParseFloat(strings.TrimSpace(record[shareIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("shipper geography: %s line %d: volume share: %w", path, line, err)
		}
		dist, err := strconv.ParseFloat(strings.TrimSpace(record[distIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("shipper geography: %s line %d: depot distance: %w", path, line, err)
		}
		site := sim.ShipperSite{VolumeShare: share, DepotDistance: dist}
		if hasID && idIdx < len(record) {
			site.ID = strings.TrimSpace(record[idIdx])
		}
		geo = append(geo, site)
	}

	if err := geo.Validate(); err != nil {
		return nil, fmt.Errorf("shipper geography: %s: %w", path, err)
	}
	return geo, nil
}
