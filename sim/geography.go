package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ShipperSite represents one shipper in the service area geography:
// its share of total parcel volume and its road distance to the depot.
type ShipperSite struct {
	ID            string  // optional identifier from the source table
	VolumeShare   float64 // fraction of total daily deliveries originating here
	DepotDistance float64 // km to the carrier depot

	// DailyVolume is derived during environment construction as
	// total deliveries x VolumeShare. Zero until then.
	DailyVolume float64
}

// GeographyTable is the set of shipper sites served by the carrier.
type GeographyTable []ShipperSite

// Validate checks the table is usable for environment construction.
func (g GeographyTable) Validate() error {
	if len(g) == 0 {
		return fmt.Errorf("geography table is empty")
	}
	for i, s := range g {
		if s.VolumeShare < 0 {
			return fmt.Errorf("shipper %d: negative volume share %v", i, s.VolumeShare)
		}
		if s.DepotDistance < 0 {
			return fmt.Errorf("shipper %d: negative depot distance %v", i, s.DepotDistance)
		}
	}
	return nil
}

// MeanDepotDistance returns the average shipper-to-depot distance.
func (g GeographyTable) MeanDepotDistance() float64 {
	if len(g) == 0 {
		return 0
	}
	dists := make([]float64, len(g))
	for i, s := range g {
		dists[i] = s.DepotDistance
	}
	return stat.Mean(dists, nil)
}

// withDailyVolumes returns a copy of the table with DailyVolume filled in
// from the given total delivery count. The receiver is left untouched so
// callers keep ownership of their table.
func (g GeographyTable) withDailyVolumes(totalDeliveries float64) GeographyTable {
	out := make(GeographyTable, len(g))
	copy(out, g)
	for i := range out {
		out[i].DailyVolume = totalDeliveries * out[i].VolumeShare
	}
	return out
}
