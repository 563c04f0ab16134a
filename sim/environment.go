package sim

import (
	"fmt"
)

// Fixed scenario constants. Areas are km2, capacities m3, speeds km/h,
// times hours, costs AUD. Fixed daily costs amortize purchase price minus
// residual value over the vehicle's service life.
const (
	defaultTotalArea       = 900.0
	defaultCBDMicrohubArea = 25.0

	dieselVanCap   = 10.0
	electricVanCap = 8.0
	cargoBikeCap   = 0.5

	dieselVanSpeed   = 55.0
	electricVanSpeed = 55.0
	cargoBikeSpeed   = 20.0

	loadUnloadTime      = 0.02
	dailyOperatingHours = 8.0

	smallParcelVolume  = 0.02
	mediumParcelVolume = 0.05
	largeParcelVolume  = 0.145

	smallParcelFrequency  = 0.53
	mediumParcelFrequency = 0.30
	largeParcelFrequency  = 0.17

	dieselVanOperationalCost   = 50.0
	electricVanOperationalCost = 45.0
	bikeOperationalCost        = 25.0

	dieselVanExternalCost   = 1.0
	electricVanExternalCost = 0.1
	bikeExternalCost        = 0.0

	dieselVanDailyFixedCost   = (50000.0 - 10000.0) / 10.0 / 365.0
	electricVanDailyFixedCost = (70000.0 - 15000.0) / 10.0 / 365.0
	bikeDailyFixedCost        = (10000.0 - 2000.0) / 5.0 / 365.0
)

// Ranges for the seeded draws.
const (
	cbdDensityLo, cbdDensityHi       = 35.0, 43.0
	nonCBDDensityLo, nonCBDDensityHi = 4.0, 8.0
	failedRateLo, failedRateHi       = 0.45, 0.58

	shareStandardBase, shareStandardJitter = 0.7, 0.15
	shareNextDayBase, shareNextDayJitter   = 0.2, 0.10
	shareSameDayBase, shareSameDayJitter   = 0.1, 0.05
)

// EnvironmentConfig groups the caller-tunable geometry of a scenario.
type EnvironmentConfig struct {
	TotalArea       float64 // full service area (km2), must be > 0
	CBDMicrohubArea float64 // CBD sub-area reserved for microhub operation, must be > 0 and < TotalArea
}

// DefaultEnvironmentConfig returns the standard scenario geometry.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{
		TotalArea:       defaultTotalArea,
		CBDMicrohubArea: defaultCBDMicrohubArea,
	}
}

// ScenarioEnvironment holds every scenario constant the round simulator reads.
// It is built once per session by NewEnvironment and never mutated afterwards.
type ScenarioEnvironment struct {
	TotalArea       float64
	CBDMicrohubArea float64

	CBDDeliveryDensity    float64 // deliveries per km2 inside the CBD
	NonCBDDeliveryDensity float64 // deliveries per km2 outside the CBD
	CBDDeliveries         float64
	NonCBDDeliveries      float64
	Deliveries            float64 // total daily deliveries in the service area
	CDDShare              float64 // CBD deliveries / total deliveries
	FailedDeliveryRate    float64

	DieselVanCap   float64
	ElectricVanCap float64
	CargoBikeCap   float64

	DieselVanSpeed   float64
	ElectricVanSpeed float64
	CargoBikeSpeed   float64

	LoadUnloadTime      float64 // per-stop loading/unloading time (hours)
	DailyOperatingHours float64 // per-vehicle operating hours per day

	SmallParcelFrequency  float64
	MediumParcelFrequency float64
	LargeParcelFrequency  float64

	DieselVanOperationalCost   float64 // AUD per operating hour
	ElectricVanOperationalCost float64
	BikeOperationalCost        float64

	DieselVanExternalCost   float64 // AUD per km, emission proxy basis
	ElectricVanExternalCost float64
	BikeExternalCost        float64

	DieselVanDailyFixedCost   float64
	ElectricVanDailyFixedCost float64
	BikeDailyFixedCost        float64

	ShareStandard float64 // demand-segment shares, sum to 1
	ShareNextDay  float64
	ShareSameDay  float64

	MeanDepotDistance    float64 // mean shipper-to-depot distance (km)
	ShipperCount         int
	ExpectedParcelVolume float64 // frequency-weighted parcel volume (m3)
}

// NewEnvironment builds a ScenarioEnvironment from a seed, a scenario
// geometry config and a shipper geography table. It is a pure function of its
// arguments: the same (seed, cfg, geo) always yields the same environment.
//
// The returned GeographyTable is a copy of geo with the derived per-shipper
// DailyVolume column filled in; the caller's table is never mutated.
func NewEnvironment(seed int64, cfg EnvironmentConfig, geo GeographyTable) (*ScenarioEnvironment, GeographyTable, error) {
	if cfg.TotalArea <= 0 {
		return nil, nil, fmt.Errorf("environment config: total area must be positive, got %v", cfg.TotalArea)
	}
	if cfg.CBDMicrohubArea <= 0 || cfg.CBDMicrohubArea >= cfg.TotalArea {
		return nil, nil, fmt.Errorf("environment config: CBD microhub area must be in (0, total area), got %v", cfg.CBDMicrohubArea)
	}
	if err := geo.Validate(); err != nil {
		return nil, nil, fmt.Errorf("environment config: %w", err)
	}

	rng := NewPartitionedRNG(NewScenarioKey(seed))

	density := rng.ForSubsystem(SubsystemDensity)
	cbdDensity := uniform(density, cbdDensityLo, cbdDensityHi)
	nonCBDDensity := uniform(density, nonCBDDensityLo, nonCBDDensityHi)

	cbdDeliveries := cbdDensity * cfg.CBDMicrohubArea
	nonCBDDeliveries := (cfg.TotalArea - cfg.CBDMicrohubArea) * nonCBDDensity
	deliveries := cbdDeliveries + nonCBDDeliveries

	failedRate := uniform(rng.ForSubsystem(SubsystemFailures), failedRateLo, failedRateHi)

	segments := rng.ForSubsystem(SubsystemSegments)
	shareStandard := shareStandardBase + uniform(segments, -shareStandardJitter, shareStandardJitter)
	shareNextDay := shareNextDayBase + uniform(segments, -shareNextDayJitter, shareNextDayJitter)
	shareSameDay := shareSameDayBase + uniform(segments, -shareSameDayJitter, shareSameDayJitter)
	total := shareStandard + shareNextDay + shareSameDay
	shareStandard /= total
	shareNextDay /= total
	shareSameDay /= total

	decorated := geo.withDailyVolumes(deliveries)

	env := &ScenarioEnvironment{
		TotalArea:       cfg.TotalArea,
		CBDMicrohubArea: cfg.CBDMicrohubArea,

		CBDDeliveryDensity:    cbdDensity,
		NonCBDDeliveryDensity: nonCBDDensity,
		CBDDeliveries:         cbdDeliveries,
		NonCBDDeliveries:      nonCBDDeliveries,
		Deliveries:            deliveries,
		CDDShare:              cbdDeliveries / maxf(epsilon, deliveries),
		FailedDeliveryRate:    failedRate,

		DieselVanCap:   dieselVanCap,
		ElectricVanCap: electricVanCap,
		CargoBikeCap:   cargoBikeCap,

		DieselVanSpeed:   dieselVanSpeed,
		ElectricVanSpeed: electricVanSpeed,
		CargoBikeSpeed:   cargoBikeSpeed,

		LoadUnloadTime:      loadUnloadTime,
		DailyOperatingHours: dailyOperatingHours,

		SmallParcelFrequency:  smallParcelFrequency,
		MediumParcelFrequency: mediumParcelFrequency,
		LargeParcelFrequency:  largeParcelFrequency,

		DieselVanOperationalCost:   dieselVanOperationalCost,
		ElectricVanOperationalCost: electricVanOperationalCost,
		BikeOperationalCost:        bikeOperationalCost,

		DieselVanExternalCost:   dieselVanExternalCost,
		ElectricVanExternalCost: electricVanExternalCost,
		BikeExternalCost:        bikeExternalCost,

		DieselVanDailyFixedCost:   dieselVanDailyFixedCost,
		ElectricVanDailyFixedCost: electricVanDailyFixedCost,
		BikeDailyFixedCost:        bikeDailyFixedCost,

		ShareStandard: shareStandard,
		ShareNextDay:  shareNextDay,
		ShareSameDay:  shareSameDay,

		MeanDepotDistance: decorated.MeanDepotDistance(),
		ShipperCount:      len(decorated),
		ExpectedParcelVolume: smallParcelVolume*smallParcelFrequency +
			mediumParcelVolume*mediumParcelFrequency +
			largeParcelVolume*largeParcelFrequency,
	}
	return env, decorated, nil
}
