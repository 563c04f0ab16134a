package sim

import "math"

// epsilon floors denominators (vehicle capacity, operating hours) so a
// misconfigured near-zero value bounds the result instead of producing
// Inf or NaN.
const epsilon = 1e-9

// routeDensityConstant is the coefficient of the square-root term in the
// two-term continuous-approximation tour length model.
const routeDensityConstant = 0.57

// TierDemand holds one quantity per delivery-speed tier.
type TierDemand struct {
	Standard float64
	Next     float64
	Same     float64
}

// Total returns the sum across tiers.
func (t TierDemand) Total() float64 {
	return t.Standard + t.Next + t.Same
}

// DemandBreakdown decomposes daily demand by tier and vehicle mode.
//
// Attraction is the demand the carrier wins, before failed-delivery retries.
// The Delivery* quantities are the delivery-leg workloads inflated by the
// failed-delivery factor. DeliveryBike is sized from total tier attraction
// (not the van mode split) times the non-CBD delivery fraction; it is zero
// unless the microhub lever is on.
type DemandBreakdown struct {
	Attraction       TierDemand
	DeliveryDiesel   TierDemand
	DeliveryElectric TierDemand
	DeliveryBike     TierDemand
}

// ModeTotals holds one value per vehicle mode.
type ModeTotals struct {
	Diesel   float64
	Electric float64
	Bike     float64
}

// FleetBreakdown holds the whole-vehicle fleet sizes per mode and leg.
// Collection legs are van-only; the bike serves only the microhub
// final-mile delivery leg.
type FleetBreakdown struct {
	CollectionDiesel   int
	CollectionElectric int
	DeliveryDiesel     int
	DeliveryElectric   int
	DeliveryBike       int
}

// DailyOutcome is the full output of one simulated day of operation.
type DailyOutcome struct {
	ShipperProbability   float64
	RecipientProbability float64

	Demand   float64 // daily attracted demand (parcels)
	Revenue  float64
	Cost     float64
	Emission float64 // external-cost proxy over distance
	Profit   float64

	Demands DemandBreakdown
	VKT     ModeTotals // vehicle-kilometers traveled per mode, all legs
	Hours   ModeTotals // operating hours per mode, all legs
	Fleet   FleetBreakdown
}

// SimulateRound computes one day of carrier operation for the given sanitized
// levers, scenario environment and acceptance probabilities.
//
// Pure function: no I/O, no randomness, identical inputs yield identical
// outputs. Revenue depends on the delivery-speed tier only; cost and emission
// depend on the vehicle-mode split. That asymmetry is intended: pricing is
// tier-based while operations are mode-based.
func SimulateRound(in RoundInput, env *ScenarioEnvironment, shipperProb, recipientProb float64) DailyOutcome {
	dieselShare := in.DieselShare / 100.0
	electricShare := in.ElectricShare / 100.0
	hub := float64(in.Microhub)
	fail := env.FailedDeliveryRate
	r := env.MeanDepotDistance
	ns := float64(env.ShipperCount)
	eVol := env.ExpectedParcelVolume

	// Demand attraction, split by delivery-speed tier.
	attraction := env.Deliveries * recipientProb * shipperProb
	tiers := TierDemand{
		Standard: attraction * env.ShareStandard,
		Next:     attraction * env.ShareNextDay,
		Same:     attraction * env.ShareSameDay,
	}

	// Delivery-leg demand, inflated by failed-delivery retries. The bike leg
	// takes total tier attraction times the non-CBD delivery fraction.
	nonCBDFraction := env.NonCBDDeliveries / maxf(epsilon, env.Deliveries)
	demands := DemandBreakdown{
		Attraction: tiers,
		DeliveryDiesel: TierDemand{
			Standard: (1 + fail) * tiers.Standard * dieselShare,
			Next:     (1 + fail) * tiers.Next * dieselShare,
			Same:     (1 + fail) * tiers.Same * dieselShare,
		},
		DeliveryElectric: TierDemand{
			Standard: (1 + fail) * tiers.Standard * electricShare,
			Next:     (1 + fail) * tiers.Next * electricShare,
			Same:     (1 + fail) * tiers.Same * electricShare,
		},
		DeliveryBike: TierDemand{
			Standard: (1 + fail) * tiers.Standard * hub * nonCBDFraction,
			Next:     (1 + fail) * tiers.Next * hub * nonCBDFraction,
			Same:     (1 + fail) * tiers.Same * hub * nonCBDFraction,
		},
	}

	// Revenue: weighted per-parcel fee, tier uplifts on next/same day.
	weightedFee := in.FeeSmall*env.SmallParcelFrequency +
		in.FeeMedium*env.MediumParcelFrequency +
		in.FeeLarge*env.LargeParcelFrequency
	revenue := tiers.Standard*weightedFee +
		tiers.Next*weightedFee*(1+in.NextDayIncrease) +
		tiers.Same*weightedFee*(1+in.SameDayIncrease)

	// Collection leg (depot pickup tours over the full service area).
	vktCollectionDiesel := 2*r*eVol*(attraction*dieselShare)/maxf(epsilon, env.DieselVanCap) +
		routeDensityConstant*math.Sqrt(ns*env.TotalArea)
	vktCollectionElectric := 2*r*eVol*(attraction*electricShare)/maxf(epsilon, env.ElectricVanCap) +
		routeDensityConstant*math.Sqrt(ns*env.TotalArea)

	timeCollectionDiesel := vktCollectionDiesel/env.DieselVanSpeed +
		2*env.LoadUnloadTime*(attraction*dieselShare)
	timeCollectionElectric := vktCollectionElectric/env.ElectricVanSpeed +
		2*env.LoadUnloadTime*(attraction*electricShare)

	fleetCollectionDiesel := fleetFor(timeCollectionDiesel, env.DailyOperatingHours)
	fleetCollectionElectric := fleetFor(timeCollectionElectric, env.DailyOperatingHours)

	// Local delivery legs. With the microhub on, the CDD share of deliveries
	// leaves the van tours and the vans gain a line-haul leg to the hub.
	vanLocalFactor := (1 - hub*env.CDDShare) * (1 + fail)
	localArea := env.TotalArea - env.CBDMicrohubArea

	vktLocalDiesel := 2*r*eVol*vanLocalFactor*(attraction*dieselShare)/maxf(epsilon, env.DieselVanCap) +
		routeDensityConstant*math.Sqrt(vanLocalFactor*attraction*dieselShare*localArea)
	vktLocalElectric := 2*r*eVol*vanLocalFactor*(attraction*electricShare)/maxf(epsilon, env.ElectricVanCap) +
		routeDensityConstant*math.Sqrt(vanLocalFactor*attraction*electricShare*localArea)

	hubFactor := hub * env.CDDShare * (1 + fail)
	vktLineHaulDiesel := 2 * r * eVol * hubFactor * (attraction * dieselShare) / maxf(epsilon, env.DieselVanCap)
	vktLineHaulElectric := 2 * r * eVol * hubFactor * (attraction * electricShare) / maxf(epsilon, env.ElectricVanCap)

	// Cargo-bike final mile inside the microhub CBD area, sized from total
	// attraction rather than the van mode split.
	vktBike := 2*r*eVol*hubFactor*attraction/maxf(epsilon, env.CargoBikeCap) +
		routeDensityConstant*math.Sqrt(hubFactor*attraction*env.CBDMicrohubArea)

	timeLocalDiesel := vktLocalDiesel/env.DieselVanSpeed +
		2*env.LoadUnloadTime*vanLocalFactor*(attraction*dieselShare)
	timeLocalElectric := vktLocalElectric/env.ElectricVanSpeed +
		2*env.LoadUnloadTime*vanLocalFactor*(attraction*electricShare)
	timeLineHaulDiesel := vktLineHaulDiesel/env.DieselVanSpeed +
		2*env.LoadUnloadTime*hubFactor*(attraction*dieselShare)
	timeLineHaulElectric := vktLineHaulElectric/env.ElectricVanSpeed +
		2*env.LoadUnloadTime*hubFactor*(attraction*electricShare)
	timeBike := vktBike/env.CargoBikeSpeed +
		2*env.LoadUnloadTime*hubFactor*attraction

	fleetDeliveryDiesel := fleetFor(timeLocalDiesel+timeLineHaulDiesel, env.DailyOperatingHours)
	fleetDeliveryElectric := fleetFor(timeLocalElectric+timeLineHaulElectric, env.DailyOperatingHours)
	fleetBike := fleetFor(timeBike, env.DailyOperatingHours)

	hoursDiesel := timeCollectionDiesel + timeLocalDiesel + timeLineHaulDiesel
	hoursElectric := timeCollectionElectric + timeLocalElectric + timeLineHaulElectric
	vktDiesel := vktCollectionDiesel + vktLocalDiesel + vktLineHaulDiesel
	vktElectric := vktCollectionElectric + vktLocalElectric + vktLineHaulElectric

	cost := env.DieselVanOperationalCost*hoursDiesel +
		env.ElectricVanOperationalCost*hoursElectric +
		env.BikeOperationalCost*timeBike +
		env.DieselVanDailyFixedCost*float64(fleetCollectionDiesel+fleetDeliveryDiesel) +
		env.ElectricVanDailyFixedCost*float64(fleetCollectionElectric+fleetDeliveryElectric) +
		env.BikeDailyFixedCost*float64(fleetBike)

	emission := env.DieselVanExternalCost*vktDiesel +
		env.ElectricVanExternalCost*vktElectric +
		env.BikeExternalCost*vktBike

	return DailyOutcome{
		ShipperProbability:   shipperProb,
		RecipientProbability: recipientProb,

		Demand:   attraction,
		Revenue:  revenue,
		Cost:     cost,
		Emission: emission,
		Profit:   revenue - cost,

		Demands: demands,
		VKT:     ModeTotals{Diesel: vktDiesel, Electric: vktElectric, Bike: vktBike},
		Hours:   ModeTotals{Diesel: hoursDiesel, Electric: hoursElectric, Bike: timeBike},
		Fleet: FleetBreakdown{
			CollectionDiesel:   fleetCollectionDiesel,
			CollectionElectric: fleetCollectionElectric,
			DeliveryDiesel:     fleetDeliveryDiesel,
			DeliveryElectric:   fleetDeliveryElectric,
			DeliveryBike:       fleetBike,
		},
	}
}

// fleetFor sizes a fleet as the ceiling of leg time over daily operating
// hours: fractional utilization still requires a whole vehicle.
func fleetFor(legHours, operatingHours float64) int {
	return int(math.Ceil(legHours / maxf(epsilon, operatingHours)))
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
