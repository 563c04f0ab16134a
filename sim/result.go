package sim

// Projection horizons in days. Daily outputs scale linearly onto each.
const (
	HorizonTwoMonthsDays = 60
	HorizonOneYearDays   = 365
	HorizonFiveYearsDays = 1825
)

// Horizon identifies one of the three fixed projection windows.
type Horizon int

const (
	HorizonTwoMonths Horizon = iota
	HorizonOneYear
	HorizonFiveYears
)

// Days returns the day count of the horizon.
func (h Horizon) Days() float64 {
	switch h {
	case HorizonTwoMonths:
		return HorizonTwoMonthsDays
	case HorizonFiveYears:
		return HorizonFiveYearsDays
	default:
		return HorizonOneYearDays
	}
}

// Label returns the horizon's column-name suffix ("two_months", "one_year",
// "five_year"), as used in the tabular export format.
func (h Horizon) Label() string {
	switch h {
	case HorizonTwoMonths:
		return "two_months"
	case HorizonFiveYears:
		return "five_year"
	default:
		return "one_year"
	}
}

// Horizons lists the three projection windows in ascending order.
var Horizons = []Horizon{HorizonTwoMonths, HorizonOneYear, HorizonFiveYears}

// HorizonTotals holds the five scaled outputs for one projection window.
type HorizonTotals struct {
	Revenue  float64
	Cost     float64
	Emission float64
	Profit   float64
	Demand   float64
}

// RoundResult is the flat, immutable record of one completed round: lever
// echoes, acceptance probabilities, daily totals and the three horizon-scaled
// projections. Results are appended to a caller-owned history keyed by
// increasing Round ID and never mutated afterwards.
type RoundResult struct {
	RoundID int

	Input RoundInput // sanitized levers echoed back

	ShipperProbability   float64
	RecipientProbability float64

	DailyRevenue  float64
	DailyCost     float64
	DailyEmission float64
	DailyProfit   float64
	DailyDemand   float64

	TwoMonths HorizonTotals
	OneYear   HorizonTotals
	FiveYears HorizonTotals
}

// AtHorizon returns the scaled totals for the given projection window.
func (r RoundResult) AtHorizon(h Horizon) HorizonTotals {
	switch h {
	case HorizonTwoMonths:
		return r.TwoMonths
	case HorizonFiveYears:
		return r.FiveYears
	default:
		return r.OneYear
	}
}

// AggregateRound scales a daily outcome across the three fixed horizons and
// assembles the flat RoundResult. Pure transformation: no branching beyond
// the fixed horizon list.
func AggregateRound(roundID int, in RoundInput, out DailyOutcome) RoundResult {
	scale := func(days float64) HorizonTotals {
		return HorizonTotals{
			Revenue:  out.Revenue * days,
			Cost:     out.Cost * days,
			Emission: out.Emission * days,
			Profit:   out.Profit * days,
			Demand:   out.Demand * days,
		}
	}
	return RoundResult{
		RoundID: roundID,
		Input:   in,

		ShipperProbability:   out.ShipperProbability,
		RecipientProbability: out.RecipientProbability,

		DailyRevenue:  out.Revenue,
		DailyCost:     out.Cost,
		DailyEmission: out.Emission,
		DailyProfit:   out.Profit,
		DailyDemand:   out.Demand,

		TwoMonths: scale(HorizonTwoMonthsDays),
		OneYear:   scale(HorizonOneYearDays),
		FiveYears: scale(HorizonFiveYearsDays),
	}
}
