package sim

import "math"

// ChoiceCoefficients is a sparse table of pre-estimated discrete-choice
// weights keyed by coefficient name (e.g. "B_Delivery_fee_small").
//
// The table is read-only for the lifetime of a session. Lookup of a name not
// present in the table yields a weight of exactly 0; this default-on-miss
// behaviour is part of the interface contract, so partially-estimated tables
// never cause an error, they just contribute no utility.
type ChoiceCoefficients map[string]float64

// InterceptCoefficient is the base-utility (intercept) coefficient name.
const InterceptCoefficient = "ASC_accept"

// coefficientFeatures maps each recognized coefficient name to the lever
// feature it multiplies. Coefficient names outside this mapping (rejection
// intercepts, coefficients for unmodelled alternatives) are ignored.
var coefficientFeatures = map[string]string{
	"B_Next_vs_standard_increase": ColNextDayIncrease,
	"B_Same_vs_standard_increase": ColSameDayIncrease,
	"B_Delivery_fee_small":        ColFeeSmall,
	"B_Delivery_fee_Medium":       ColFeeMedium,
	"B_Delivery_fee_Large":        ColFeeLarge,
	"B_Diesel_van":                ColDieselShare,
	"B_Electic_van":               ColElectricShare,
	"B_Micro_hub_with_bike":       ColMicrohub,
	"B_Off_peak":                  ColOffPeak,
	"B_Signature":                 ColSignature,
	"B_Redelivery":                ColRedelivery,
	"B_Tracking":                  ColTracking,
	"B_Insurance":                 ColInsurance,
}

// Weight returns the weight for the named coefficient, or 0 if absent.
func (c ChoiceCoefficients) Weight(name string) float64 {
	return c[name]
}

// Utility computes the linear utility of the given feature vector:
// intercept plus the sum of weight x value over all recognized coefficients.
// Features not referenced by any coefficient contribute nothing.
func (c ChoiceCoefficients) Utility(features map[string]float64) float64 {
	u := c.Weight(InterceptCoefficient)
	for coeff, feature := range coefficientFeatures {
		u += c.Weight(coeff) * features[feature]
	}
	return u
}

// Probability applies the logistic transform to the utility of the given
// feature vector. The result is strictly inside (0,1): the utility is bounded
// before the transform so extreme coefficient tables cannot saturate to an
// exact 0 or 1.
//
// Pure and deterministic; called once per round against the shipper table and
// once against the recipient table.
func (c ChoiceCoefficients) Probability(features map[string]float64) float64 {
	u := c.Utility(features)
	// The bound must stay within float64 resolution: exp(-30) is still large
	// enough that 1+exp(-30) > 1, so neither tail rounds to exactly 0 or 1.
	if u > 30 {
		u = 30
	} else if u < -30 {
		u = -30
	}
	return 1.0 / (1.0 + math.Exp(-u))
}
