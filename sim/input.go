package sim

import (
	"fmt"
	"math"
)

// Lever column names. These match the feature names the choice coefficients
// were estimated against and are the keys of a raw LeverVector.
const (
	ColNextDayIncrease = "Next_day_delivery_increase"
	ColSameDayIncrease = "Same_day_delivery_increase"
	ColFeeSmall        = "Delivery_fee_small"
	ColFeeMedium       = "Medium_parcels_delivery_fee"
	ColFeeLarge        = "Large_parcels_delivery_fee"
	ColDieselShare     = "Share_of_diesel_vans"
	ColElectricShare   = "Share_of_electric_vans"
	ColMicrohub        = "Microhub_delivery"
	ColOffPeak         = "Offpeak_delivery"
	ColSignature       = "Signature_required"
	ColRedelivery      = "Redelivery"
	ColTracking        = "Tracking"
	ColInsurance       = "Insurance"
)

// LeverColumns lists all thirteen lever names in canonical order.
var LeverColumns = []string{
	ColNextDayIncrease, ColSameDayIncrease,
	ColFeeSmall, ColFeeMedium, ColFeeLarge,
	ColDieselShare, ColElectricShare, ColMicrohub,
	ColOffPeak, ColSignature, ColRedelivery, ColTracking, ColInsurance,
}

// booleanColumns are the six service levers coerced to {0,1}. A missing or
// NaN value is treated as 0 rather than rejected; the numeric levers are
// strict by contrast.
var booleanColumns = map[string]bool{
	ColMicrohub:   true,
	ColOffPeak:    true,
	ColSignature:  true,
	ColRedelivery: true,
	ColTracking:   true,
	ColInsurance:  true,
}

// LeverVector is a raw, caller-supplied lever record keyed by lever column name.
type LeverVector map[string]float64

// MissingFieldError reports a required lever absent from a LeverVector.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("round input: missing required field %q", e.Field)
}

// RoundInput is a sanitized lever record for one round. After ParseRoundInput,
// DieselShare and ElectricShare are in [0,100] and the six service levers are
// exactly 0 or 1.
type RoundInput struct {
	NextDayIncrease float64 // next-day price uplift vs standard (multiplier)
	SameDayIncrease float64 // same-day price uplift vs standard (multiplier)

	FeeSmall  float64 // delivery fee per small parcel (AUD)
	FeeMedium float64
	FeeLarge  float64

	DieselShare   float64 // percent of van fleet that is diesel, [0,100]
	ElectricShare float64 // percent of van fleet that is electric, [0,100]

	Microhub   int // 1 = vans feed a CBD microhub, cargo bikes do final mile
	OffPeak    int
	Signature  int
	Redelivery int
	Tracking   int
	Insurance  int
}

// ParseRoundInput sanitizes a raw lever vector into a RoundInput.
//
// Numeric levers are required: a missing or NaN value yields a
// *MissingFieldError / invalid-value error before any simulation runs.
// Mode shares are clamped to [0,100] (never rejected). Boolean levers are
// rounded and coerced to {0,1}, with missing or NaN treated as 0.
func ParseRoundInput(raw LeverVector) (RoundInput, error) {
	var in RoundInput
	for _, col := range LeverColumns {
		if booleanColumns[col] {
			continue
		}
		v, ok := raw[col]
		if !ok {
			return RoundInput{}, &MissingFieldError{Field: col}
		}
		if math.IsNaN(v) {
			return RoundInput{}, fmt.Errorf("round input: field %q is not a number", col)
		}
	}

	in.NextDayIncrease = raw[ColNextDayIncrease]
	in.SameDayIncrease = raw[ColSameDayIncrease]
	in.FeeSmall = raw[ColFeeSmall]
	in.FeeMedium = raw[ColFeeMedium]
	in.FeeLarge = raw[ColFeeLarge]
	in.DieselShare = clampShare(raw[ColDieselShare])
	in.ElectricShare = clampShare(raw[ColElectricShare])

	in.Microhub = binarize(raw[ColMicrohub])
	in.OffPeak = binarize(raw[ColOffPeak])
	in.Signature = binarize(raw[ColSignature])
	in.Redelivery = binarize(raw[ColRedelivery])
	in.Tracking = binarize(raw[ColTracking])
	in.Insurance = binarize(raw[ColInsurance])
	return in, nil
}

// Features returns the sanitized lever vector keyed by lever column name,
// in the form the choice coefficients were estimated against (shares as
// percentages, service levers as 0/1).
func (in RoundInput) Features() map[string]float64 {
	return map[string]float64{
		ColNextDayIncrease: in.NextDayIncrease,
		ColSameDayIncrease: in.SameDayIncrease,
		ColFeeSmall:        in.FeeSmall,
		ColFeeMedium:       in.FeeMedium,
		ColFeeLarge:        in.FeeLarge,
		ColDieselShare:     in.DieselShare,
		ColElectricShare:   in.ElectricShare,
		ColMicrohub:        float64(in.Microhub),
		ColOffPeak:         float64(in.OffPeak),
		ColSignature:       float64(in.Signature),
		ColRedelivery:      float64(in.Redelivery),
		ColTracking:        float64(in.Tracking),
		ColInsurance:       float64(in.Insurance),
	}
}

// clampShare clamps a mode-share percentage to [0,100]. Idempotent.
func clampShare(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// binarize coerces a raw lever to {0,1}: NaN -> 0, then round half to even,
// then positive -> 1. Missing map keys read as 0 and land at 0. Exactly 0.5
// rounds down, keeping parity with the table this data originates from.
func binarize(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if math.RoundToEven(v) > 0 {
		return 1
	}
	return 0
}
