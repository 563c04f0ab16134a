package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Tabular column names. These match the export format of the original game
// verbatim, including the legacy misspellings and the duplicate microhub /
// redelivery echoes that downstream consumers key on.
const (
	ColumnRoundID = "Round ID"

	columnNextIncrease  = "Next_vs_standard_increase"
	columnSameIncrease  = "Same_vs_standard_increase"
	columnFeeSmall      = "Delivery_fee_small"
	columnFeeMedium     = "Delivery_fee_Medium"
	columnFeeLarge      = "Delivery_fee_Large"
	columnDieselShare   = "Diesel_van_share"
	columnElectricShare = "Electic_van_share" // legacy key kept for compatibility
	columnMicrohub      = "Micro_hub_with_bike"
	columnOffPeak       = "Off_peak_delivery"
	columnSignature     = "Signature"
	columnRedeliveryAlt = "redlivery" // legacy key kept for compatibility
	columnTracking      = "Tracking"
	columnInsurance     = "Insurance"
	columnShipperProb   = "Shipper_Probability"
	columnRecipientProb = "Recipient_Probability"
	columnMicrohubEcho  = "Micro Hub Delivery"
	columnRedelivery    = "Redelivery"
	columnDailyCost     = "Total_costs"
	columnDailyRevenue  = "Total_revenue"
	columnDailyEmission = "Total_emission"
	columnDailyProfit   = "Total_profit"
	columnDailyDemand   = "Total_demand"
)

// csvColumns is the canonical export column order.
var csvColumns = buildCSVColumns()

func buildCSVColumns() []string {
	cols := []string{
		ColumnRoundID,
		columnNextIncrease, columnSameIncrease,
		columnFeeSmall, columnFeeMedium, columnFeeLarge,
		columnDieselShare, columnElectricShare,
		columnMicrohub, columnOffPeak, columnSignature, columnRedeliveryAlt,
		columnTracking, columnInsurance,
		columnShipperProb, columnRecipientProb,
		columnMicrohubEcho, columnRedelivery,
		columnDailyCost, columnDailyRevenue, columnDailyEmission,
		columnDailyProfit, columnDailyDemand,
	}
	for _, metric := range []string{"Total_costs", "Total_revenue", "Total_emission", "Total_profit", "Total_demand"} {
		for _, h := range Horizons {
			cols = append(cols, metric+"_"+h.Label())
		}
	}
	return cols
}

// RequiredImportColumns is the checklist an imported table must carry before
// any row is merged: the Round ID plus the six horizon-scaled profit and
// emission columns. Demand columns stay optional to support old exports.
var RequiredImportColumns = []string{
	ColumnRoundID,
	"Total_profit_two_months", "Total_profit_one_year", "Total_profit_five_year",
	"Total_emission_two_months", "Total_emission_one_year", "Total_emission_five_year",
}

// MissingColumnsError reports an imported table rejected wholesale because
// required columns are absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("import: missing required columns: %s", strings.Join(e.Columns, ", "))
}

// History is the append-only, ordered sequence of round results for one
// session. Round IDs strictly increase; a failed round never appends and
// never advances the round counter.
//
// Not safe for concurrent use; each session owns its own History.
type History struct {
	results []RoundResult
}

// NewHistory returns an empty history. The first round gets ID 1.
func NewHistory() *History {
	return &History{}
}

// Len returns the number of recorded rounds.
func (h *History) Len() int { return len(h.results) }

// Results returns a copy of the recorded rounds in Round ID order.
func (h *History) Results() []RoundResult {
	out := make([]RoundResult, len(h.results))
	copy(out, h.results)
	return out
}

// MaxRoundID returns the highest recorded Round ID, or 0 if empty.
func (h *History) MaxRoundID() int {
	if len(h.results) == 0 {
		return 0
	}
	return h.results[len(h.results)-1].RoundID
}

// NextRoundID returns the ID the next round will get.
func (h *History) NextRoundID() int {
	return h.MaxRoundID() + 1
}

// Append records a completed round. The Round ID must exceed every recorded ID.
func (h *History) Append(r RoundResult) error {
	if r.RoundID <= h.MaxRoundID() {
		return fmt.Errorf("history: round ID %d not greater than last recorded %d", r.RoundID, h.MaxRoundID())
	}
	h.results = append(h.results, r)
	return nil
}

// RunRound evaluates one round end to end: sanitize the raw levers, score
// both acceptance probabilities, simulate the day, scale across horizons and
// append. On any failure the history is left unchanged (no append, no counter
// advance) and the error carries the originating Round ID.
func (h *History) RunRound(raw LeverVector, env *ScenarioEnvironment, shippers, recipients ChoiceCoefficients) (RoundResult, error) {
	id := h.NextRoundID()
	in, err := ParseRoundInput(raw)
	if err != nil {
		return RoundResult{}, fmt.Errorf("round %d: %w", id, err)
	}
	features := in.Features()
	shipperProb := shippers.Probability(features)
	recipientProb := recipients.Probability(features)

	out := SimulateRound(in, env, shipperProb, recipientProb)
	res := AggregateRound(id, in, out)
	if err := h.Append(res); err != nil {
		return RoundResult{}, fmt.Errorf("round %d: %w", id, err)
	}
	return res, nil
}

// Merge unions imported rounds into the history: rows with a Round ID already
// present are replaced (most recently imported wins), new rows are inserted,
// and the history is re-sorted by Round ID. Merging the same rows twice is a
// no-op beyond the first merge.
func (h *History) Merge(imported []RoundResult) {
	byID := make(map[int]int, len(h.results))
	for i, r := range h.results {
		byID[r.RoundID] = i
	}
	for _, r := range imported {
		if i, ok := byID[r.RoundID]; ok {
			h.results[i] = r
		} else {
			byID[r.RoundID] = len(h.results)
			h.results = append(h.results, r)
		}
	}
	sort.Slice(h.results, func(i, j int) bool {
		return h.results[i].RoundID < h.results[j].RoundID
	})
}

// Export writes the history as CSV with the canonical column set. Floats use
// the shortest exact representation so export/import round-trips losslessly.
func (h *History) Export(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, r := range h.results {
		if err := cw.Write(encodeRow(r)); err != nil {
			return fmt.Errorf("export: write round %d: %w", r.RoundID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func encodeRow(r RoundResult) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	fi := func(v int) string { return strconv.Itoa(v) }

	row := []string{
		fi(r.RoundID),
		ff(r.Input.NextDayIncrease), ff(r.Input.SameDayIncrease),
		ff(r.Input.FeeSmall), ff(r.Input.FeeMedium), ff(r.Input.FeeLarge),
		// Mode shares are exported as fractions, as the original did.
		ff(r.Input.DieselShare / 100.0), ff(r.Input.ElectricShare / 100.0),
		fi(r.Input.Microhub), fi(r.Input.OffPeak), fi(r.Input.Signature), fi(r.Input.Redelivery),
		fi(r.Input.Tracking), fi(r.Input.Insurance),
		ff(r.ShipperProbability), ff(r.RecipientProbability),
		fi(r.Input.Microhub), fi(r.Input.Redelivery),
		ff(r.DailyCost), ff(r.DailyRevenue), ff(r.DailyEmission),
		ff(r.DailyProfit), ff(r.DailyDemand),
	}
	for _, totals := range []func(HorizonTotals) float64{
		func(t HorizonTotals) float64 { return t.Cost },
		func(t HorizonTotals) float64 { return t.Revenue },
		func(t HorizonTotals) float64 { return t.Emission },
		func(t HorizonTotals) float64 { return t.Profit },
		func(t HorizonTotals) float64 { return t.Demand },
	} {
		for _, hz := range Horizons {
			row = append(row, ff(totals(r.AtHorizon(hz))))
		}
	}
	return row
}

// ImportResults parses a previously exported CSV. The header must contain
// every RequiredImportColumns entry or the whole table is rejected with a
// *MissingColumnsError listing the absences; there is no row-level partial
// import. Unknown columns are ignored, optional known columns default to 0.
func ImportResults(rd io.Reader) ([]RoundResult, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("import: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range RequiredImportColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var results []RoundResult
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("import: line %d: %w", line, err)
		}
		r, err := decodeRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("import: line %d: %w", line, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func decodeRow(record []string, index map[string]int) (RoundResult, error) {
	field := func(col string) (float64, bool) {
		i, ok := index[col]
		if !ok || i >= len(record) || strings.TrimSpace(record[i]) == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	must := func(col string) (float64, error) {
		v, ok := field(col)
		if !ok {
			return 0, fmt.Errorf("column %q: unparseable value", col)
		}
		return v, nil
	}
	opt := func(col string) float64 {
		v, _ := field(col)
		return v
	}
	boolOf := func(primary, fallback string) int {
		if v, ok := field(primary); ok {
			return binarize(v)
		}
		return binarize(opt(fallback))
	}

	idF, err := must(ColumnRoundID)
	if err != nil {
		return RoundResult{}, err
	}

	r := RoundResult{
		RoundID: int(idF),
		Input: RoundInput{
			NextDayIncrease: opt(columnNextIncrease),
			SameDayIncrease: opt(columnSameIncrease),
			FeeSmall:        opt(columnFeeSmall),
			FeeMedium:       opt(columnFeeMedium),
			FeeLarge:        opt(columnFeeLarge),
			// Stored as fractions; RoundInput carries percentages.
			DieselShare:   clampShare(opt(columnDieselShare) * 100.0),
			ElectricShare: clampShare(opt(columnElectricShare) * 100.0),
			Microhub:      boolOf(columnMicrohubEcho, columnMicrohub),
			OffPeak:       binarize(opt(columnOffPeak)),
			Signature:     binarize(opt(columnSignature)),
			Redelivery:    boolOf(columnRedelivery, columnRedeliveryAlt),
			Tracking:      binarize(opt(columnTracking)),
			Insurance:     binarize(opt(columnInsurance)),
		},
		ShipperProbability:   opt(columnShipperProb),
		RecipientProbability: opt(columnRecipientProb),
		DailyCost:            opt(columnDailyCost),
		DailyRevenue:         opt(columnDailyRevenue),
		DailyEmission:        opt(columnDailyEmission),
		DailyProfit:          opt(columnDailyProfit),
		DailyDemand:          opt(columnDailyDemand),
	}

	horizonOf := func(hz Horizon) (HorizonTotals, error) {
		profit, err := must("Total_profit_" + hz.Label())
		if err != nil {
			return HorizonTotals{}, err
		}
		emission, err := must("Total_emission_" + hz.Label())
		if err != nil {
			return HorizonTotals{}, err
		}
		t := HorizonTotals{
			Profit:   profit,
			Emission: emission,
			Cost:     opt("Total_costs_" + hz.Label()),
			Revenue:  opt("Total_revenue_" + hz.Label()),
			Demand:   opt("Total_demand_" + hz.Label()),
		}
		// Old exports carried only daily demand.
		if _, ok := field("Total_demand_" + hz.Label()); !ok {
			t.Demand = r.DailyDemand * hz.Days()
		}
		return t, nil
	}

	if r.TwoMonths, err = horizonOf(HorizonTwoMonths); err != nil {
		return RoundResult{}, err
	}
	if r.OneYear, err = horizonOf(HorizonOneYear); err != nil {
		return RoundResult{}, err
	}
	if r.FiveYears, err = horizonOf(HorizonFiveYears); err != nil {
		return RoundResult{}, err
	}
	return r, nil
}
