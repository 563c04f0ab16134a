package sim

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralCoefficients() (shippers, recipients ChoiceCoefficients) {
	return ChoiceCoefficients{InterceptCoefficient: 0.3},
		ChoiceCoefficients{InterceptCoefficient: -0.1}
}

func runRounds(t *testing.T, h *History, n int) {
	t.Helper()
	env := scenarioEnv()
	shippers, recipients := neutralCoefficients()
	for i := 0; i < n; i++ {
		raw := validLevers()
		raw[ColFeeSmall] = 7 + float64(i) // vary fees so rounds differ
		_, err := h.RunRound(raw, env, shippers, recipients)
		require.NoError(t, err)
	}
}

func TestHistory_RunRoundAppendsIncreasingIDs(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 3)

	require.Equal(t, 3, h.Len())
	results := h.Results()
	for i, r := range results {
		assert.Equal(t, i+1, r.RoundID)
	}
	assert.Equal(t, 4, h.NextRoundID())
}

func TestHistory_FailedRoundLeavesHistoryUnchanged(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 1)

	raw := validLevers()
	delete(raw, ColFeeSmall)
	shippers, recipients := neutralCoefficients()
	_, err := h.RunRound(raw, scenarioEnv(), shippers, recipients)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "round 2", "error must carry the originating round ID")
	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))

	// No partial append, no counter advance.
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 2, h.NextRoundID())
}

func TestHistory_ProbabilitiesStrictlyInUnitInterval(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 1)
	res := h.Results()[0]
	assert.Greater(t, res.ShipperProbability, 0.0)
	assert.Less(t, res.ShipperProbability, 1.0)
	assert.Greater(t, res.RecipientProbability, 0.0)
	assert.Less(t, res.RecipientProbability, 1.0)
}

func TestHistory_ExportImportRoundTrip(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 3)

	var buf bytes.Buffer
	require.NoError(t, h.Export(&buf))

	imported, err := ImportResults(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, imported, 3)

	for i, got := range imported {
		want := h.Results()[i]
		assert.Equal(t, want.RoundID, got.RoundID)
		assert.Equal(t, want.Input.Microhub, got.Input.Microhub)
		assert.Equal(t, want.Input.Redelivery, got.Input.Redelivery)
		assert.InDelta(t, want.Input.DieselShare, got.Input.DieselShare, 1e-9)
		assert.InDelta(t, want.Input.FeeSmall, got.Input.FeeSmall, 1e-12)
		assert.InDelta(t, want.ShipperProbability, got.ShipperProbability, 1e-12)
		assert.InDelta(t, want.DailyProfit, got.DailyProfit, 1e-12)
		for _, hz := range Horizons {
			assert.InDelta(t, want.AtHorizon(hz).Profit, got.AtHorizon(hz).Profit, 1e-9)
			assert.InDelta(t, want.AtHorizon(hz).Emission, got.AtHorizon(hz).Emission, 1e-9)
			assert.InDelta(t, want.AtHorizon(hz).Demand, got.AtHorizon(hz).Demand, 1e-9)
		}
	}
}

func TestHistory_ReimportDeduplicatesByRoundID(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 3)

	var buf bytes.Buffer
	require.NoError(t, h.Export(&buf))
	imported, err := ImportResults(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	h.Merge(imported)
	h.Merge(imported) // importing the same content twice must not duplicate
	assert.Equal(t, 3, h.Len())
}

func TestHistory_MergeLastImportWins(t *testing.T) {
	h := NewHistory()
	runRounds(t, h, 2)

	replacement := h.Results()[0]
	replacement.DailyProfit = 999
	h.Merge([]RoundResult{replacement})

	require.Equal(t, 2, h.Len())
	assert.Equal(t, 999.0, h.Results()[0].DailyProfit)
	// Still sorted by Round ID.
	assert.Equal(t, 1, h.Results()[0].RoundID)
	assert.Equal(t, 2, h.Results()[1].RoundID)
}

func TestHistory_MergeInterleavesAndSorts(t *testing.T) {
	h := NewHistory()
	h.Merge([]RoundResult{{RoundID: 5}, {RoundID: 2}, {RoundID: 9}})

	ids := []int{}
	for _, r := range h.Results() {
		ids = append(ids, r.RoundID)
	}
	assert.Equal(t, []int{2, 5, 9}, ids)
	assert.Equal(t, 10, h.NextRoundID())
}

func TestImportResults_MissingColumnsRejectedWholesale(t *testing.T) {
	csvData := "Round ID,Total_profit_two_months,Total_profit_one_year\n1,10,20\n"
	_, err := ImportResults(strings.NewReader(csvData))
	require.Error(t, err)

	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.ElementsMatch(t, []string{
		"Total_profit_five_year",
		"Total_emission_two_months", "Total_emission_one_year", "Total_emission_five_year",
	}, missing.Columns)
	for _, col := range missing.Columns {
		assert.Contains(t, err.Error(), col)
	}
}

func TestImportResults_LegacyExportWithoutDemandColumns(t *testing.T) {
	// Old exports carried daily demand only; horizon demand falls back to
	// daily demand x days.
	header := strings.Join(RequiredImportColumns, ",") + ",Total_demand"
	row := "1,600,3650,18250,60,365,1825,10"
	imported, err := ImportResults(strings.NewReader(header + "\n" + row + "\n"))
	require.NoError(t, err)
	require.Len(t, imported, 1)

	r := imported[0]
	assert.Equal(t, 1, r.RoundID)
	assert.Equal(t, 10.0, r.DailyDemand)
	assert.InDelta(t, 600.0, r.TwoMonths.Demand, 1e-9)
	assert.InDelta(t, 3650.0, r.OneYear.Demand, 1e-9)
	assert.InDelta(t, 18250.0, r.FiveYears.Demand, 1e-9)
}

func TestHistory_AppendRejectsStaleRoundID(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Append(RoundResult{RoundID: 1}))
	assert.Error(t, h.Append(RoundResult{RoundID: 1}))
	assert.Error(t, h.Append(RoundResult{RoundID: 0}))
	assert.NoError(t, h.Append(RoundResult{RoundID: 5}))
}
