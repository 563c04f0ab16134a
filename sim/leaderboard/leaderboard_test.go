package leaderboard

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/carrier-sim/carrier-sim/sim"
)

func roundWith(id int, profit, emission, demand float64) sim.RoundResult {
	return sim.RoundResult{
		RoundID: id,
		OneYear: sim.HorizonTotals{
			Profit:   profit,
			Emission: emission,
			Demand:   demand,
		},
	}
}

func TestSubmit_FirstRoundCreatesRecord(t *testing.T) {
	store := NewMemoryStore()
	res := roundWith(1, 36500, 730, 3650)

	rec, changed, err := Submit(store, "ada", res, sim.HorizonOneYear)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "ada", rec.Player)
	assert.InDelta(t, 10.0, rec.BestProfitPerParcel, 1e-12)
	assert.InDelta(t, 0.2, rec.BestEmissionPerParcel, 1e-12)
	assert.Equal(t, 1, rec.BestProfitRound)
	assert.Equal(t, 1, rec.BestEmissionRound)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestSubmit_WorseRoundChangesNothing(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := Submit(store, "ada", roundWith(1, 36500, 730, 3650), sim.HorizonOneYear)
	require.NoError(t, err)

	// Lower profit per parcel and higher emission per parcel.
	rec, changed, err := Submit(store, "ada", roundWith(2, 3650, 3650, 3650), sim.HorizonOneYear)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, rec.BestProfitRound)
	assert.Equal(t, 1, rec.BestEmissionRound)
}

func TestSubmit_RecordsUpdateIndependently(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := Submit(store, "ada", roundWith(1, 36500, 730, 3650), sim.HorizonOneYear)
	require.NoError(t, err)

	// Better profit per parcel, worse emission per parcel.
	rec, changed, err := Submit(store, "ada", roundWith(2, 73000, 7300, 3650), sim.HorizonOneYear)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, rec.BestProfitRound)
	assert.InDelta(t, 20.0, rec.BestProfitPerParcel, 1e-12)
	assert.Equal(t, 1, rec.BestEmissionRound)
	assert.InDelta(t, 0.2, rec.BestEmissionPerParcel, 1e-12)
}

func TestSubmit_NonPositiveDemandGuard(t *testing.T) {
	store := NewMemoryStore()
	for _, demand := range []float64{0, -10} {
		_, _, err := Submit(store, "ada", roundWith(1, 100, 10, demand), sim.HorizonOneYear)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNonPositiveDemand))
	}
	// Nothing was written.
	_, found, err := store.Get("ada")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubmit_PlayersAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := Submit(store, "ada", roundWith(1, 36500, 730, 3650), sim.HorizonOneYear)
	require.NoError(t, err)
	_, _, err = Submit(store, "grace", roundWith(1, 3650, 7300, 3650), sim.HorizonOneYear)
	require.NoError(t, err)

	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ada", all[0].Player)
	assert.Equal(t, "grace", all[1].Player)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get("ada")
	require.NoError(t, err)
	assert.False(t, found)

	rec, changed, err := Submit(store, "ada", roundWith(1, 36500, 730, 3650), sim.HorizonOneYear)
	require.NoError(t, err)
	assert.True(t, changed)

	got, found, err := store.Get("ada")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.BestProfitPerParcel, got.BestProfitPerParcel)
	assert.Equal(t, rec.BestProfitRound, got.BestProfitRound)
	assert.Equal(t, rec.BestEmissionPerParcel, got.BestEmissionPerParcel)
}

func TestSQLiteStore_LastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(Record{Player: "ada", BestProfitPerParcel: 1, BestEmissionPerParcel: 9}))
	require.NoError(t, store.Put(Record{Player: "ada", BestProfitPerParcel: 5, BestEmissionPerParcel: 2}))

	got, found, err := store.Get("ada")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5.0, got.BestProfitPerParcel)
	assert.Equal(t, 2.0, got.BestEmissionPerParcel)

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, _, err = Submit(store, "ada", roundWith(3, 36500, 730, 3650), sim.HorizonOneYear)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Get("ada")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, got.BestProfitRound)
}
