// Package leaderboard tracks each player's best rounds across sessions:
// highest profit per unit demand and lowest emission per unit demand at a
// chosen projection horizon.
//
// The store is the only cross-session shared state in the system. Updates are
// read-then-write, last write wins per player; there is no transactional
// coordination between concurrent sessions.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/carrier-sim/carrier-sim/sim"
)

// ErrNonPositiveDemand is returned when a round's horizon-scaled demand is
// zero or negative, which would make the per-parcel metrics meaningless.
var ErrNonPositiveDemand = errors.New("leaderboard: round demand is not positive")

// Record is one player's leaderboard entry.
type Record struct {
	Player string

	BestProfitPerParcel float64 // AUD per parcel, higher is better
	BestProfitRound     int     // Round ID that set the profit record

	BestEmissionPerParcel float64 // external cost per parcel, lower is better
	BestEmissionRound     int     // Round ID that set the emission record

	UpdatedAt time.Time
}

// Store persists leaderboard records keyed by player identity.
type Store interface {
	// Get returns the record for player, reporting whether one exists.
	Get(player string) (Record, bool, error)
	// Put writes the record, replacing any existing entry for the player.
	Put(rec Record) error
	// All returns every record, sorted by player.
	All() ([]Record, error)
	// Close releases store resources.
	Close() error
}

// Submit compares a completed round against the player's records at the given
// horizon and updates whichever records it beats. It returns the resulting
// record and whether anything changed.
func Submit(store Store, player string, res sim.RoundResult, hz sim.Horizon) (Record, bool, error) {
	totals := res.AtHorizon(hz)
	if totals.Demand <= 0 {
		return Record{}, false, fmt.Errorf("%w (round %d)", ErrNonPositiveDemand, res.RoundID)
	}
	profitPerParcel := totals.Profit / totals.Demand
	emissionPerParcel := totals.Emission / totals.Demand

	rec, found, err := store.Get(player)
	if err != nil {
		return Record{}, false, fmt.Errorf("leaderboard: read %q: %w", player, err)
	}

	changed := false
	if !found {
		rec = Record{
			Player:                player,
			BestProfitPerParcel:   profitPerParcel,
			BestProfitRound:       res.RoundID,
			BestEmissionPerParcel: emissionPerParcel,
			BestEmissionRound:     res.RoundID,
		}
		changed = true
	} else {
		if profitPerParcel > rec.BestProfitPerParcel {
			rec.BestProfitPerParcel = profitPerParcel
			rec.BestProfitRound = res.RoundID
			changed = true
		}
		if emissionPerParcel < rec.BestEmissionPerParcel {
			rec.BestEmissionPerParcel = emissionPerParcel
			rec.BestEmissionRound = res.RoundID
			changed = true
		}
	}
	if !changed {
		return rec, false, nil
	}

	rec.UpdatedAt = time.Now().UTC()
	if err := store.Put(rec); err != nil {
		return Record{}, false, fmt.Errorf("leaderboard: write %q: %w", player, err)
	}
	return rec, true, nil
}

// MemoryStore is an in-process Store for tests and single-session play.
type MemoryStore struct {
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Get(player string) (Record, bool, error) {
	rec, ok := m.records[player]
	return rec, ok, nil
}

func (m *MemoryStore) Put(rec Record) error {
	m.records[rec.Player] = rec
	return nil
}

func (m *MemoryStore) All() ([]Record, error) {
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
