package leaderboard

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using a single-file SQLite database, so a
// leaderboard survives across sessions on one machine without a server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the leaderboard database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open database: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS leaderboard (
		player TEXT PRIMARY KEY,
		best_profit_per_parcel REAL NOT NULL,
		best_profit_round INTEGER NOT NULL,
		best_emission_per_parcel REAL NOT NULL,
		best_emission_round INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("leaderboard: init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(player string) (Record, bool, error) {
	row := s.db.QueryRow(`
		SELECT player, best_profit_per_parcel, best_profit_round,
		       best_emission_per_parcel, best_emission_round, updated_at
		FROM leaderboard WHERE player = ?`, player)

	var rec Record
	var updatedAt string
	err := row.Scan(&rec.Player, &rec.BestProfitPerParcel, &rec.BestProfitRound,
		&rec.BestEmissionPerParcel, &rec.BestEmissionRound, &updatedAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("leaderboard: query %q: %w", player, err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		rec.UpdatedAt = t
	}
	return rec, true, nil
}

func (s *SQLiteStore) Put(rec Record) error {
	_, err := s.db.Exec(`
		INSERT INTO leaderboard
			(player, best_profit_per_parcel, best_profit_round,
			 best_emission_per_parcel, best_emission_round, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET
			best_profit_per_parcel = excluded.best_profit_per_parcel,
			best_profit_round = excluded.best_profit_round,
			best_emission_per_parcel = excluded.best_emission_per_parcel,
			best_emission_round = excluded.best_emission_round,
			updated_at = excluded.updated_at`,
		rec.Player, rec.BestProfitPerParcel, rec.BestProfitRound,
		rec.BestEmissionPerParcel, rec.BestEmissionRound,
		rec.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("leaderboard: upsert %q: %w", rec.Player, err)
	}
	return nil
}

func (s *SQLiteStore) All() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT player, best_profit_per_parcel, best_profit_round,
		       best_emission_per_parcel, best_emission_round, updated_at
		FROM leaderboard ORDER BY player`)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var updatedAt string
		if err := rows.Scan(&rec.Player, &rec.BestProfitPerParcel, &rec.BestProfitRound,
			&rec.BestEmissionPerParcel, &rec.BestEmissionRound, &updatedAt); err != nil {
			return nil, fmt.Errorf("leaderboard: scan: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
			rec.UpdatedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: list: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
