// Package storage provides SQLite-based persistence for the snake record,
// leaderboard and round history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/nird-snake/internal/session"
)

// Store manages the SQLite database connection.
// It implements session.KV through the settings table.
type Store struct {
	db *sql.DB
}

var _ session.KV = (*Store)(nil)

// Round is one finished round.
type Round struct {
	ID         int64
	Player     string // SSH user, empty for local play
	Difficulty string
	Score      int
	Won        bool
	Liberated  int
	Duration   int // seconds
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SSH sessions write concurrently; sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			won INTEGER NOT NULL DEFAULT 0,
			liberated INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_rounds_difficulty ON rounds(difficulty);
		CREATE INDEX IF NOT EXISTS idx_rounds_top ON rounds(difficulty, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns a settings value.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a settings value, replacing any previous one.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// SaveRound records a finished round.
// Returns the ID of the inserted record.
func (s *Store) SaveRound(r Round) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO rounds (player, difficulty, score, won, liberated, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Player, r.Difficulty, r.Score, r.Won, r.Liberated, r.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save round: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const roundColumns = `id, player, difficulty, score, won, liberated, duration_secs, created_at`

// TopRounds retrieves the best rounds, highest score first.
// An empty difficulty matches every preset.
func (s *Store) TopRounds(difficulty string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+roundColumns+`
		 FROM rounds
		 WHERE ? = '' OR difficulty = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		difficulty, difficulty, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query rounds: %w", err)
	}
	return scanRounds(rows)
}

// RecentRounds retrieves the most recent rounds, newest first.
func (s *Store) RecentRounds(limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+roundColumns+`
		 FROM rounds
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query rounds: %w", err)
	}
	return scanRounds(rows)
}

func scanRounds(rows *sql.Rows) ([]Round, error) {
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var r Round
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Player, &r.Difficulty, &r.Score, &r.Won,
			&r.Liberated, &r.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		rounds = append(rounds, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return rounds, nil
}

// parseTime handles both time.Time and the sqlite text form.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ClearRounds deletes the round history. Settings are kept.
func (s *Store) ClearRounds() error {
	if _, err := s.db.Exec("DELETE FROM rounds"); err != nil {
		return fmt.Errorf("storage: cannot clear rounds: %w", err)
	}
	return nil
}

// RoundStats contains aggregated statistics for one difficulty.
type RoundStats struct {
	Difficulty string
	Rounds     int
	Wins       int
	HighScore  int
	AvgScore   float64
	Liberated  int64
	LastPlayed time.Time
}

// Stats retrieves statistics for every difficulty that has been played.
func (s *Store) Stats() (map[string]*RoundStats, error) {
	rows, err := s.db.Query(
		`SELECT difficulty, COUNT(*), SUM(won), MAX(score), AVG(score), SUM(liberated), MAX(created_at)
		 FROM rounds
		 GROUP BY difficulty`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*RoundStats)
	for rows.Next() {
		var st RoundStats
		var lastPlayed any
		if err := rows.Scan(&st.Difficulty, &st.Rounds, &st.Wins, &st.HighScore,
			&st.AvgScore, &st.Liberated, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Difficulty] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}
