// Package storage provides SQLite-based persistence for replays.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/replay"
)

// ErrReplayNotFound is returned when no replay has the requested ID.
var ErrReplayNotFound = errors.New("storage: replay not found")

// Store manages the SQLite database connection for the replay journal.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS replays (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			drop_every INTEGER NOT NULL,
			config TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			locks INTEGER NOT NULL DEFAULT 0,
			game_over INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_game_id ON replays(game_id);
		CREATE INDEX IF NOT EXISTS idx_replays_top ON replays(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS replay_inputs (
			replay_id TEXT NOT NULL REFERENCES replays(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			player INTEGER NOT NULL,
			action TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_replay_inputs_replay ON replay_inputs(replay_id, tick);
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

// SaveReplay stores a replay and its inputs in one transaction.
func (s *Store) SaveReplay(r replay.Replay) error {
	cfg, err := yaml.Marshal(r.Config)
	if err != nil {
		return fmt.Errorf("storage: cannot encode config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	_, err = tx.Exec(
		`INSERT INTO replays
		 (id, game_id, seed, drop_every, config, ticks, score, lines, locks, game_over)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.GameID,
		r.Seed,
		r.Config.Timing.DropEvery,
		string(cfg),
		int64(r.Ticks), //nolint:gosec // tick counts stay far below 2^63
		r.Score,
		r.Lines,
		r.Locks,
		r.GameOver,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save replay: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO replay_inputs (replay_id, tick, player, action) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("storage: cannot prepare input insert: %w", err)
	}
	defer stmt.Close()

	for _, in := range r.Inputs {
		if _, err := stmt.Exec(r.ID, int64(in.Tick), int(in.Player), in.Action.String()); err != nil { //nolint:gosec // see above
			return fmt.Errorf("storage: cannot save input: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit replay: %w", err)
	}
	return nil
}

const replayColumns = `id, game_id, seed, config, ticks, score, lines, locks, game_over, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReplay(row rowScanner) (replay.Replay, error) {
	var (
		r         replay.Replay
		cfgText   string
		ticks     int64
		createdAt any
	)
	if err := row.Scan(&r.ID, &r.GameID, &r.Seed, &cfgText, &ticks, &r.Score, &r.Lines, &r.Locks, &r.GameOver, &createdAt); err != nil {
		return r, err
	}

	r.Config = config.DefaultDuotrisConfig()
	if err := yaml.Unmarshal([]byte(cfgText), &r.Config); err != nil {
		return r, fmt.Errorf("storage: cannot decode config of replay %s: %w", r.ID, err)
	}
	r.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ReplayByID loads a replay with its inputs.
func (s *Store) ReplayByID(id string) (replay.Replay, error) {
	row := s.db.QueryRow("SELECT "+replayColumns+" FROM replays WHERE id = ?", id)
	r, err := scanReplay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return replay.Replay{}, fmt.Errorf("%w: %s", ErrReplayNotFound, id)
	}
	if err != nil {
		return replay.Replay{}, fmt.Errorf("storage: cannot query replay: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT tick, player, action
		 FROM replay_inputs
		 WHERE replay_id = ?
		 ORDER BY rowid`,
		id,
	)
	if err != nil {
		return replay.Replay{}, fmt.Errorf("storage: cannot query inputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tick   int64
			player int
			action string
		)
		if err := rows.Scan(&tick, &player, &action); err != nil {
			return replay.Replay{}, fmt.Errorf("storage: cannot scan input: %w", err)
		}
		a, ok := core.ParseAction(action)
		if !ok {
			return replay.Replay{}, fmt.Errorf("storage: replay %s has unknown action %q", id, action)
		}
		r.Inputs = append(r.Inputs, replay.Input{
			Tick:   uint64(tick), //nolint:gosec // stored from a uint64
			Player: core.PlayerID(player),
			Action: a,
		})
	}
	if err := rows.Err(); err != nil {
		return replay.Replay{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return r, nil
}

func (s *Store) queryReplays(query string, args ...any) ([]replay.Replay, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var replays []replay.Replay
	for rows.Next() {
		r, err := scanReplay(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		replays = append(replays, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return replays, nil
}

// RecentReplays returns the latest replays of every game, newest first.
// Inputs are not loaded; use ReplayByID for playback.
func (s *Store) RecentReplays(limit int) ([]replay.Replay, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryReplays(
		`SELECT `+replayColumns+`
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
}

// TopReplays returns the best-scoring replays of one game.
// Inputs are not loaded.
func (s *Store) TopReplays(gameID string, limit int) ([]replay.Replay, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryReplays(
		`SELECT `+replayColumns+`
		 FROM replays
		 WHERE game_id = ?
		 ORDER BY score DESC, rowid ASC
		 LIMIT ?`,
		gameID, limit,
	)
}

// DeleteReplay removes a replay and its inputs.
func (s *Store) DeleteReplay(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec("DELETE FROM replay_inputs WHERE replay_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete inputs: %w", err)
	}
	res, err := tx.Exec("DELETE FROM replays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrReplayNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// HighScore returns the highest recorded score for the given game.
// Returns 0 if no replays exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM replays WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalLines int64
	LastPlayed time.Time
}

// GetAllGamesStats retrieves statistics for every game that has replays.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MAX(score), AVG(score), SUM(lines), MAX(created_at)
		 FROM replays
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var lastPlayed any
		if err := rows.Scan(&st.GameID, &st.GamesCount, &st.HighScore, &st.AvgScore, &st.TotalLines, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.GameID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
