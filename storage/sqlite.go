// Package storage persists training runs, per-generation stats and
// champion networks in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/telemetry"
)

var (
	// ErrNotInitialized is returned when the store is used before Init.
	ErrNotInitialized = errors.New("store is not initialized")
	// ErrNoChampion is returned when no champion has been stored.
	ErrNoChampion = errors.New("no champion stored")
)

// Run describes one training run.
type Run struct {
	ID        string
	Seed      int64
	StartedAt time.Time
	Config    []byte // YAML snapshot
}

// SQLiteStore is a SQLite-backed store for training runs.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for the database at path. Call Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("creating tables: %w", err)
	}

	s.db = db
	return nil
}

// StartRun records a new run and returns it with a fresh ID.
func (s *SQLiteStore) StartRun(ctx context.Context, cfg *config.Config, seed int64) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}

	payload, err := cfg.YAML()
	if err != nil {
		return Run{}, fmt.Errorf("encoding config: %w", err)
	}

	run := Run{
		ID:        uuid.NewString(),
		Seed:      seed,
		StartedAt: time.Now().UTC(),
		Config:    payload,
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, started_at, config)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Seed, run.StartedAt.Format(time.RFC3339Nano), run.Config)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// GetRun loads a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var (
		run     Run
		started string
	)
	err = db.QueryRowContext(ctx, `SELECT id, seed, started_at, config FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Seed, &started, &run.Config)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

// SaveGeneration upserts one generation's stats.
func (s *SQLiteStore) SaveGeneration(ctx context.Context, runID string, stats telemetry.GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode generation %d: %w", stats.Generation, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, best_fitness, mean_fitness, score, ticks, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			score = excluded.score,
			ticks = excluded.ticks,
			payload = excluded.payload
	`, runID, stats.Generation, stats.BestFitness, stats.MeanFitness, stats.Score, stats.Ticks, payload)
	return err
}

// Generations returns a run's stats in generation order.
func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]telemetry.GenerationStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []telemetry.GenerationStats
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var stats telemetry.GenerationStats
		if err := json.Unmarshal(payload, &stats); err != nil {
			return nil, fmt.Errorf("decode generation: %w", err)
		}
		out = append(out, stats)
	}
	return out, rows.Err()
}

// SaveChampion stores a hall of fame entry.
func (s *SQLiteStore) SaveChampion(ctx context.Context, runID string, entry telemetry.HallEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode champion: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, generation, fitness, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			fitness = excluded.fitness,
			payload = excluded.payload
	`, runID, entry.Generation, entry.Fitness, payload)
	return err
}

// Champion is a stored hall of fame entry and the run that produced it.
type Champion struct {
	RunID string
	telemetry.HallEntry
}

// BestChampion returns the fittest champion, within runID or across all
// runs when runID is empty.
func (s *SQLiteStore) BestChampion(ctx context.Context, runID string) (Champion, error) {
	db, err := s.getDB()
	if err != nil {
		return Champion{}, err
	}

	query := `SELECT run_id, payload FROM champions ORDER BY fitness DESC, generation ASC LIMIT 1`
	args := []any{}
	if runID != "" {
		query = `SELECT run_id, payload FROM champions WHERE run_id = ? ORDER BY fitness DESC, generation ASC LIMIT 1`
		args = append(args, runID)
	}

	var (
		champ   Champion
		payload []byte
	)
	if err := db.QueryRowContext(ctx, query, args...).Scan(&champ.RunID, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Champion{}, ErrNoChampion
		}
		return Champion{}, err
	}

	if err := json.Unmarshal(payload, &champ.HallEntry); err != nil {
		return Champion{}, fmt.Errorf("decode champion: %w", err)
	}
	return champ, nil
}

// Close closes the database. The store can be re-initialized afterwards.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			config BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			score INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			fitness REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
