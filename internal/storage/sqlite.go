// Package storage provides SQLite-based persistence for the run ledger.
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
)

// Store manages the SQLite database connection for the run ledger.
type Store struct {
	db *sql.DB
}

// Run is one generated video.
type Run struct {
	ID         int64     `json:"id"`
	Seed       int64     `json:"seed"`
	Profile    string    `json:"profile"`
	Duration   int       `json:"duration"`
	AISkill    float64   `json:"ai_skill"`
	Theme      string    `json:"theme"`
	Frames     int       `json:"frames"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Collided   bool      `json:"collided"`
	OutputPath string    `json:"output_path"`
	VideoID    string    `json:"video_id,omitempty"` // Set once the run is uploaded
	CreatedAt  time.Time `json:"created_at"`
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
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			profile TEXT NOT NULL,
			duration INTEGER NOT NULL,
			ai_skill REAL NOT NULL,
			theme TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			collided INTEGER NOT NULL DEFAULT 0,
			output_path TEXT NOT NULL DEFAULT '',
			video_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
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

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r Run) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs
		 (seed, profile, duration, ai_skill, theme, frames, score, level, collided, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Seed, r.Profile, r.Duration, r.AISkill, r.Theme,
		r.Frames, r.Score, r.Level, r.Collided, r.OutputPath,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SetVideoID attaches the published video ID to a run.
func (s *Store) SetVideoID(runID int64, videoID string) error {
	res, err := s.db.Exec("UPDATE runs SET video_id = ? WHERE id = ?", videoID, runID)
	if err != nil {
		return fmt.Errorf("storage: cannot set video id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot set video id: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: run %d not found", runID)
	}
	return nil
}

const runColumns = `id, seed, profile, duration, ai_skill, theme, frames, score, level,
		        collided, output_path, video_id, created_at`

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// BestRun returns the highest scoring run, or nil if the ledger is empty.
func (s *Store) BestRun() (*Run, error) {
	row := s.db.QueryRow(
		`SELECT ` + runColumns + `
		 FROM runs
		 ORDER BY score DESC, id ASC
		 LIMIT 1`,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Stats contains aggregated statistics over the ledger.
type Stats struct {
	Runs       int       `json:"runs"`
	Uploaded   int       `json:"uploaded"`
	Collisions int       `json:"collisions"`
	HighScore  int       `json:"high_score"`
	AvgScore   float64   `json:"avg_score"`
	MaxLevel   int       `json:"max_level"`
	LastRun    time.Time `json:"last_run"`
}

// Stats retrieves aggregated statistics for all runs.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	var lastRun any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COUNT(video_id),
		        COALESCE(SUM(collided), 0),
		        COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0),
		        COALESCE(MAX(level), 0),
		        MAX(created_at)
		 FROM runs`,
	).Scan(&stats.Runs, &stats.Uploaded, &stats.Collisions, &stats.HighScore, &stats.AvgScore, &stats.MaxLevel, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)

	return stats, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var videoID sql.NullString
	var createdAt any

	err := sc.Scan(
		&r.ID,
		&r.Seed,
		&r.Profile,
		&r.Duration,
		&r.AISkill,
		&r.Theme,
		&r.Frames,
		&r.Score,
		&r.Level,
		&r.Collided,
		&r.OutputPath,
		&videoID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	if videoID.Valid {
		r.VideoID = videoID.String
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
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
