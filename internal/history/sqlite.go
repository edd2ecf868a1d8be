package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores entries in a SQLite database, one row per run and
// generation. Recording the same generation twice overwrites it.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens or creates the database at path.
func NewSQLiteRecorder(ctx context.Context, path string) (*SQLiteRecorder, error) {
	if path == "" {
		return nil, errors.New("sqlite history path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRecorder{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			run_id        TEXT    NOT NULL,
			generation    INTEGER NOT NULL,
			species       INTEGER NOT NULL,
			genomes       INTEGER NOT NULL,
			innovation    INTEGER NOT NULL,
			max_fitness   REAL    NOT NULL,
			best_fitness  REAL    NOT NULL,
			mean_fitness  REAL    NOT NULL,
			stdev_fitness REAL    NOT NULL,
			mean_genes    REAL    NOT NULL,
			recorded_at   TEXT    NOT NULL,
			PRIMARY KEY (run_id, generation)
		)
	`)
	if err != nil {
		return fmt.Errorf("create generations table: %w", err)
	}
	return nil
}

// Record inserts or replaces one generation row.
func (r *SQLiteRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, species, genomes, innovation,
			max_fitness, best_fitness, mean_fitness, stdev_fitness, mean_genes, recorded_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			species = excluded.species,
			genomes = excluded.genomes,
			innovation = excluded.innovation,
			max_fitness = excluded.max_fitness,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			stdev_fitness = excluded.stdev_fitness,
			mean_genes = excluded.mean_genes,
			recorded_at = excluded.recorded_at
	`, e.RunID, e.Generation, e.Species, e.Genomes, e.Innovation,
		e.MaxFitness, e.BestFitness, e.MeanFitness, e.StdevFitness, e.MeanGenes, e.RecordedAt)
	if err != nil {
		return fmt.Errorf("record generation %d: %w", e.Generation, err)
	}
	return nil
}

// Entries returns a run's rows ordered by generation.
func (r *SQLiteRecorder) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, generation, species, genomes, innovation,
			max_fitness, best_fitness, mean_fitness, stdev_fitness, mean_genes, recorded_at
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Generation, &e.Species, &e.Genomes, &e.Innovation,
			&e.MaxFitness, &e.BestFitness, &e.MeanFitness, &e.StdevFitness, &e.MeanGenes, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
