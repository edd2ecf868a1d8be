// Package history records per-generation statistics of an evolution run so
// that runs can be compared after the fact.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/baldhumanity/neat-pool/neat"
)

// Entry is one generation's row in a run history.
type Entry struct {
	RunID        string  `csv:"run_id"`
	Generation   int     `csv:"generation"`
	Species      int     `csv:"species"`
	Genomes      int     `csv:"genomes"`
	Innovation   int     `csv:"innovation"`
	MaxFitness   float64 `csv:"max_fitness"`
	BestFitness  float64 `csv:"best_fitness"`
	MeanFitness  float64 `csv:"mean_fitness"`
	StdevFitness float64 `csv:"stdev_fitness"`
	MeanGenes    float64 `csv:"mean_genes"`
	RecordedAt   string  `csv:"recorded_at"` // RFC 3339, UTC.
}

// NewEntry builds a history entry from generation statistics.
func NewEntry(runID string, s neat.Stats, at time.Time) Entry {
	return Entry{
		RunID:        runID,
		Generation:   s.Generation,
		Species:      s.Species,
		Genomes:      s.Genomes,
		Innovation:   s.Innovation,
		MaxFitness:   s.MaxFitness,
		BestFitness:  s.BestFitness,
		MeanFitness:  s.MeanFitness,
		StdevFitness: s.StdevFitness,
		MeanGenes:    s.MeanGenes,
		RecordedAt:   at.UTC().Format(time.RFC3339),
	}
}

// Recorder persists history entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Recorder kinds accepted by NewRecorder.
const (
	KindNone   = "none"
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

// NewRecorder opens a recorder of the given kind writing to path. An empty
// kind is the same as KindNone.
func NewRecorder(ctx context.Context, kind, path string) (Recorder, error) {
	switch kind {
	case "", KindNone:
		return nopRecorder{}, nil
	case KindCSV:
		return NewCSVRecorder(path)
	case KindSQLite:
		return NewSQLiteRecorder(ctx, path)
	default:
		return nil, fmt.Errorf("unknown history kind '%s'", kind)
	}
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Entry) error { return nil }
func (nopRecorder) Close() error                        { return nil }
