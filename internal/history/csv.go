package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
)

// CSVRecorder appends entries to a CSV file. The header is written once,
// when the file is empty.
type CSVRecorder struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// NewCSVRecorder opens path for appending, creating it if needed.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if path == "" {
		return nil, errors.New("csv history path is required")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	return &CSVRecorder{file: f, headerWritten: info.Size() > 0}, nil
}

// Record appends one row.
func (r *CSVRecorder) Record(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := []Entry{e}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// ReadCSV loads every entry of a CSV history file.
func ReadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}
