package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/tiltbox/internal/dynamo"
	"github.com/san-kum/tiltbox/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
	eventsFile   = "events.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Size      float64            `json:"size"`
	Params    dynamo.Params      `json:"params"`
	Ticks     int                `json:"ticks"`
	Won       bool               `json:"won"`
	WinTick   int                `json:"win_tick,omitempty"`
	Stopped   string             `json:"stopped"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, trace.csv and events.csv
// and returns its id.
func (s *Store) Save(name string, p dynamo.Params, size float64, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Size:      size,
		Params:    p,
		Ticks:     result.Ticks,
		Won:       result.Won,
		WinTick:   result.WinTick,
		Stopped:   result.Stopped,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	if err := writeCSV(filepath.Join(runDir, traceFile), TraceRows(result.Samples)); err != nil {
		return "", fmt.Errorf("writing trace: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, eventsFile), EventRows(result.Events)); err != nil {
		return "", fmt.Errorf("writing events: %w", err)
	}

	return runID, nil
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TraceRow, error) {
	var rows []TraceRow
	if err := readCSV(filepath.Join(s.baseDir, runID, traceFile), &rows); err != nil {
		return nil, fmt.Errorf("run %s trace: %w", runID, err)
	}
	return rows, nil
}

func (s *Store) LoadEvents(runID string) ([]EventRow, error) {
	var rows []EventRow
	if err := readCSV(filepath.Join(s.baseDir, runID, eventsFile), &rows); err != nil {
		return nil, fmt.Errorf("run %s events: %w", runID, err)
	}
	return rows, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(rows, f)
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return err
	}
	return nil
}
