// Package storage archives finished headless matches on disk. Each match
// gets a directory holding its record as JSON and its process history as
// CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	recordFile  = "match.json"
	historyFile = "processes.csv"
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

type PlayerRecord struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Size      int    `json:"size"`
	Processes int    `json:"processes"`
	LastLive  int    `json:"last_live"`
	Winner    bool   `json:"winner"`
}

// Record is the outcome of one match.
type Record struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Cycles    int            `json:"cycles"`
	Finished  bool           `json:"finished"`
	Draw      bool           `json:"draw"`
	Players   []PlayerRecord `json:"players"`
	// History is the process count sampled during the match. It is stored
	// next to the record, not inside it.
	History []int `json:"process_history,omitempty"`
}

// Save writes rec and returns the id it was stored under.
func (s *Store) Save(rec Record) (string, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.ID = fmt.Sprintf("match_%d", rec.Timestamp.UnixNano())
	dir := filepath.Join(s.baseDir, rec.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	history := rec.History
	rec.History = nil
	if err := writeJSON(filepath.Join(dir, recordFile), rec); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(dir, historyFile), history); err != nil {
		return "", err
	}
	return rec.ID, nil
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

func writeHistory(path string, history []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sample", "processes"}); err != nil {
		return err
	}
	for i, n := range history {
		if err := w.Write([]string{strconv.Itoa(i), strconv.Itoa(n)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored record, oldest first. Directories without a
// readable record are skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (s *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, recordFile))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return &rec, nil
}

// LoadHistory reads the process count samples of a stored match.
func (s *Store) LoadHistory(id string) ([]int, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, historyFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []int{}, nil
	}

	history := make([]int, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		n, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		history = append(history, n)
	}
	return history, nil
}
