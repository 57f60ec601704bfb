// Package store provides the flat-file persistence layer. All durable state
// lives as CSV and JSON files under a single data directory; JSON blobs are
// written whole with indentation, the CSV attendance log is append-only.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Observer receives a callback for every completed store operation. Used to
// feed Prometheus counters without the store importing metrics directly.
type Observer func(op, file string, err error)

// Store serializes all access to the data directory. A single mutex is
// enough at this scale; every operation is a full-file read or write.
type Store struct {
	mu       sync.Mutex
	dir      string
	logger   *zap.Logger
	observer Observer
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// SetObserver installs the metrics callback. Must be called before any
// concurrent use.
func (s *Store) SetObserver(obs Observer) { s.observer = obs }

// Dir returns the data directory path.
func (s *Store) Dir() string { return s.dir }

// Path resolves a file name inside the data directory.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) observe(op, file string, err error) {
	if s.observer != nil {
		s.observer(op, file, err)
	}
}

// LoadJSON reads the named JSON file into v. The second return is false when
// the file does not exist yet, which callers treat as "empty".
func (s *Store) LoadJSON(name string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJSONLocked(name, v)
}

func (s *Store) loadJSONLocked(name string, v any) (bool, error) {
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		s.observe("load", name, nil)
		return false, nil
	}
	if err != nil {
		s.observe("load", name, err)
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		s.observe("load", name, nil)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.observe("load", name, err)
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	s.observe("load", name, nil)
	return true, nil
}

// SaveJSON writes v to the named file as indented JSON, replacing any
// previous content.
func (s *Store) SaveJSON(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveJSONLocked(name, v)
}

func (s *Store) saveJSONLocked(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.observe("save", name, err)
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		s.observe("save", name, err)
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.observe("save", name, nil)
	return nil
}

// UpdateJSON runs a read-modify-write cycle on one JSON file under the store
// lock. load is called with the file's found flag already applied to v.
func (s *Store) UpdateJSON(name string, v any, fn func(found bool) (any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, err := s.loadJSONLocked(name, v)
	if err != nil {
		return err
	}
	out, err := fn(found)
	if err != nil {
		return err
	}
	return s.saveJSONLocked(name, out)
}

// ReadCSV returns all rows of the named CSV file, or nil when it does not
// exist. Rows may have ragged lengths; the reader does not enforce a width.
func (s *Store) ReadCSV(name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.Path(name))
	if os.IsNotExist(err) {
		s.observe("load", name, nil)
		return nil, nil
	}
	if err != nil {
		s.observe("load", name, err)
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.observe("load", name, err)
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		rows = append(rows, rec)
	}
	s.observe("load", name, nil)
	return rows, nil
}

// AppendCSV appends rows to the named CSV file, writing header first when
// the file is new or empty.
func (s *Store) AppendCSV(name string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	needHeader := false
	if info, err := os.Stat(s.Path(name)); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		needHeader = true
	}

	f, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.observe("append", name, err)
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader && len(header) > 0 {
		if err := w.Write(header); err != nil {
			s.observe("append", name, err)
			return fmt.Errorf("write header %s: %w", name, err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			s.observe("append", name, err)
			return fmt.Errorf("write row %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.observe("append", name, err)
		return fmt.Errorf("flush %s: %w", name, err)
	}
	s.observe("append", name, nil)
	return nil
}

// WriteFile replaces the named file with raw content. Used for uploaded CSV
// timetables and substitute lists.
func (s *Store) WriteFile(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		s.observe("save", name, err)
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.observe("save", name, nil)
	return nil
}

// Remove deletes the named file if it exists.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		s.observe("remove", name, err)
		return fmt.Errorf("remove %s: %w", name, err)
	}
	s.observe("remove", name, nil)
	return nil
}
