// Package storage provides persistence for the base dataset and daily snapshots.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yourusername/live-snapshots/internal/article"
)

// GeneratedAtLayout is the timestamp format written to generatedAt.
const GeneratedAtLayout = "2006-01-02T15:04:05.000000Z"

var (
	// ErrMissingInput is returned when the base dataset cannot be found.
	ErrMissingInput = errors.New("base dataset not found")
	// ErrSnapshotExists is returned by Write when the target file is already on disk.
	ErrSnapshotExists = errors.New("snapshot already exists")
)

var emptyFilters = json.RawMessage(`{}`)

// writeData copies a snapshot into its freshly created file.
var writeData = func(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}

// BaseDataset is the source every snapshot is derived from.
type BaseDataset struct {
	Filters json.RawMessage   `json:"filters"`
	Data    []article.Article `json:"data"`
}

// Snapshot is the document written for a single date.
type Snapshot struct {
	GeneratedAt string            `json:"generatedAt"`
	Filters     json.RawMessage   `json:"filters"`
	Data        []article.Article `json:"data"`
}

// Locate returns the first existing path among workdir/name and
// workdir/<fallback>/name for each fallback directory, in order.
func Locate(workdir, name string, fallbacks []string) (string, error) {
	candidates := make([]string, 0, len(fallbacks)+1)
	candidates = append(candidates, filepath.Join(workdir, name))
	for _, dir := range fallbacks {
		candidates = append(candidates, filepath.Join(workdir, dir, name))
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrMissingInput, strings.Join(candidates, ", "))
}

// JSONStore reads the base dataset from a JSON file.
type JSONStore struct {
	filepath string
}

// NewJSONStore creates a new JSON store at the specified file path.
func NewJSONStore(filepath string) *JSONStore {
	return &JSONStore{filepath: filepath}
}

// Path returns the file the store reads from.
func (s *JSONStore) Path() string {
	return s.filepath
}

// Load reads the base dataset. A missing file yields ErrMissingInput; a data
// value that is not an array is treated as an empty article list.
func (s *JSONStore) Load() (*BaseDataset, error) {
	// #nosec G304 -- path comes from Locate over configured names
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, s.filepath)
		}
		return nil, err
	}

	var doc struct {
		Filters json.RawMessage `json:"filters"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filepath, err)
	}

	dataset := &BaseDataset{
		Filters: doc.Filters,
		Data:    []article.Article{},
	}
	if len(dataset.Filters) == 0 {
		dataset.Filters = emptyFilters
	}

	if gjson.ParseBytes(doc.Data).IsArray() {
		if err := json.Unmarshal(doc.Data, &dataset.Data); err != nil {
			return nil, fmt.Errorf("parse %s data: %w", s.filepath, err)
		}
	}

	return dataset, nil
}

// Encode renders a snapshot as two-space indented JSON without HTML escaping
// and without a trailing newline.
func Encode(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SnapshotStore manages date-named snapshot files inside one directory.
type SnapshotStore struct {
	dir    string
	prefix string
}

// NewSnapshotStore creates a store writing <dir>/<prefix><date>.json files.
func NewSnapshotStore(dir, prefix string) *SnapshotStore {
	return &SnapshotStore{dir: dir, prefix: prefix}
}

// Dir returns the directory snapshots are written to.
func (s *SnapshotStore) Dir() string {
	return s.dir
}

// Filename returns the base name of the snapshot for date (YYYY-MM-DD).
func (s *SnapshotStore) Filename(date string) string {
	return s.prefix + date + ".json"
}

// Path returns the full path of the snapshot for date.
func (s *SnapshotStore) Path(date string) string {
	return filepath.Join(s.dir, s.Filename(date))
}

// Exists reports whether the snapshot for date is already on disk.
func (s *SnapshotStore) Exists(date string) (bool, error) {
	_, err := os.Stat(s.Path(date))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Write creates the snapshot file for date. The file is opened with O_EXCL so
// an existing snapshot is never replaced; that case returns ErrSnapshotExists.
// A file left half-written by a failed write is removed.
func (s *SnapshotStore) Write(date string, data []byte) error {
	path := s.Path(date)
	// #nosec G302 G304 -- snapshots are public data files
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotExists, path)
		}
		return err
	}

	if err := writeData(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// Load reads a previously written snapshot.
func (s *SnapshotStore) Load(date string) (*Snapshot, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Count returns how many snapshot files exist for the given years. Names are
// matched literally, so the directory and prefix may contain any characters.
func (s *SnapshotStore) Count(years []int) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		for _, year := range years {
			if strings.HasPrefix(name, fmt.Sprintf("%s%04d-", s.prefix, year)) {
				count++
				break
			}
		}
	}
	return count, nil
}
