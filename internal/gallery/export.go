package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const currentExportVersion = 1

// PersistenceError wraps a failed save or load. The in-memory gallery is
// left untouched when it occurs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("gallery %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ExportData is the serialized gallery format.
type ExportData struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Dim        int       `json:"dim"`
	Entries    []Entry   `json:"entries"`
}

// Export serializes every entry in insertion order. JSON keeps float64
// values exact across a round-trip (shortest-representation encoding).
func (g *Gallery) Export() ([]byte, error) {
	g.mu.RLock()
	data := ExportData{
		Version:    currentExportVersion,
		ExportedAt: time.Now().UTC(),
		Dim:        g.dim,
		Entries:    append([]Entry(nil), g.entries...),
	}
	g.mu.RUnlock()

	blob, err := json.Marshal(data)
	if err != nil {
		return nil, &PersistenceError{Op: "export", Err: err}
	}
	return blob, nil
}

// Import replaces the gallery contents with a previously exported blob.
// A dimension mismatch or malformed blob leaves the gallery unchanged.
func (g *Gallery) Import(blob []byte) error {
	var data ExportData
	if err := json.Unmarshal(blob, &data); err != nil {
		return &PersistenceError{Op: "import", Err: err}
	}
	if data.Version != currentExportVersion {
		return &PersistenceError{Op: "import", Err: fmt.Errorf("unsupported export version %d", data.Version)}
	}
	if data.Dim != g.dim {
		return &PersistenceError{Op: "import", Err: fmt.Errorf("export dim %d does not match gallery dim %d", data.Dim, g.dim)}
	}

	index := make(map[string]int, len(data.Entries))
	for i, e := range data.Entries {
		if len(e.Embedding) != g.dim {
			return &PersistenceError{Op: "import", Err: fmt.Errorf("entry %q has embedding length %d, expected %d", e.Identity, len(e.Embedding), g.dim)}
		}
		index[e.Identity] = i
	}

	g.mu.Lock()
	g.entries = data.Entries
	g.index = index
	g.dirty = false
	g.mu.Unlock()

	return nil
}

// Save writes the gallery to path atomically: the blob goes to a temp file
// in the same directory first, then replaces the target with a rename, so
// a failed write never leaves a half-written gallery behind.
func (g *Gallery) Save(path string) error {
	blob, err := g.Export()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".gallery-*.json")
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Err: err}
	}

	g.mu.Lock()
	g.dirty = false
	g.mu.Unlock()

	return nil
}

// Load reads a gallery file written by Save. A missing file is not an
// error; the gallery simply starts empty.
func (g *Gallery) Load(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &PersistenceError{Op: "load", Err: err}
	}
	return g.Import(blob)
}
