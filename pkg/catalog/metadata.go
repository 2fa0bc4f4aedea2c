// pkg/catalog/metadata.go
// The metadata document is the single persisted catalog. It is authoritative
// over column order and next_id; row files never contribute schema.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrNotInitialized = errors.New("database not initialized")

// Metadata is the persisted catalog document holding one database.
type Metadata struct {
	Database Database `json:"database"`

	path string
}

// New creates an empty in-memory catalog that saves to path.
func New(name, path string) *Metadata {
	return &Metadata{
		Database: Database{Name: name, Tables: []Table{}},
		path:     path,
	}
}

// Load reads the metadata document at path. A missing file means no data has
// been imported yet.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: import data first", ErrNotInitialized)
		}
		return nil, err
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("corrupt metadata file %s: %w", path, err)
	}
	m.path = path
	return &m, nil
}

// Save writes the document back with 2-space indentation.
func (m *Metadata) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Path returns where the document is persisted.
func (m *Metadata) Path() string {
	return m.path
}
