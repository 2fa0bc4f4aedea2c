// pkg/storage/store.go
// Whole-table CSV read and write. Tables materialize fully in memory; every
// mutation rewrites the file. There is no locking: the engine assumes
// exclusive access for the duration of the process.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/resultset"
	"csvql/pkg/types"
)

// Store reads and writes table files under a single data directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of a table's row file.
func (s *Store) Path(t *catalog.Table) string {
	return filepath.Join(s.dir, t.File)
}

// ReadTable materializes a table's rows as a result set. The file's header
// row is skipped; the catalog is authoritative on column order and naming.
// With prefixed set, columns are named table.column for join contexts.
func (s *Store) ReadTable(t *catalog.Table, prefixed bool) (*resultset.ResultSet, error) {
	f, err := os.Open(s.Path(t))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(t.Columns)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", t.Name, err)
	}

	var rows []resultset.Row
	for i, record := range records {
		if i == 0 {
			continue // header row
		}
		row := make(resultset.Row, len(record))
		for j, field := range record {
			v, err := types.Parse(field, t.Columns[j].Type)
			if err != nil {
				return nil, fmt.Errorf("table %s, row %d, column %s: %w", t.Name, i, t.Columns[j].Name, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	columns := make([]catalog.Column, len(t.Columns))
	copy(columns, t.Columns)
	if prefixed {
		for i := range columns {
			columns[i].Name = t.Name + "." + strings.ToLower(columns[i].Name)
		}
	}

	return &resultset.ResultSet{TableName: t.Name, Columns: columns, Rows: rows}, nil
}

// WriteTable rewrites a table's file from rs: the header row, then every row
// encoded column-wise with minimal quoting. The result set must originate
// from the target table and carry its bare headers, which rules out writing
// joined or projected sets back.
func (s *Store) WriteTable(t *catalog.Table, rs *resultset.ResultSet) error {
	if rs.TableName != t.Name {
		return fmt.Errorf("cannot write result set from %q to table %q", rs.TableName, t.Name)
	}
	if !slices.Equal(rs.Headers(), t.Headers()) {
		return fmt.Errorf("result set columns do not match table %s", t.Name)
	}

	f, err := os.Create(s.Path(t))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers()); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = v.Encode()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
