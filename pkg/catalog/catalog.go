// pkg/catalog/catalog.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"csvql/pkg/types"
)

var (
	ErrTableNotFound  = errors.New("table not found")
	ErrColumnNotFound = errors.New("column not found")
)

// IDColumn is the synthetic primary key every table carries at index 0. It is
// assigned from the table's next_id counter and is never supplied by users.
const IDColumn = "__id"

// Column is one typed column of a table
type Column struct {
	Name string           `json:"name"`
	Type types.ColumnType `json:"type"`
}

// Table describes one table: its columns in on-disk order (IDColumn first),
// the row file path relative to the data directory, and the id to assign to
// the next inserted row. NextID never decreases; deleted ids are not reused.
type Table struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	NextID  int64    `json:"next_id"`
	Columns []Column `json:"columns"`
}

// Headers returns the lowercased column names in catalog order.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = strings.ToLower(col.Name)
	}
	return headers
}

// PrefixedHeaders returns table.column names for join contexts.
func (t *Table) PrefixedHeaders() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = t.Name + "." + strings.ToLower(col.Name)
	}
	return headers
}

// Column finds a column by case-insensitive name.
func (t *Table) Column(name string) (*Column, error) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s in table %s", ErrColumnNotFound, name, t.Name)
}

// Database is an ordered collection of uniquely named tables
type Database struct {
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// GetTable finds a table by case-insensitive name. The returned pointer
// aliases the database so NextID updates persist on save.
func (d *Database) GetTable(name string) (*Table, error) {
	for i := range d.Tables {
		if strings.EqualFold(d.Tables[i].Name, name) {
			return &d.Tables[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
}

// HasTable reports whether a table with the given name exists.
func (d *Database) HasTable(name string) bool {
	_, err := d.GetTable(name)
	return err == nil
}
