// pkg/sql/executor/executor.go
package executor

import (
	"fmt"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/resultset"
	"csvql/pkg/sql/parser"
	"csvql/pkg/storage"
	"csvql/pkg/types"
)

// Result holds the outcome of executing a statement: a result set for
// SELECT, the affected __id values for mutations.
type Result struct {
	Set         *resultset.ResultSet
	AffectedIDs []int64
}

// Executor runs validated statements against the catalog and its table
// files. It owns the catalog reference and persists it after every mutation;
// tables borrow it during read and write.
type Executor struct {
	meta  *catalog.Metadata
	store *storage.Store
}

// New creates an Executor over the loaded catalog and its data directory.
func New(meta *catalog.Metadata, store *storage.Store) *Executor {
	return &Executor{meta: meta, store: store}
}

// Execute dispatches stmt by kind. Statements are expected to have passed
// validation.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		rs, err := e.executeSelect(s)
		if err != nil {
			return nil, err
		}
		return &Result{Set: rs}, nil
	case *parser.InsertStmt:
		id, err := e.executeInsert(s)
		if err != nil {
			return nil, err
		}
		return &Result{AffectedIDs: []int64{id}}, nil
	case *parser.UpdateStmt:
		ids, err := e.executeUpdate(s)
		if err != nil {
			return nil, err
		}
		return &Result{AffectedIDs: ids}, nil
	case *parser.DeleteStmt:
		ids, err := e.executeDelete(s)
		if err != nil {
			return nil, err
		}
		return &Result{AffectedIDs: ids}, nil
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// executeSelect composes join, filter, projection, order, and limit in that
// fixed order over the source table.
func (e *Executor) executeSelect(stmt *parser.SelectStmt) (*resultset.ResultSet, error) {
	db := &e.meta.Database
	table, err := db.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	rs, err := e.store.ReadTable(table, stmt.Join != nil)
	if err != nil {
		return nil, err
	}

	if stmt.Join != nil {
		joinTable, err := db.GetTable(stmt.Join.Table)
		if err != nil {
			return nil, err
		}
		joinRS, err := e.store.ReadTable(joinTable, true)
		if err != nil {
			return nil, err
		}
		rs, err = rs.InnerJoin(joinRS, stmt.Join.On)
		if err != nil {
			return nil, err
		}
	}

	if stmt.Where != nil {
		rs, err = rs.Filter(stmt.Where)
		if err != nil {
			return nil, err
		}
	}

	fields := stmt.Fields
	if len(fields) == 1 && fields[0] == "*" {
		fields = rs.Headers()
	}
	rs, err = rs.Project(fields)
	if err != nil {
		return nil, err
	}

	if stmt.OrderBy != nil {
		rs, err = rs.Sort(stmt.OrderBy.Field, stmt.OrderBy.Desc)
		if err != nil {
			return nil, err
		}
	}

	if stmt.Limit != nil {
		rs = rs.Limit(*stmt.Limit)
	}

	return rs, nil
}

// executeInsert appends one row, bumps the table's id counter, rewrites the
// file, and saves the catalog. Returns the assigned id.
func (e *Executor) executeInsert(stmt *parser.InsertStmt) (int64, error) {
	table, err := e.meta.Database.GetTable(stmt.Table)
	if err != nil {
		return 0, err
	}

	rs, err := e.store.ReadTable(table, false)
	if err != nil {
		return 0, err
	}

	row, err := buildRow(table, stmt.Fields, stmt.Values)
	if err != nil {
		return 0, err
	}
	id := table.NextID
	table.NextID++

	out := &resultset.ResultSet{
		TableName: rs.TableName,
		Columns:   rs.Columns,
		Rows:      append(rs.Rows, row),
	}
	if err := e.store.WriteTable(table, out); err != nil {
		return 0, err
	}
	if err := e.meta.Save(); err != nil {
		return 0, err
	}
	return id, nil
}

// buildRow assembles a full-width row: __id from the table's counter,
// supplied fields decoded per column type, omitted fields left empty so they
// read back as zero values.
func buildRow(table *catalog.Table, fields []string, values []parser.Operand) (resultset.Row, error) {
	row := make(resultset.Row, len(table.Columns))
	for i, col := range table.Columns {
		name := strings.ToLower(col.Name)
		if name == catalog.IDColumn {
			row[i] = types.NewInt(table.NextID)
			continue
		}

		vi := -1
		for j, field := range fields {
			if field == name {
				vi = j
				break
			}
		}
		if vi < 0 {
			row[i] = types.Empty(col.Type)
			continue
		}

		v, err := types.Parse(values[vi].Text, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// executeUpdate rewrites the table, replacing the named fields on every row
// matched by the predicate. Returns the matched ids in row order.
func (e *Executor) executeUpdate(stmt *parser.UpdateStmt) ([]int64, error) {
	table, err := e.meta.Database.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	rs, err := e.store.ReadTable(table, false)
	if err != nil {
		return nil, err
	}

	ids, affected, err := affectedIDs(rs, stmt.Where)
	if err != nil {
		return nil, err
	}

	// Decode each assignment once against its column.
	type change struct {
		index int
		value types.Value
	}
	headers := table.Headers()
	changes := make([]change, 0, len(stmt.Assignments))
	for _, a := range stmt.Assignments {
		j := -1
		for i, h := range headers {
			if h == a.Column {
				j = i
				break
			}
		}
		if j < 0 {
			return nil, fmt.Errorf("%w: %s in table %s", catalog.ErrColumnNotFound, a.Column, table.Name)
		}
		v, err := types.Parse(a.Value.Text, table.Columns[j].Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", a.Column, err)
		}
		changes = append(changes, change{index: j, value: v})
	}

	rows := make([]resultset.Row, len(rs.Rows))
	for r, row := range rs.Rows {
		if _, ok := affected[row[0].Int()]; !ok {
			rows[r] = row
			continue
		}
		updated := make(resultset.Row, len(row))
		copy(updated, row)
		for _, ch := range changes {
			updated[ch.index] = ch.value
		}
		rows[r] = updated
	}

	out := &resultset.ResultSet{TableName: rs.TableName, Columns: rs.Columns, Rows: rows}
	if err := e.store.WriteTable(table, out); err != nil {
		return nil, err
	}
	if err := e.meta.Save(); err != nil {
		return nil, err
	}
	return ids, nil
}

// executeDelete rewrites the table without the rows matched by the
// predicate. Returns the matched ids in row order.
func (e *Executor) executeDelete(stmt *parser.DeleteStmt) ([]int64, error) {
	table, err := e.meta.Database.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	rs, err := e.store.ReadTable(table, false)
	if err != nil {
		return nil, err
	}

	ids, affected, err := affectedIDs(rs, stmt.Where)
	if err != nil {
		return nil, err
	}

	var rows []resultset.Row
	for _, row := range rs.Rows {
		if _, ok := affected[row[0].Int()]; ok {
			continue
		}
		rows = append(rows, row)
	}

	out := &resultset.ResultSet{TableName: rs.TableName, Columns: rs.Columns, Rows: rows}
	if err := e.store.WriteTable(table, out); err != nil {
		return nil, err
	}
	// next_id is untouched by a delete; the save is kept for symmetry with
	// the other mutations.
	if err := e.meta.Save(); err != nil {
		return nil, err
	}
	return ids, nil
}

// affectedIDs filters rs by the optional predicate and collects the matched
// rows' ids, ordered as stored.
func affectedIDs(rs *resultset.ResultSet, where parser.Condition) ([]int64, map[int64]struct{}, error) {
	filtered := rs
	if where != nil {
		var err error
		filtered, err = rs.Filter(where)
		if err != nil {
			return nil, nil, err
		}
	}

	ids := make([]int64, 0, len(filtered.Rows))
	set := make(map[int64]struct{}, len(filtered.Rows))
	for _, row := range filtered.Rows {
		if len(row) == 0 || row[0].Type() != types.TypeInt {
			return nil, nil, fmt.Errorf("invalid id in table %s", rs.TableName)
		}
		ids = append(ids, row[0].Int())
		set[row[0].Int()] = struct{}{}
	}
	return ids, set, nil
}
