// pkg/resultset/resultset.go
package resultset

import (
	"fmt"
	"sort"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/sql/parser"
	"csvql/pkg/types"
)

// Row is one fixed-arity tuple; element i has the type of column i.
type Row []types.Value

// ResultSet is an in-memory view of (columns, rows) produced by reading a
// table or by an operator. It is immutable by contract: operators return a
// new result set instead of mutating the receiver.
type ResultSet struct {
	TableName string
	Columns   []catalog.Column
	Rows      []Row
}

// Headers returns the lowercased column names addressable on this set. A set
// read with prefixing carries table.column names.
func (rs *ResultSet) Headers() []string {
	headers := make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		headers[i] = strings.ToLower(col.Name)
	}
	return headers
}

// columnIndex resolves a lowercased name to a column position.
func (rs *ResultSet) columnIndex(name string) (int, bool) {
	for i, col := range rs.Columns {
		if strings.ToLower(col.Name) == name {
			return i, true
		}
	}
	return 0, false
}

// InnerJoin computes the inner join of rs and other under the given
// predicate: a nested loop over the cartesian product, keeping each
// concatenated row that satisfies the predicate. Both sides are expected to
// carry prefixed columns.
func (rs *ResultSet) InnerJoin(other *ResultSet, on parser.Condition) (*ResultSet, error) {
	joined := make([]catalog.Column, 0, len(rs.Columns)+len(other.Columns))
	joined = append(joined, rs.Columns...)
	joined = append(joined, other.Columns...)

	out := &ResultSet{
		TableName: rs.TableName + " INNER JOIN " + other.TableName,
		Columns:   joined,
	}

	for _, row := range rs.Rows {
		for _, otherRow := range other.Rows {
			pair := make(Row, 0, len(row)+len(otherRow))
			pair = append(pair, row...)
			pair = append(pair, otherRow...)

			ok, err := out.eval(on, pair)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Rows = append(out.Rows, pair)
			}
		}
	}

	return out, nil
}

// Filter returns the rows satisfying cond.
func (rs *ResultSet) Filter(cond parser.Condition) (*ResultSet, error) {
	out := &ResultSet{TableName: rs.TableName, Columns: rs.Columns}
	for _, row := range rs.Rows {
		ok, err := rs.eval(cond, row)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// eval walks a predicate tree for one row. The root comparison evaluates
// first; AND and OR short-circuit.
func (rs *ResultSet) eval(cond parser.Condition, row Row) (bool, error) {
	switch c := cond.(type) {
	case *parser.Comparison:
		return rs.satisfies(c, row)
	case *parser.Logical:
		left, err := rs.eval(c.Left, row)
		if err != nil {
			return false, err
		}
		if c.Op == parser.And {
			if !left {
				return false, nil
			}
			return rs.eval(c.Right, row)
		}
		if left {
			return true, nil
		}
		return rs.eval(c.Right, row)
	}
	return false, fmt.Errorf("unsupported condition node: %T", cond)
}

// satisfies evaluates a single comparison against a row. The left side must
// resolve to a column; the right side resolves to a column when possible and
// is otherwise coerced to the left column's type.
func (rs *ResultSet) satisfies(cmp *parser.Comparison, row Row) (bool, error) {
	i, ok := rs.columnIndex(cmp.Left.Text)
	if cmp.Left.Quoted || !ok {
		return false, fmt.Errorf("column %s not found", cmp.Left.Raw())
	}
	leftVal := row[i]
	leftCol := rs.Columns[i]

	var rightVal types.Value
	if j, ok := rs.columnIndex(cmp.Right.Text); ok && !cmp.Right.Quoted {
		rightVal = row[j]
	} else {
		var err error
		rightVal, err = types.Parse(cmp.Right.Text, leftCol.Type)
		if err != nil {
			return false, err
		}
	}

	rel, err := leftVal.Compare(rightVal)
	if err != nil {
		return false, err
	}

	switch cmp.Op {
	case parser.Eq:
		return rel == 0, nil
	case parser.Ne:
		return rel != 0, nil
	case parser.Lt:
		return rel < 0, nil
	case parser.Le:
		return rel <= 0, nil
	case parser.Gt:
		return rel > 0, nil
	case parser.Ge:
		return rel >= 0, nil
	}
	return false, fmt.Errorf("invalid operator: %s", cmp.Op)
}

// Project narrows the set to the named fields, in order. Fields resolve
// against the current headers, bare or prefixed.
func (rs *ResultSet) Project(fields []string) (*ResultSet, error) {
	indexes := make([]int, len(fields))
	columns := make([]catalog.Column, len(fields))
	for i, field := range fields {
		j, ok := rs.columnIndex(field)
		if !ok {
			return nil, fmt.Errorf("column %s not found", field)
		}
		indexes[i] = j
		columns[i] = rs.Columns[j]
	}

	rows := make([]Row, len(rs.Rows))
	for r, row := range rs.Rows {
		projected := make(Row, len(indexes))
		for i, j := range indexes {
			projected[i] = row[j]
		}
		rows[r] = projected
	}

	return &ResultSet{TableName: rs.TableName, Columns: columns, Rows: rows}, nil
}

// Sort orders rows by the named column. The sort is stable: rows with equal
// keys keep their original relative order. desc inverts the comparison.
func (rs *ResultSet) Sort(field string, desc bool) (*ResultSet, error) {
	i, ok := rs.columnIndex(field)
	if !ok {
		return nil, fmt.Errorf("column %s not found", field)
	}

	rows := make([]Row, len(rs.Rows))
	copy(rows, rs.Rows)

	var sortErr error
	sort.SliceStable(rows, func(a, b int) bool {
		rel, err := rows[a][i].Compare(rows[b][i])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		if desc {
			return rel > 0
		}
		return rel < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	return &ResultSet{TableName: rs.TableName, Columns: rs.Columns, Rows: rows}, nil
}

// Limit truncates the row sequence to the first n rows.
func (rs *ResultSet) Limit(n int) *ResultSet {
	if n >= len(rs.Rows) {
		return rs
	}
	return &ResultSet{TableName: rs.TableName, Columns: rs.Columns, Rows: rs.Rows[:n]}
}
