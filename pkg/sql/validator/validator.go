// pkg/sql/validator/validator.go
// Static semantic checks over a parsed statement, with the catalog in hand.
// Everything rejected here never reaches the executor.
package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/sql/parser"
	"csvql/pkg/types"
)

// Validate checks stmt against the catalog before execution.
func Validate(stmt parser.Statement, db *catalog.Database) error {
	switch s := stmt.(type) {
	case *parser.SelectStmt:
		return validateSelect(s, db)
	case *parser.InsertStmt:
		return validateInsert(s, db)
	case *parser.UpdateStmt:
		return validateUpdate(s, db)
	case *parser.DeleteStmt:
		return validateDelete(s, db)
	}
	return fmt.Errorf("unsupported statement type: %T", stmt)
}

func validateSelect(s *parser.SelectStmt, db *catalog.Database) error {
	table, err := db.GetTable(s.Table)
	if err != nil {
		return err
	}

	// The active header set: bare headers, or both tables' prefixed headers
	// under a join.
	headers := table.Headers()
	if s.Join != nil {
		joinTable, err := db.GetTable(s.Join.Table)
		if err != nil {
			return err
		}
		headers = append(table.PrefixedHeaders(), joinTable.PrefixedHeaders()...)

		if err := validateJoinOn(s.Join.On, headers); err != nil {
			return err
		}
	}

	if s.Where != nil {
		if err := validateCondition(s.Where, db, headers, s.Table); err != nil {
			return err
		}
	}

	if s.OrderBy != nil && !slices.Contains(headers, s.OrderBy.Field) {
		return fmt.Errorf("invalid column for order by: %s", s.OrderBy.Field)
	}

	if s.Limit != nil && *s.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", *s.Limit)
	}

	if len(s.Fields) == 1 && s.Fields[0] == "*" {
		return nil
	}
	for _, field := range s.Fields {
		if tableName, _, qualified := splitQualified(field); qualified && !db.HasTable(tableName) {
			return fmt.Errorf("invalid table in field: %s", tableName)
		}
		if !slices.Contains(headers, field) {
			return fmt.Errorf("invalid column: %s", field)
		}
	}
	return nil
}

// validateJoinOn requires every side of the join predicate to be a column in
// the prefixed header set.
func validateJoinOn(cond parser.Condition, headers []string) error {
	switch c := cond.(type) {
	case *parser.Comparison:
		for _, side := range []parser.Operand{c.Left, c.Right} {
			if side.Quoted || !slices.Contains(headers, side.Text) {
				return fmt.Errorf("invalid column for join: %s", side.Raw())
			}
		}
		return nil
	case *parser.Logical:
		if err := validateJoinOn(c.Left, headers); err != nil {
			return err
		}
		return validateJoinOn(c.Right, headers)
	}
	return fmt.Errorf("unsupported condition node: %T", cond)
}

// validateCondition checks every comparison of a predicate tree: the left
// side must be a column in the active header set; the right side is either a
// column of an agreeing type or a literal well-formed for the left column's
// type.
func validateCondition(cond parser.Condition, db *catalog.Database, headers []string, tableName string) error {
	switch c := cond.(type) {
	case *parser.Comparison:
		return validateComparison(c, db, headers, tableName)
	case *parser.Logical:
		if err := validateCondition(c.Left, db, headers, tableName); err != nil {
			return err
		}
		return validateCondition(c.Right, db, headers, tableName)
	}
	return fmt.Errorf("unsupported condition node: %T", cond)
}

func validateComparison(c *parser.Comparison, db *catalog.Database, headers []string, tableName string) error {
	if c.Left.Quoted || !slices.Contains(headers, c.Left.Text) {
		return fmt.Errorf("invalid column in predicate: %s", c.Left.Raw())
	}

	leftTable, leftName, qualified := splitQualified(c.Left.Text)
	if !qualified {
		leftTable = tableName
	}
	table, err := db.GetTable(leftTable)
	if err != nil {
		return err
	}
	leftCol, err := table.Column(leftName)
	if err != nil {
		return err
	}

	if !c.Right.Quoted && slices.Contains(headers, c.Right.Text) {
		// Column against column: the types must agree. An unqualified right
		// side resolves in the left side's table.
		rightTable, rightName, qualified := splitQualified(c.Right.Text)
		if !qualified {
			rightTable = leftTable
		} else if !db.HasTable(rightTable) {
			return fmt.Errorf("invalid table in predicate: %s", rightTable)
		}
		rt, err := db.GetTable(rightTable)
		if err != nil {
			return err
		}
		rightCol, err := rt.Column(rightName)
		if err != nil {
			return err
		}
		if leftCol.Type != rightCol.Type {
			return fmt.Errorf("type mismatch in predicate: %s != %s", leftCol.Type, rightCol.Type)
		}
		return nil
	}

	return validateLiteral(c.Right, leftCol)
}

// validateLiteral checks that a literal operand is well-formed for a column:
// quoted for str and datetime (with an ISO-8601 interior), parseable as int
// or float otherwise.
func validateLiteral(op parser.Operand, col *catalog.Column) error {
	switch col.Type {
	case types.TypeStr:
		if !op.Quoted {
			return fmt.Errorf("invalid str literal: %s", op.Raw())
		}
	case types.TypeInt:
		if op.Quoted {
			return fmt.Errorf("invalid int literal: %s", op.Raw())
		}
		if _, err := strconv.ParseInt(op.Text, 10, 64); err != nil {
			return fmt.Errorf("invalid int literal: %s", op.Raw())
		}
	case types.TypeFloat:
		if op.Quoted {
			return fmt.Errorf("invalid float literal: %s", op.Raw())
		}
		if _, err := strconv.ParseFloat(op.Text, 64); err != nil {
			return fmt.Errorf("invalid float literal: %s", op.Raw())
		}
	case types.TypeDatetime:
		if !op.Quoted {
			return fmt.Errorf("invalid datetime literal: %s", op.Raw())
		}
		if _, err := types.ParseDatetime(op.Text); err != nil {
			return fmt.Errorf("invalid datetime literal: %s", op.Raw())
		}
	default:
		return fmt.Errorf("unknown column type: %q", col.Type)
	}
	return nil
}

func validateInsert(s *parser.InsertStmt, db *catalog.Database) error {
	if len(s.Fields) != len(s.Values) {
		return fmt.Errorf("number of fields (%d) and values (%d) must match", len(s.Fields), len(s.Values))
	}

	table, err := db.GetTable(s.Table)
	if err != nil {
		return err
	}

	for i, field := range s.Fields {
		if field == catalog.IDColumn {
			return fmt.Errorf("cannot insert into %s column (autogenerated)", catalog.IDColumn)
		}
		col, err := table.Column(field)
		if err != nil {
			return err
		}
		if err := validateLiteral(s.Values[i], col); err != nil {
			return fmt.Errorf("column %s: %w", field, err)
		}
	}
	return nil
}

func validateUpdate(s *parser.UpdateStmt, db *catalog.Database) error {
	table, err := db.GetTable(s.Table)
	if err != nil {
		return err
	}

	for _, a := range s.Assignments {
		if a.Column == catalog.IDColumn {
			return fmt.Errorf("cannot update %s column (autogenerated)", catalog.IDColumn)
		}
		col, err := table.Column(a.Column)
		if err != nil {
			return err
		}
		if err := validateLiteral(a.Value, col); err != nil {
			return fmt.Errorf("column %s: %w", a.Column, err)
		}
	}

	if s.Where != nil {
		return validateCondition(s.Where, db, table.Headers(), s.Table)
	}
	return nil
}

func validateDelete(s *parser.DeleteStmt, db *catalog.Database) error {
	table, err := db.GetTable(s.Table)
	if err != nil {
		return err
	}
	if s.Where != nil {
		return validateCondition(s.Where, db, table.Headers(), s.Table)
	}
	return nil
}

// splitQualified cuts table.column into its parts.
func splitQualified(name string) (table, column string, qualified bool) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:], true
	}
	return "", name, false
}
