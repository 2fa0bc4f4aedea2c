// pkg/cli/run.go
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/k0kubun/pp/v3"

	"csvql/pkg/catalog"
	"csvql/pkg/config"
	"csvql/pkg/sql/executor"
	"csvql/pkg/sql/parser"
	"csvql/pkg/sql/validator"
	"csvql/pkg/storage"
)

// Runner executes SQL statements against the configured database and writes
// the user-facing result to its output.
type Runner struct {
	cfg   *config.Config
	out   io.Writer
	debug bool
}

// NewRunner creates a Runner writing results to out.
func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	return &Runner{cfg: cfg, out: out}
}

// SetDebug toggles pretty-printing of parsed statements.
func (r *Runner) SetDebug(debug bool) {
	r.debug = debug
}

// Run parses, validates, and executes one SQL statement.
func (r *Runner) Run(query string) error {
	meta, err := catalog.Load(r.cfg.MetadataPath())
	if err != nil {
		return err
	}

	stmt, err := parser.New(query).Parse()
	if err != nil {
		return err
	}

	if r.debug {
		pp.Fprintln(r.out, stmt)
	}

	if sel, ok := stmt.(*parser.SelectStmt); ok {
		sel.SetDefaultLimit(r.cfg.DefaultLimit)
	}

	if err := validator.Validate(stmt, &meta.Database); err != nil {
		return err
	}

	exec := executor.New(meta, storage.NewStore(r.cfg.DataDir))
	result, err := exec.Execute(stmt)
	if err != nil {
		return err
	}

	switch stmt.(type) {
	case *parser.SelectStmt:
		renderTable(r.out, result.Set)
	case *parser.InsertStmt:
		fmt.Fprintln(r.out, "Inserted row")
	default:
		fmt.Fprintln(r.out, formatAffected(result.AffectedIDs))
	}
	return nil
}

// formatAffected renders a mutation's affected set.
func formatAffected(ids []int64) string {
	switch len(ids) {
	case 0:
		return "0 rows"
	case 1:
		return fmt.Sprintf("1 row: __id=%d", ids[0])
	default:
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return fmt.Sprintf("%d rows: __id=[%s]", len(ids), strings.Join(parts, ", "))
	}
}
