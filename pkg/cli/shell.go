// pkg/cli/shell.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/config"
)

// Shell provides a read-eval-print loop over the one-shot runner. SQL
// statements are terminated with a semicolon and may span multiple lines;
// dot commands take effect immediately.
type Shell struct {
	cfg       *config.Config
	runner    *Runner
	scanner   *bufio.Scanner
	output    io.Writer
	errOutput io.Writer
}

// NewShell creates a Shell reading statements from input.
func NewShell(cfg *config.Config, input io.Reader, output, errOutput io.Writer) *Shell {
	return &Shell{
		cfg:       cfg,
		runner:    NewRunner(cfg, output),
		scanner:   bufio.NewScanner(input),
		output:    output,
		errOutput: errOutput,
	}
}

// Run reads and executes statements until EOF or .exit.
func (s *Shell) Run() {
	fmt.Fprintln(s.output, "csvql version 0.1.0")
	fmt.Fprintln(s.output, "Enter \".help\" for usage hints.")

	for {
		stmt, eof := s.readStatement()

		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			if strings.HasPrefix(stmt, ".") {
				if quit := s.handleDotCommand(stmt); quit {
					return
				}
			} else if err := s.runner.Run(stmt); err != nil {
				fmt.Fprintf(s.errOutput, "Error: %v\n", err)
			}
		}

		if eof {
			fmt.Fprintln(s.output)
			return
		}
	}
}

// readStatement accumulates input lines until a line ends the statement with
// a semicolon. Dot commands complete on their first line.
func (s *Shell) readStatement() (string, bool) {
	var sb strings.Builder

	prompt := "csvql> "
	for {
		fmt.Fprint(s.output, prompt)
		if !s.scanner.Scan() {
			return sb.String(), true
		}
		line := s.scanner.Text()

		if sb.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			return strings.TrimSpace(line), false
		}

		sb.WriteString(line)
		sb.WriteString("\n")

		if strings.HasSuffix(strings.TrimRight(line, " \t"), ";") {
			return sb.String(), false
		}
		prompt = "  ...> "
	}
}

// handleDotCommand processes special dot commands. Returns true on exit.
func (s *Shell) handleDotCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		return true
	case ".help":
		s.printHelp()
	case ".tables":
		s.showTables()
	case ".schema":
		if len(parts) > 1 {
			s.showSchema(parts[1])
		} else {
			s.showAllSchemas()
		}
	default:
		fmt.Fprintf(s.errOutput, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(s.errOutput, "Use \".help\" for usage hints.")
	}
	return false
}

// printHelp displays help information.
func (s *Shell) printHelp() {
	help := `
.exit              Exit this program
.help              Show this help message
.quit              Exit this program
.schema [TABLE]    Show columns for table(s)
.tables            List all tables

Enter SQL statements terminated with a semicolon.
Multi-line statements are supported.
`
	fmt.Fprintln(s.output, help)
}

// showTables lists all tables in the database.
func (s *Shell) showTables() {
	meta, err := catalog.Load(s.cfg.MetadataPath())
	if err != nil {
		fmt.Fprintf(s.errOutput, "Error: %v\n", err)
		return
	}

	if len(meta.Database.Tables) == 0 {
		fmt.Fprintln(s.output, "(no tables)")
		return
	}
	for _, table := range meta.Database.Tables {
		fmt.Fprintln(s.output, table.Name)
	}
}

// showSchema shows the columns of a specific table.
func (s *Shell) showSchema(tableName string) {
	meta, err := catalog.Load(s.cfg.MetadataPath())
	if err != nil {
		fmt.Fprintf(s.errOutput, "Error: %v\n", err)
		return
	}

	table, err := meta.Database.GetTable(tableName)
	if err != nil {
		fmt.Fprintf(s.errOutput, "Error: %v\n", err)
		return
	}
	s.printSchema(table)
}

// showAllSchemas shows the columns of every table.
func (s *Shell) showAllSchemas() {
	meta, err := catalog.Load(s.cfg.MetadataPath())
	if err != nil {
		fmt.Fprintf(s.errOutput, "Error: %v\n", err)
		return
	}

	for i := range meta.Database.Tables {
		s.printSchema(&meta.Database.Tables[i])
	}
}

func (s *Shell) printSchema(table *catalog.Table) {
	fmt.Fprintf(s.output, "%s (file: %s, next_id: %d)\n", table.Name, table.File, table.NextID)
	for _, col := range table.Columns {
		fmt.Fprintf(s.output, "  %s %s\n", col.Name, col.Type)
	}
}
