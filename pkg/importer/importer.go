// pkg/importer/importer.go
// One-shot loaders that turn external data into a catalog and table files.
// Import refuses to touch a data directory that already holds anything.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"csvql/pkg/config"
	"csvql/pkg/types"
)

// Importer ingests external data into a fresh catalog and data directory.
type Importer struct {
	cfg         *config.Config
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates an Importer. With interactive set, each file and each column is
// confirmed on the prompt; non-interactive runs accept every file and default
// every column to str.
func New(cfg *config.Config, in io.Reader, out io.Writer, interactive bool) *Importer {
	return &Importer{
		cfg:         cfg,
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// prepareDataDir ensures an empty data directory.
func (im *Importer) prepareDataDir() error {
	entries, err := os.ReadDir(im.cfg.DataDir)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("data directory %s is not empty, will not overwrite", im.cfg.DataDir)
	}
	return os.MkdirAll(im.cfg.DataDir, 0o755)
}

// confirm asks a yes/no question, defaulting to yes.
func (im *Importer) confirm(prompt string) bool {
	fmt.Fprint(im.out, prompt)
	answer, err := im.in.ReadString('\n')
	if err != nil && answer == "" {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(answer), "n")
}

// promptType asks for a column's type, defaulting to str.
func (im *Importer) promptType(tableName, columnName string) (types.ColumnType, error) {
	fmt.Fprintf(im.out, "Enter type for column %s.%s (int, float, str (default), datetime): ", tableName, columnName)
	answer, err := im.in.ReadString('\n')
	if err != nil && answer == "" {
		return types.TypeStr, nil
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return types.TypeStr, nil
	}
	ct := types.ColumnType(answer)
	if !ct.Valid() {
		return "", fmt.Errorf("invalid column type: %s", answer)
	}
	return ct, nil
}
