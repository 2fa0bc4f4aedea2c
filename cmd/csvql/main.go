// cmd/csvql/main.go
//
// csvql - a single-user relational database over CSV files.
//
// Usage:
//
//	csvql --import-csv ./input          import *.csv files as tables
//	csvql --execute "SELECT * FROM t"   run one SQL statement
//	csvql                               open an interactive shell
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"csvql/pkg/cli"
	"csvql/pkg/config"
	"csvql/pkg/importer"
)

var version = "0.1.0"

type options struct {
	Execute   string `short:"e" long:"execute" description:"Execute a single SQL statement" value-name:"sql"`
	ImportCSV string `long:"import-csv" description:"Import CSV files from a directory" value-name:"dir"`
	ImportPG  string `long:"import-pg" description:"Import tables from a PostgreSQL database" value-name:"conninfo"`
	Config    string `short:"c" long:"config" description:"Read configuration from a YAML file" value-name:"path"`
	Debug     bool   `long:"debug" description:"Pretty-print parsed statements before executing"`
	Version   bool   `long:"version" description:"Show version"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out, errOut io.Writer) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Usage = "[option...]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}

	if opts.Version {
		fmt.Fprintln(out, version)
		return nil
	}

	cfg := config.Default()
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
		if err != nil {
			return err
		}
	}

	switch {
	case opts.ImportCSV != "":
		im := importer.New(cfg, os.Stdin, out, term.IsTerminal(int(os.Stdin.Fd())))
		return im.ImportCSV(opts.ImportCSV)
	case opts.ImportPG != "":
		im := importer.New(cfg, os.Stdin, out, term.IsTerminal(int(os.Stdin.Fd())))
		return im.ImportPostgres(opts.ImportPG)
	case opts.Execute != "":
		runner := cli.NewRunner(cfg, out)
		runner.SetDebug(opts.Debug)
		return runner.Run(opts.Execute)
	default:
		cli.NewShell(cfg, os.Stdin, out, errOut).Run()
		return nil
	}
}
