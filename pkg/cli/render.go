// pkg/cli/render.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"csvql/pkg/resultset"
)

// renderTable formats a result set as an ASCII table. Cell text uses the
// same encoding as table files, so floats show their four stored decimals
// and datetimes their ISO-8601 form.
func renderTable(out io.Writer, rs *resultset.ResultSet) {
	headers := rs.Headers()
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rs.Rows {
		for i, v := range row {
			if s := v.Encode(); len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	printSeparator(out, widths)
	printRow(out, headers, widths)
	printSeparator(out, widths)
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Encode()
		}
		printRow(out, cells, widths)
	}
	printSeparator(out, widths)

	fmt.Fprintf(out, "%d row(s)\n", len(rs.Rows))
}

// printSeparator prints a horizontal line separator.
func printSeparator(out io.Writer, widths []int) {
	fmt.Fprint(out, "+")
	for _, w := range widths {
		fmt.Fprint(out, strings.Repeat("-", w+2))
		fmt.Fprint(out, "+")
	}
	fmt.Fprintln(out)
}

// printRow prints a row of string values.
func printRow(out io.Writer, values []string, widths []int) {
	fmt.Fprint(out, "|")
	for i, val := range values {
		fmt.Fprintf(out, " %-*s |", widths[i], val)
	}
	fmt.Fprintln(out)
}
