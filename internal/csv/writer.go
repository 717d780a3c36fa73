package csv

import (
	"fmt"
	"io"
	"strings"
)

// EscapeField serializes a single cell value.
//
// The field is wrapped in double quotes, with internal quotes doubled, if
// and only if it contains a comma, a double quote, a line feed, or a
// carriage return. This mirrors SplitFields exactly, so any value written
// here tokenizes back to itself.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteRow writes one row of cells to w, comma-joined and LF-terminated.
func WriteRow(w io.Writer, cells []string) error {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeField(c)
	}
	if _, err := io.WriteString(w, strings.Join(escaped, ",")+"\n"); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// WriteRows writes every row to w using the canonical escaping rules.
func WriteRows(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		if err := WriteRow(w, row); err != nil {
			return err
		}
	}
	return nil
}
