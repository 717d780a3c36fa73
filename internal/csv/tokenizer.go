// Package csv implements the CSV dialect used for question import and
// audit exports: comma-delimited, optional double-quote quoting with ""
// escapes, and mixed \n, \r\n, and \r line endings.
//
// The tokenizer is intentionally lenient. It never returns an error;
// malformed quoting degrades to best-effort character accumulation so that
// row-level validation (which knows the semantics) can report problems with
// useful line numbers instead of the whole file failing to read.
package csv

import "strings"

// SplitRows splits raw CSV text into one string per row.
//
// A newline inside an open quote does not terminate the row; it is kept
// verbatim in the row text. "\r\n" counts as a single row boundary, as does
// a lone "\r" or "\n". Whitespace-only content after the final terminator
// is dropped, and whitespace-only input yields zero rows.
func SplitRows(text string) []string {
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var rows []string
	var row strings.Builder
	inQuote := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			// A doubled quote toggles twice and nets out, so a plain
			// toggle is sufficient for row-boundary tracking.
			inQuote = !inQuote
			row.WriteByte(c)
		case (c == '\n' || c == '\r') && !inQuote:
			rows = append(rows, row.String())
			row.Reset()
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		default:
			row.WriteByte(c)
		}
	}

	if strings.TrimSpace(row.String()) != "" {
		rows = append(rows, row.String())
	}
	return rows
}

// SplitFields splits a single row into its comma-delimited fields.
//
// A field wrapped in double quotes may contain commas and newlines
// verbatim, and "" inside a quoted field stands for one literal quote.
// Field content is returned untrimmed; trimming is the caller's policy.
func SplitFields(row string) []string {
	var fields []string
	var field strings.Builder
	inQuote := false

	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '"':
			if inQuote && i+1 < len(row) && row[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}

	fields = append(fields, field.String())
	return fields
}
