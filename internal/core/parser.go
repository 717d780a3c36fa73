package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dstockton/storeaudit/internal/csv"
)

// Default point values applied when a points column is left blank.
// A blank cell means "use the default"; a present-but-invalid cell is an
// error. Do not collapse the two cases.
const (
	DefaultPointsYes     = 5
	DefaultPointsPartial = 3
	DefaultPointsNo      = 0
)

// DefaultRiskCategory is used when the risk category column is blank.
const DefaultRiskCategory = "General"

// requiredHeaders are the columns an import CSV must contain, matched
// case-insensitively and in any order. Extra columns are ignored.
var requiredHeaders = []string{
	"department",
	"risk category",
	"question",
	"criteria",
	"answer type",
	"points yes",
	"points partial",
	"points no",
}

// answerTypeSeparators collapses whitespace and slash runs so that values
// like "Yes / No / Partial" normalize to "yes_no_partial".
var answerTypeSeparators = regexp.MustCompile(`[\s/]+`)

// ParseQuestionsCSV parses raw CSV text into a batch of question rows.
//
// The function never fails outright: structural problems (empty file,
// missing headers) produce a single error and an empty question list,
// while row-level problems exclude only the offending row. Row numbers in
// messages are 1-based positions in the original text, counting the header
// as row 1.
func ParseQuestionsCSV(text string) ParseResult {
	var result ParseResult

	rows := csv.SplitRows(strings.TrimSpace(text))
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "CSV file is empty.")
		return result
	}

	colIndex, missing := indexHeader(csv.SplitFields(rows[0]))
	if len(missing) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("CSV is missing required columns: %s", strings.Join(missing, ", ")))
		return result
	}

	dataRows := rows[1:]
	if len(dataRows) == 0 {
		result.Warnings = append(result.Warnings, "CSV contains only headers, no data rows.")
		return result
	}

	// Dedup key is case-insensitive department name + question text.
	// Duplicates are flagged, not dropped; the user decides at review time.
	seen := make(map[string]bool)

	for i, rowText := range dataRows {
		rowNum := i + 2 // header is row 1

		if strings.TrimSpace(rowText) == "" {
			continue
		}

		fields := csv.SplitFields(rowText)
		cell := func(name string) string {
			pos := colIndex[name]
			if pos >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[pos])
		}

		dept := cell("department")
		if dept == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing department name", rowNum))
			continue
		}

		questionText := cell("question")
		if questionText == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing question", rowNum))
			continue
		}

		answerType, err := normalizeAnswerType(cell("answer type"))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, err))
			continue
		}

		pointsYes, err := parsePoints(cell("points yes"), DefaultPointsYes)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Points Yes %s", rowNum, err))
			continue
		}
		pointsPartial, err := parsePoints(cell("points partial"), DefaultPointsPartial)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Points Partial %s", rowNum, err))
			continue
		}
		pointsNo, err := parsePoints(cell("points no"), DefaultPointsNo)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Points No %s", rowNum, err))
			continue
		}

		// Partial credit is meaningless for a binary answer type, even if
		// the CSV supplied a nonzero value.
		if answerType == AnswerYesNo {
			pointsPartial = 0
		}

		risk := cell("risk category")
		if risk == "" {
			risk = DefaultRiskCategory
		}

		key := strings.ToLower(dept) + "::" + strings.ToLower(questionText)
		if seen[key] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Row %d: Duplicate question %q in %q", rowNum, questionText, dept))
		} else {
			seen[key] = true
		}

		result.Questions = append(result.Questions, ParsedQuestionRow{
			DepartmentName: dept,
			RiskCategory:   risk,
			Text:           questionText,
			Criteria:       cell("criteria"),
			AnswerType:     answerType,
			PointsYes:      pointsYes,
			PointsPartial:  pointsPartial,
			PointsNo:       pointsNo,
		})
	}

	return result
}

// indexHeader builds a lowercase header-name -> column-index lookup and
// reports which required headers are absent. The first occurrence of a
// duplicated header wins.
func indexHeader(header []string) (map[string]int, []string) {
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, exists := colIndex[name]; !exists {
			colIndex[name] = i
		}
	}

	var missing []string
	for _, name := range requiredHeaders {
		if _, ok := colIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	return colIndex, missing
}

// normalizeAnswerType maps raw CSV values onto the AnswerType enum.
// Blank defaults to yes_no. "Yes/No Partial", "YES NO", and similar
// spellings are accepted; anything else is an error naming the raw value.
func normalizeAnswerType(raw string) (AnswerType, error) {
	if raw == "" {
		return AnswerYesNo, nil
	}

	normalized := answerTypeSeparators.ReplaceAllString(strings.ToLower(raw), "_")
	t := AnswerType(normalized)
	if !t.Valid() {
		return "", fmt.Errorf("Invalid answer type %q (valid values: %s, %s)", raw, AnswerYesNo, AnswerYesNoPartial)
	}
	return t, nil
}

// parsePoints parses a points cell. Blank means the default; a value that
// is present must be a non-negative integer.
func parsePoints(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", raw)
	}
	return v, nil
}
