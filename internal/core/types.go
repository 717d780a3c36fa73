package core

import "time"

// ParsedQuestionRow is one validated question from an import CSV.
// It is transient: produced by ParseQuestionsCSV, consumed by the
// reconciler (or discarded when the user cancels), never persisted as-is.
type ParsedQuestionRow struct {
	DepartmentName string     `json:"departmentName"`
	RiskCategory   string     `json:"riskCategory"`
	Text           string     `json:"question"`
	Criteria       string     `json:"criteria"`
	AnswerType     AnswerType `json:"answerType"`
	PointsYes      int        `json:"pointsYes"`
	PointsPartial  int        `json:"pointsPartial"`
	PointsNo       int        `json:"pointsNo"`
}

// ParseResult is the outcome of parsing an import CSV.
//
// Every input row contributes to at most one of Questions or Errors, and
// may independently contribute warnings (duplicates). Structural failures
// (empty file, missing headers) short-circuit with an empty question list.
type ParseResult struct {
	Questions []ParsedQuestionRow `json:"questions"`
	Errors    []string            `json:"errors"`
	Warnings  []string            `json:"warnings"`
}

// ImportSummary is the aggregate outcome of a reconciliation run.
// It does not identify which rows failed; per-row diagnostics belong to
// the parse stage, where the row text is still available.
type ImportSummary struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Total    int           `json:"total"`
	Warnings []string      `json:"warnings,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// ImportPhase indicates the current stage of an import run.
type ImportPhase string

const (
	ImportStarting  ImportPhase = "starting"
	ImportRunning   ImportPhase = "importing"
	ImportComplete  ImportPhase = "complete"
	ImportFailed    ImportPhase = "failed"
	ImportCancelled ImportPhase = "cancelled"
)

// ImportProgress is a point-in-time snapshot of an import run.
type ImportProgress struct {
	ImportID  string      `json:"importId"`
	Phase     ImportPhase `json:"phase"`
	FileName  string      `json:"fileName,omitempty"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Imported  int         `json:"imported"`
	Failed    int         `json:"failed"`
	Error     string      `json:"error,omitempty"`
}

// Percent returns the progress as a percentage (0-100).
func (p ImportProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return (p.Completed * 100) / p.Total
}

// ProgressFunc is called after each reconciled row, in order, exactly once
// per row including failed rows.
type ProgressFunc func(completed, total int)
