// Package core provides the business logic for the store-audit tracker:
// the question catalog, audit sessions, CSV question import, and the
// CSV export builders. This package has no HTTP or storage dependencies.
package core

import "github.com/google/uuid"

// AnswerType is how a question can be answered during an audit.
type AnswerType string

const (
	// AnswerYesNo is a binary pass/fail question.
	AnswerYesNo AnswerType = "yes_no"

	// AnswerYesNoPartial allows partial credit between pass and fail.
	AnswerYesNoPartial AnswerType = "yes_no_partial"
)

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	return t == AnswerYesNo || t == AnswerYesNoPartial
}

// Question is a single checklist item belonging to a department.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	DepartmentID  uuid.UUID  `json:"department_id"`
	RiskCategory  string     `json:"risk_category"`
	Text          string     `json:"question"`
	Criteria      string     `json:"criteria"`
	AnswerType    AnswerType `json:"answer_type"`
	PointsYes     int        `json:"points_yes"`
	PointsPartial int        `json:"points_partial"`
	PointsNo      int        `json:"points_no"`
}

// MaxPoints returns the highest score the question can contribute.
func (q Question) MaxPoints() int {
	max := q.PointsYes
	if q.PointsPartial > max {
		max = q.PointsPartial
	}
	if q.PointsNo > max {
		max = q.PointsNo
	}
	return max
}

// Department groups questions for one area of the store.
type Department struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	Questions []Question `json:"questions,omitempty"`
}

// AuditAnswer records the outcome of one question within an audit session.
//
// QuestionText and RiskCategory are denormalized snapshots taken when the
// audit is recorded. Questions can be edited or deleted afterwards, so the
// snapshot is what preserves historical fidelity in exports. Sessions
// recorded before snapshotting existed carry empty snapshot fields.
type AuditAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	QuestionText   string    `json:"question_text"`
	RiskCategory   string    `json:"risk_category"`
	Answer         string    `json:"answer"`
	PointsEarned   int       `json:"points_earned"`
	PointsPossible int       `json:"points_possible"`
}

// Answer values recorded for a question.
const (
	AnswerValueYes     = "yes"
	AnswerValueNo      = "no"
	AnswerValuePartial = "partial"
	AnswerValueSkipped = "skipped"
)

// AuditSession is one completed audit of a department.
//
// AuditedAt is kept as the raw string supplied when the audit was
// recorded. Exports parse it for display and fall back to the raw value
// when it does not parse, rather than emitting a bogus placeholder.
type AuditSession struct {
	ID                uuid.UUID     `json:"id"`
	DepartmentID      uuid.UUID     `json:"department_id"` // zero when the department was deleted
	DepartmentName    string        `json:"department_name"`
	Auditor           string        `json:"auditor"`
	AuditedAt         string        `json:"audited_at"`
	ScorePercent      int           `json:"score_percent"`
	PointsEarned      int           `json:"points_earned"`
	MaxPoints         int           `json:"max_points"`
	QuestionsAnswered int           `json:"questions_answered"`
	Answers           []AuditAnswer `json:"answers,omitempty"`
}
