package core

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestQuestionCatalogRows(t *testing.T) {
	departments := []Department{
		{
			Name: "Bakery",
			Questions: []Question{
				{RiskCategory: "Safety", Text: "Oven clean?", Criteria: "Check", AnswerType: AnswerYesNo, PointsYes: 5, PointsPartial: 0, PointsNo: 0},
				{RiskCategory: "Quality", Text: "Bread fresh?", Criteria: "", AnswerType: AnswerYesNoPartial, PointsYes: 4, PointsPartial: 2, PointsNo: 0},
			},
		},
		{Name: "Empty Dept"}, // zero questions: contributes zero rows
		{
			Name: "Deli",
			Questions: []Question{
				{RiskCategory: "Safety", Text: "Slicer guarded?", AnswerType: AnswerYesNo, PointsYes: 5},
			},
		},
	}

	rows := QuestionCatalogRows(departments)

	if len(rows) != 4 { // header + 3 questions
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	expectedHeader := []string{"Department", "Risk Category", "Question", "Criteria", "Answer Type", "Points Yes", "Points Partial", "Points No"}
	if !reflect.DeepEqual(rows[0], expectedHeader) {
		t.Errorf("header = %v", rows[0])
	}
	// Department-then-question iteration order.
	if rows[1][0] != "Bakery" || rows[2][0] != "Bakery" || rows[3][0] != "Deli" {
		t.Errorf("department order wrong: %v %v %v", rows[1][0], rows[2][0], rows[3][0])
	}
	if rows[2][4] != "yes_no_partial" || rows[2][6] != "2" {
		t.Errorf("second question row = %v", rows[2])
	}
}

func TestAuditHistoryRows(t *testing.T) {
	sessions := []AuditSession{
		{AuditedAt: "2026-03-15", DepartmentName: "Bakery", Auditor: "Sam", ScorePercent: 87, PointsEarned: 26, MaxPoints: 30, QuestionsAnswered: 6},
		{AuditedAt: "not a date", DepartmentName: "Deli", Auditor: "Kim", ScorePercent: 50, PointsEarned: 5, MaxPoints: 10, QuestionsAnswered: 2},
	}

	rows := AuditHistoryRows(sessions)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[1][0] != "03/15/2026" {
		t.Errorf("date = %q, want 03/15/2026", rows[1][0])
	}
	// Unparseable dates pass through unchanged rather than becoming a
	// placeholder.
	if rows[2][0] != "not a date" {
		t.Errorf("fallback date = %q, want raw value", rows[2][0])
	}
	expected := []string{"03/15/2026", "Bakery", "Sam", "87", "26", "30", "6"}
	if !reflect.DeepEqual(rows[1], expected) {
		t.Errorf("row = %v, want %v", rows[1], expected)
	}
}

func TestFormatAuditDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "iso date", input: "2026-01-05", expected: "01/05/2026"},
		{name: "rfc3339", input: "2026-01-05T09:30:00Z", expected: "01/05/2026"},
		{name: "already us format", input: "01/05/2026", expected: "01/05/2026"},
		{name: "garbage passes through", input: "last tuesday", expected: "last tuesday"},
		{name: "empty passes through", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAuditDate(tt.input); got != tt.expected {
				t.Errorf("FormatAuditDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAuditDetailRowsSnapshotMode(t *testing.T) {
	// Answers carry question-text snapshots, so the export must match the
	// snapshots even though the live department has entirely different
	// questions now.
	session := AuditSession{
		DepartmentName: "Bakery",
		Auditor:        "Sam",
		AuditedAt:      "2026-02-01",
		PointsEarned:   8,
		MaxPoints:      10,
		ScorePercent:   80,
		Answers: []AuditAnswer{
			{QuestionID: uuid.New(), QuestionText: "Old question A?", RiskCategory: "Safety", Answer: AnswerValueYes, PointsEarned: 5, PointsPossible: 5},
			{QuestionID: uuid.New(), QuestionText: "Old question B?", RiskCategory: "Quality", Answer: AnswerValuePartial, PointsEarned: 3, PointsPossible: 5},
		},
	}
	dept := &Department{
		Name: "Bakery",
		Questions: []Question{
			{ID: uuid.New(), Text: "Completely new question?", AnswerType: AnswerYesNo, PointsYes: 5},
		},
	}

	rows := AuditDetailRows(session, dept)

	// header + 2 answers + blank + 6 summary rows
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	if rows[1][1] != "Old question A?" || rows[2][1] != "Old question B?" {
		t.Errorf("snapshot rows = %v %v", rows[1], rows[2])
	}
	if rows[2][2] != AnswerValuePartial || rows[2][3] != "3" {
		t.Errorf("answer row = %v", rows[2])
	}

	// Blank separator row padded to full width.
	if !reflect.DeepEqual(rows[3], []string{"", "", "", "", ""}) {
		t.Errorf("separator row = %v", rows[3])
	}

	// Summary rows padded to the detail column count.
	if rows[4][0] != "Department" || rows[4][1] != "Bakery" || len(rows[4]) != 5 {
		t.Errorf("summary row = %v", rows[4])
	}
	if rows[9][0] != "Score %" || rows[9][1] != "80" {
		t.Errorf("score row = %v", rows[9])
	}
}

func TestAuditDetailRowsLiveJoinMode(t *testing.T) {
	q1 := Question{ID: uuid.New(), RiskCategory: "Safety", Text: "Q1?", AnswerType: AnswerYesNo, PointsYes: 5}
	q2 := Question{ID: uuid.New(), RiskCategory: "Safety", Text: "Q2?", AnswerType: AnswerYesNoPartial, PointsYes: 4, PointsPartial: 2}
	dept := &Department{Name: "Deli", Questions: []Question{q1, q2}}

	// No snapshots on the answers; only q1 was answered.
	session := AuditSession{
		DepartmentName: "Deli",
		Answers: []AuditAnswer{
			{QuestionID: q1.ID, Answer: AnswerValueYes, PointsEarned: 5, PointsPossible: 5},
		},
	}

	rows := AuditDetailRows(session, dept)

	if rows[1][1] != "Q1?" || rows[1][2] != AnswerValueYes {
		t.Errorf("answered row = %v", rows[1])
	}
	// Unanswered live questions are exported as skipped with 0 points.
	if rows[2][1] != "Q2?" || rows[2][2] != AnswerValueSkipped || rows[2][3] != "0" || rows[2][4] != "4" {
		t.Errorf("skipped row = %v", rows[2])
	}
}

func TestAuditDetailRowsMinimalMode(t *testing.T) {
	id := uuid.New()
	session := AuditSession{
		DepartmentName: "Closed Dept",
		Answers: []AuditAnswer{
			{QuestionID: id, Answer: AnswerValueNo, PointsEarned: 0, PointsPossible: 5},
		},
	}

	rows := AuditDetailRows(session, nil)

	// Keyed by question id, category and points-possible left empty.
	if rows[1][0] != "" || rows[1][1] != id.String() || rows[1][2] != AnswerValueNo || rows[1][4] != "" {
		t.Errorf("minimal row = %v", rows[1])
	}
}

func TestDepartmentSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bakery", "bakery"},
		{"Front  Of   House", "front-of-house"},
		{"  Deli Counter ", "deli-counter"},
	}
	for _, tt := range tests {
		if got := DepartmentSlug(tt.input); got != tt.expected {
			t.Errorf("DepartmentSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestAuditDetailFilename(t *testing.T) {
	session := AuditSession{DepartmentName: "Front Of House", AuditedAt: "2026-03-15T10:00:00Z"}
	if got := AuditDetailFilename(session); got != "audit-front-of-house-2026-03-15.csv" {
		t.Errorf("filename = %q", got)
	}

	// Unparseable date: raw value is slugged into the name.
	session = AuditSession{DepartmentName: "Deli", AuditedAt: "spring audit"}
	if got := AuditDetailFilename(session); got != "audit-deli-spring-audit.csv" {
		t.Errorf("filename = %q", got)
	}
}
