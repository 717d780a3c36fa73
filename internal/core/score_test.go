package core

import (
	"testing"
)

func TestScorePercent(t *testing.T) {
	tests := []struct {
		name     string
		earned   int
		max      int
		expected int
	}{
		{name: "perfect score", earned: 30, max: 30, expected: 100},
		{name: "zero score", earned: 0, max: 30, expected: 0},
		{name: "rounds up", earned: 26, max: 30, expected: 87},
		{name: "rounds down", earned: 25, max: 30, expected: 83},
		{name: "zero max yields zero", earned: 10, max: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScorePercent(tt.earned, tt.max); got != tt.expected {
				t.Errorf("ScorePercent(%d, %d) = %d, want %d", tt.earned, tt.max, got, tt.expected)
			}
		})
	}
}

func TestSummarizeAnswers(t *testing.T) {
	answers := []AuditAnswer{
		{Answer: AnswerValueYes, PointsEarned: 5, PointsPossible: 5},
		{Answer: AnswerValuePartial, PointsEarned: 3, PointsPossible: 5},
		{Answer: AnswerValueSkipped, PointsEarned: 0, PointsPossible: 5},
	}

	earned, max, answered, percent := SummarizeAnswers(answers)
	if earned != 8 || max != 15 {
		t.Errorf("earned/max = %d/%d, want 8/15", earned, max)
	}
	// Skipped questions count toward max but not toward answered.
	if answered != 2 {
		t.Errorf("answered = %d, want 2", answered)
	}
	if percent != ScorePercent(8, 15) {
		t.Errorf("percent = %d", percent)
	}
}

func TestFilterSessionsByDateRange(t *testing.T) {
	sessions := []AuditSession{
		{DepartmentName: "A", AuditedAt: "2026-01-10"},
		{DepartmentName: "B", AuditedAt: "2026-02-10"},
		{DepartmentName: "C", AuditedAt: "2026-03-10"},
		{DepartmentName: "D", AuditedAt: "someday"}, // unparseable, excluded
	}

	got := FilterSessionsByDateRange(sessions, "2026-01-15", "2026-03-01")
	if len(got) != 1 || got[0].DepartmentName != "B" {
		t.Errorf("filtered = %+v", got)
	}

	// Open-ended bounds.
	got = FilterSessionsByDateRange(sessions, "", "2026-02-28")
	if len(got) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(got))
	}
	got = FilterSessionsByDateRange(sessions, "", "")
	if len(got) != 3 {
		t.Errorf("expected 3 parseable sessions, got %d", len(got))
	}
}

func TestQuestionMaxPoints(t *testing.T) {
	q := Question{PointsYes: 5, PointsPartial: 3, PointsNo: 0}
	if q.MaxPoints() != 5 {
		t.Errorf("MaxPoints = %d, want 5", q.MaxPoints())
	}
	// Inverted scoring still takes the highest value.
	q = Question{PointsYes: 0, PointsPartial: 2, PointsNo: 4}
	if q.MaxPoints() != 4 {
		t.Errorf("MaxPoints = %d, want 4", q.MaxPoints())
	}
}
