package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Export column headers. These are fixed; importing a question export back
// through ParseQuestionsCSV round-trips cleanly.
var (
	questionExportHeader = []string{"Department", "Risk Category", "Question", "Criteria", "Answer Type", "Points Yes", "Points Partial", "Points No"}
	historyExportHeader  = []string{"Date", "Department", "Auditor", "Score %", "Points Earned", "Max Points", "Questions Answered"}
	detailExportHeader   = []string{"Category", "Question", "Answer", "Points Earned", "Points Possible"}
)

// Export filenames.
const (
	QuestionExportFilename = "questions-export.csv"
	HistoryExportFilename  = "audit-history.csv"
)

// auditDateLayouts are the formats accepted for stored audit dates, most
// specific first.
var auditDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// QuestionCatalogRows builds the question export: one row per question in
// department-then-question iteration order. Departments without questions
// contribute no rows, not even a placeholder.
func QuestionCatalogRows(departments []Department) [][]string {
	rows := [][]string{questionExportHeader}
	for _, dept := range departments {
		for _, q := range dept.Questions {
			rows = append(rows, []string{
				dept.Name,
				q.RiskCategory,
				q.Text,
				q.Criteria,
				string(q.AnswerType),
				strconv.Itoa(q.PointsYes),
				strconv.Itoa(q.PointsPartial),
				strconv.Itoa(q.PointsNo),
			})
		}
	}
	return rows
}

// AuditHistoryRows builds the session history export, one row per session.
func AuditHistoryRows(sessions []AuditSession) [][]string {
	rows := [][]string{historyExportHeader}
	for _, s := range sessions {
		rows = append(rows, []string{
			FormatAuditDate(s.AuditedAt),
			s.DepartmentName,
			s.Auditor,
			strconv.Itoa(s.ScorePercent),
			strconv.Itoa(s.PointsEarned),
			strconv.Itoa(s.MaxPoints),
			strconv.Itoa(s.QuestionsAnswered),
		})
	}
	return rows
}

// FormatAuditDate renders a stored audit date as MM/DD/YYYY. When the
// stored value does not parse it is returned unchanged: a raw string in
// the export beats an "Invalid Date" placeholder.
func FormatAuditDate(raw string) string {
	t, ok := parseAuditDate(raw)
	if !ok {
		return raw
	}
	return t.Format("01/02/2006")
}

func parseAuditDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range auditDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// detailMode selects the row source for a single-audit export. The mode is
// decided once per export and drives one row builder; see AuditDetailRows.
type detailMode int

const (
	// detailSnapshot: answers carry denormalized question snapshots, so the
	// export reflects the questions exactly as they were when audited.
	detailSnapshot detailMode = iota

	// detailLiveJoin: no snapshots, but the department still exists; join
	// its current questions against the answer map.
	detailLiveJoin

	// detailMinimal: no snapshots and no department; the best available
	// export keys rows by question id alone.
	detailMinimal
)

func detailModeFor(session AuditSession, dept *Department) detailMode {
	for _, a := range session.Answers {
		if a.QuestionText != "" {
			return detailSnapshot
		}
	}
	if dept != nil {
		return detailLiveJoin
	}
	return detailMinimal
}

// AuditDetailRows builds the single-audit export: answer rows, a blank
// row, then six summary rows padded to the detail column count.
//
// Questions may have been edited or deleted since the audit was recorded,
// so the row source degrades in three tiers: answer snapshots when
// present, otherwise a join against the live department, otherwise a
// minimal export keyed by question id. dept may be nil.
func AuditDetailRows(session AuditSession, dept *Department) [][]string {
	rows := [][]string{detailExportHeader}

	switch detailModeFor(session, dept) {
	case detailSnapshot:
		rows = append(rows, snapshotRows(session)...)
	case detailLiveJoin:
		rows = append(rows, liveJoinRows(session, dept)...)
	case detailMinimal:
		rows = append(rows, minimalRows(session)...)
	}

	rows = append(rows, make([]string, len(detailExportHeader)))
	rows = append(rows, summaryRows(session)...)
	return rows
}

func snapshotRows(session AuditSession) [][]string {
	rows := make([][]string, 0, len(session.Answers))
	for _, a := range session.Answers {
		rows = append(rows, []string{
			a.RiskCategory,
			a.QuestionText,
			a.Answer,
			strconv.Itoa(a.PointsEarned),
			strconv.Itoa(a.PointsPossible),
		})
	}
	return rows
}

func liveJoinRows(session AuditSession, dept *Department) [][]string {
	answerByQuestion := make(map[uuid.UUID]AuditAnswer, len(session.Answers))
	for _, a := range session.Answers {
		answerByQuestion[a.QuestionID] = a
	}

	rows := make([][]string, 0, len(dept.Questions))
	for _, q := range dept.Questions {
		a, answered := answerByQuestion[q.ID]
		if !answered {
			rows = append(rows, []string{
				q.RiskCategory,
				q.Text,
				AnswerValueSkipped,
				"0",
				strconv.Itoa(q.MaxPoints()),
			})
			continue
		}
		rows = append(rows, []string{
			q.RiskCategory,
			q.Text,
			a.Answer,
			strconv.Itoa(a.PointsEarned),
			strconv.Itoa(a.PointsPossible),
		})
	}
	return rows
}

func minimalRows(session AuditSession) [][]string {
	rows := make([][]string, 0, len(session.Answers))
	for _, a := range session.Answers {
		rows = append(rows, []string{
			"",
			a.QuestionID.String(),
			a.Answer,
			strconv.Itoa(a.PointsEarned),
			"",
		})
	}
	return rows
}

func summaryRows(session AuditSession) [][]string {
	pad := func(label, value string) []string {
		row := make([]string, len(detailExportHeader))
		row[0] = label
		row[1] = value
		return row
	}
	return [][]string{
		pad("Department", session.DepartmentName),
		pad("Auditor", session.Auditor),
		pad("Date", FormatAuditDate(session.AuditedAt)),
		pad("Points Earned", strconv.Itoa(session.PointsEarned)),
		pad("Max Points", strconv.Itoa(session.MaxPoints)),
		pad("Score %", strconv.Itoa(session.ScorePercent)),
	}
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// DepartmentSlug lower-cases a department name and replaces whitespace
// runs with single hyphens for use in filenames.
func DepartmentSlug(name string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// AuditDetailFilename names a single-audit export after its department and
// date: audit-<department-slug>-<date>.csv.
func AuditDetailFilename(session AuditSession) string {
	datePart := session.AuditedAt
	if t, ok := parseAuditDate(session.AuditedAt); ok {
		datePart = t.Format("2006-01-02")
	}
	return "audit-" + DepartmentSlug(session.DepartmentName) + "-" + DepartmentSlug(datePart) + ".csv"
}
