package core

// ScorePercent converts earned points into a 0-100 percentage, rounded to
// the nearest whole percent. A zero or negative max yields 0 rather than a
// division error; an audit with no scorable questions simply has no score.
func ScorePercent(earned, max int) int {
	if max <= 0 {
		return 0
	}
	return (earned*100 + max/2) / max
}

// SummarizeAnswers computes the aggregate fields of a session from its
// answers: points earned, max points, answered count, and score percent.
// Skipped questions count toward the maximum but not toward answered.
func SummarizeAnswers(answers []AuditAnswer) (earned, max, answered, percent int) {
	for _, a := range answers {
		earned += a.PointsEarned
		max += a.PointsPossible
		if a.Answer != AnswerValueSkipped {
			answered++
		}
	}
	return earned, max, answered, ScorePercent(earned, max)
}

// FilterSessionsByDateRange returns the sessions whose audit date parses
// and falls within [from, to] inclusive. Sessions with unparseable dates
// are excluded; they cannot be placed on a timeline.
func FilterSessionsByDateRange(sessions []AuditSession, from, to string) []AuditSession {
	fromT, okFrom := parseAuditDate(from)
	toT, okTo := parseAuditDate(to)

	var out []AuditSession
	for _, s := range sessions {
		t, ok := parseAuditDate(s.AuditedAt)
		if !ok {
			continue
		}
		if okFrom && t.Before(fromT) {
			continue
		}
		if okTo && t.After(toT) {
			continue
		}
		out = append(out, s)
	}
	return out
}
