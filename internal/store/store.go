// Package store is the PostgreSQL persistence layer for the audit catalog
// and recorded audit sessions. It implements core.Store on top of a
// pgxpool connection pool.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dstockton/storeaudit/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides catalog and session persistence.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

/* ----------------------------------------
	Departments and questions
---------------------------------------- */

// ListDepartments returns every department with its questions, both in
// stable catalog order.
func (s *Store) ListDepartments(ctx context.Context) ([]core.Department, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, icon
		FROM departments
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []core.Department
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var d core.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Icon); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		index[d.ID] = len(departments)
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	questions, err := s.listAllQuestions(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if i, ok := index[q.DepartmentID]; ok {
			departments[i].Questions = append(departments[i].Questions, q)
		}
	}

	return departments, nil
}

// GetDepartment returns one department with its questions.
func (s *Store) GetDepartment(ctx context.Context, id uuid.UUID) (core.Department, error) {
	var d core.Department
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, icon
		FROM departments
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Icon)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.Department{}, fmt.Errorf("department %s: not found", id)
		}
		return core.Department{}, fmt.Errorf("get department: %w", err)
	}

	d.Questions, err = s.ListQuestions(ctx, id)
	if err != nil {
		return core.Department{}, err
	}
	return d, nil
}

// CreateDepartment inserts a department, or returns the existing one when
// a department with the same name (case-insensitive) already exists.
func (s *Store) CreateDepartment(ctx context.Context, name, icon string) (core.Department, error) {
	d := core.Department{Name: name, Icon: icon}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO departments (id, name, icon)
		VALUES ($1, $2, $3)
		ON CONFLICT ((lower(name))) DO UPDATE SET icon = departments.icon
		RETURNING id, name, icon
	`, uuid.New(), name, icon).Scan(&d.ID, &d.Name, &d.Icon)
	if err != nil {
		return core.Department{}, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

// CreateQuestion appends a question to a department.
func (s *Store) CreateQuestion(ctx context.Context, q core.Question) (core.Question, error) {
	q.ID = uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO questions
			(id, department_id, risk_category, question, criteria, answer_type,
			 points_yes, points_partial, points_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, q.ID, q.DepartmentID, q.RiskCategory, q.Text, q.Criteria, string(q.AnswerType),
		q.PointsYes, q.PointsPartial, q.PointsNo)
	if err != nil {
		return core.Question{}, fmt.Errorf("create question: %s", friendlyPgError(err))
	}
	return q, nil
}

// friendlyPgError maps common Postgres error classes onto messages fit for
// import summaries. Anything unrecognized passes through unchanged.
func friendlyPgError(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return "a matching record already exists"
	case "23514": // check_violation
		return "value rejected by a data constraint"
	case "23503": // foreign_key_violation
		return "referenced record no longer exists"
	default:
		return pgErr.Message
	}
}

// ListQuestions returns a department's questions in insertion order.
func (s *Store) ListQuestions(ctx context.Context, departmentID uuid.UUID) ([]core.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, department_id, risk_category, question, criteria, answer_type,
		       points_yes, points_partial, points_no
		FROM questions
		WHERE department_id = $1
		ORDER BY created_at, id
	`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (s *Store) listAllQuestions(ctx context.Context) ([]core.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, department_id, risk_category, question, criteria, answer_type,
		       points_yes, points_partial, points_no
		FROM questions
		ORDER BY department_id, created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]core.Question, error) {
	var questions []core.Question
	for rows.Next() {
		var q core.Question
		var answerType string
		if err := rows.Scan(&q.ID, &q.DepartmentID, &q.RiskCategory, &q.Text, &q.Criteria,
			&answerType, &q.PointsYes, &q.PointsPartial, &q.PointsNo); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.AnswerType = core.AnswerType(answerType)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

/* ----------------------------------------
	Audit sessions
---------------------------------------- */

// CreateSession records a session and its answers atomically.
func (s *Store) CreateSession(ctx context.Context, session core.AuditSession) (core.AuditSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.AuditSession{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	session.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_sessions
			(id, department_id, department_name, auditor, audited_at,
			 score_percent, points_earned, max_points, questions_answered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, session.ID, nullableUUID(session.DepartmentID), session.DepartmentName,
		session.Auditor, session.AuditedAt, session.ScorePercent,
		session.PointsEarned, session.MaxPoints, session.QuestionsAnswered)
	if err != nil {
		return core.AuditSession{}, fmt.Errorf("create session: %w", err)
	}

	for _, a := range session.Answers {
		_, err = tx.Exec(ctx, `
			INSERT INTO audit_answers
				(id, session_id, question_id, question_text, risk_category,
				 answer, points_earned, points_possible)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), session.ID, a.QuestionID, a.QuestionText, a.RiskCategory,
			a.Answer, a.PointsEarned, a.PointsPossible)
		if err != nil {
			return core.AuditSession{}, fmt.Errorf("create answer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return core.AuditSession{}, fmt.Errorf("commit session: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions without answers, newest first.
// Answers are loaded per-session by GetSession; the history export only
// needs the aggregates.
func (s *Store) ListSessions(ctx context.Context) ([]core.AuditSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, department_id, department_name, auditor, audited_at,
		       score_percent, points_earned, max_points, questions_answered
		FROM audit_sessions
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.AuditSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns one session with its answers.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (core.AuditSession, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, department_id, department_name, auditor, audited_at,
		       score_percent, points_earned, max_points, questions_answered
		FROM audit_sessions
		WHERE id = $1
	`, id)

	session, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.AuditSession{}, fmt.Errorf("session %s: not found", id)
		}
		return core.AuditSession{}, fmt.Errorf("get session: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT question_id, question_text, risk_category, answer,
		       points_earned, points_possible
		FROM audit_answers
		WHERE session_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return core.AuditSession{}, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.AuditAnswer
		if err := rows.Scan(&a.QuestionID, &a.QuestionText, &a.RiskCategory,
			&a.Answer, &a.PointsEarned, &a.PointsPossible); err != nil {
			return core.AuditSession{}, fmt.Errorf("scan answer: %w", err)
		}
		session.Answers = append(session.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return core.AuditSession{}, fmt.Errorf("list answers: %w", err)
	}

	return session, nil
}

func scanSession(row pgx.Row) (core.AuditSession, error) {
	var session core.AuditSession
	var departmentID pgtype.UUID
	err := row.Scan(&session.ID, &departmentID, &session.DepartmentName,
		&session.Auditor, &session.AuditedAt, &session.ScorePercent,
		&session.PointsEarned, &session.MaxPoints, &session.QuestionsAnswered)
	if err != nil {
		return core.AuditSession{}, err
	}
	if departmentID.Valid {
		session.DepartmentID = uuid.UUID(departmentID.Bytes)
	}
	return session, nil
}

// nullableUUID maps the zero UUID to SQL NULL. Sessions keep a NULL
// department reference after the department is deleted.
func nullableUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}
