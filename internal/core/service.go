package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dstockton/storeaudit/internal/csv"
	"github.com/google/uuid"
)

// ImportTimeout is the maximum duration for an import run.
var ImportTimeout = 10 * time.Minute

// MaxImportRows caps a single import batch. Rows beyond the cap are
// dropped with a warning before reconciliation starts.
var MaxImportRows = 500

// resultRetention is how long a finished import stays queryable.
var resultRetention = 5 * time.Minute

// Store is the persistence boundary the service depends on. The pgx
// implementation lives in internal/store; tests supply an in-memory fake.
type Store interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (Department, error)
	CreateDepartment(ctx context.Context, name, icon string) (Department, error)
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	ListQuestions(ctx context.Context, departmentID uuid.UUID) ([]Question, error)
	ListSessions(ctx context.Context) ([]AuditSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (AuditSession, error)
	CreateSession(ctx context.Context, s AuditSession) (AuditSession, error)
}

// Service coordinates the catalog, audit sessions, CSV imports, and CSV
// exports.
type Service struct {
	store Store

	mu      sync.RWMutex
	imports map[string]*activeImport
}

type activeImport struct {
	ID       string
	FileName string
	Cancel   context.CancelFunc
	Progress ImportProgress
	Summary  *ImportSummary
	Done     chan struct{}

	listenerMu sync.Mutex
	listeners  []chan ImportProgress
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		imports: make(map[string]*activeImport),
	}
}

/* ----------------------------------------
	Catalog and sessions
---------------------------------------- */

// Departments returns the full catalog with questions.
func (s *Service) Departments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

// CreateDepartment adds a department to the catalog.
func (s *Service) CreateDepartment(ctx context.Context, name, icon string) (Department, error) {
	if icon == "" {
		icon = DefaultDepartmentIcon
	}
	return s.store.CreateDepartment(ctx, name, icon)
}

// Questions returns a department's questions in catalog order.
func (s *Service) Questions(ctx context.Context, departmentID uuid.UUID) ([]Question, error) {
	return s.store.ListQuestions(ctx, departmentID)
}

// CreateQuestion adds a single question to a department.
func (s *Service) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	return s.store.CreateQuestion(ctx, q)
}

// Sessions returns all recorded audit sessions, newest first.
func (s *Service) Sessions(ctx context.Context) ([]AuditSession, error) {
	return s.store.ListSessions(ctx)
}

// Session returns one audit session with its answers.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (AuditSession, error) {
	return s.store.GetSession(ctx, id)
}

// RecordAudit persists a completed audit. The aggregate fields (points,
// answered count, score) are recomputed from the answers so that clients
// cannot submit inconsistent summaries.
func (s *Service) RecordAudit(ctx context.Context, session AuditSession) (AuditSession, error) {
	earned, max, answered, percent := SummarizeAnswers(session.Answers)
	session.PointsEarned = earned
	session.MaxPoints = max
	session.QuestionsAnswered = answered
	session.ScorePercent = percent
	return s.store.CreateSession(ctx, session)
}

/* ----------------------------------------
	Question import
---------------------------------------- */

// StartImport begins an asynchronous import of parsed question rows.
// Returns the import ID immediately; use SubscribeProgress for updates and
// Result for the final summary.
func (s *Service) StartImport(ctx context.Context, fileName string, rows []ParsedQuestionRow) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no questions to import")
	}

	var warnings []string
	if len(rows) > MaxImportRows {
		warnings = append(warnings,
			fmt.Sprintf("Import limited to %d rows; %d rows were skipped.", MaxImportRows, len(rows)-MaxImportRows))
		rows = rows[:MaxImportRows]
	}

	importID := uuid.New().String()
	importCtx, cancel := context.WithTimeout(context.Background(), ImportTimeout)

	imp := &activeImport{
		ID:       importID,
		FileName: fileName,
		Cancel:   cancel,
		Progress: ImportProgress{
			ImportID: importID,
			Phase:    ImportStarting,
			FileName: fileName,
			Total:    len(rows),
		},
		Done: make(chan struct{}),
	}

	s.mu.Lock()
	s.imports[importID] = imp
	s.mu.Unlock()

	go s.runImport(importCtx, imp, rows, warnings)

	return importID, nil
}

// runImport performs the reconciliation in the background, publishing
// progress to any subscribers.
func (s *Service) runImport(ctx context.Context, imp *activeImport, rows []ParsedQuestionRow, warnings []string) {
	start := time.Now()

	// Done closes before the listeners so that a subscriber arriving
	// mid-teardown sees the finished state instead of registering a
	// channel nobody will ever close.
	defer func() {
		close(imp.Done)
		imp.closeListeners()
		imp.Cancel()
		s.cleanup(imp.ID, resultRetention)
	}()

	existing, err := s.store.ListDepartments(ctx)
	if err != nil {
		loadErr := fmt.Sprintf("load departments: %v", err)
		imp.setProgress(func(p *ImportProgress) {
			p.Phase = ImportFailed
			p.Error = loadErr
		})
		imp.Summary = &ImportSummary{
			Total:    len(rows),
			Failed:   len(rows),
			Warnings: warnings,
			Error:    loadErr,
			Duration: time.Since(start),
		}
		return
	}

	imp.setProgress(func(p *ImportProgress) {
		p.Phase = ImportRunning
	})

	summary := ReconcileImport(ctx, rows, existing, ImportDeps{
		CreateDepartment: func(ctx context.Context, name, icon string) (uuid.UUID, error) {
			dept, err := s.store.CreateDepartment(ctx, name, icon)
			if err != nil {
				return uuid.Nil, err
			}
			return dept.ID, nil
		},
		CreateQuestion: func(ctx context.Context, departmentID uuid.UUID, row ParsedQuestionRow) error {
			_, err := s.store.CreateQuestion(ctx, Question{
				DepartmentID:  departmentID,
				RiskCategory:  row.RiskCategory,
				Text:          row.Text,
				Criteria:      row.Criteria,
				AnswerType:    row.AnswerType,
				PointsYes:     row.PointsYes,
				PointsPartial: row.PointsPartial,
				PointsNo:      row.PointsNo,
			})
			return err
		},
		OnProgress: func(completed, total int) {
			imp.setProgress(func(p *ImportProgress) {
				p.Completed = completed
				p.Total = total
			})
		},
	})

	// A run cut short by its context is cancelled or timed out, not
	// complete; rows past the cutoff were never attempted.
	phase := ImportComplete
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		phase = ImportCancelled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		phase = ImportFailed
		summary.Error = "import timed out"
	}

	summary.Warnings = append(warnings, summary.Warnings...)
	summary.Duration = time.Since(start)
	imp.Summary = &summary

	imp.setProgress(func(p *ImportProgress) {
		p.Phase = phase
		p.Imported = summary.Imported
		p.Failed = summary.Failed
		p.Error = summary.Error
	})
}

// SubscribeProgress returns a channel of progress updates for an import.
// The channel is closed when the import finishes.
func (s *Service) SubscribeProgress(importID string) (<-chan ImportProgress, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown import: %s", importID)
	}

	ch := make(chan ImportProgress, 16)

	imp.listenerMu.Lock()
	select {
	case <-imp.Done:
		// Already finished: deliver the final snapshot and close.
		ch <- imp.Progress
		close(ch)
	default:
		imp.listeners = append(imp.listeners, ch)
		ch <- imp.Progress
	}
	imp.listenerMu.Unlock()

	return ch, nil
}

// Result returns the final summary of a finished import, or an error if
// the import is unknown or still running.
func (s *Service) Result(importID string) (*ImportSummary, error) {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown import: %s", importID)
	}

	select {
	case <-imp.Done:
	default:
		return nil, fmt.Errorf("import %s is still running", importID)
	}

	return imp.Summary, nil
}

// CancelImport aborts a running import. In-flight row creations run to
// completion; subsequent rows are not processed.
func (s *Service) CancelImport(importID string) error {
	s.mu.RLock()
	imp, ok := s.imports[importID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown import: %s", importID)
	}
	imp.Cancel()
	return nil
}

// cleanup removes a finished import from the registry after a delay so
// that late result polls still succeed.
func (s *Service) cleanup(importID string, after time.Duration) {
	time.AfterFunc(after, func() {
		s.mu.Lock()
		delete(s.imports, importID)
		s.mu.Unlock()
	})
}

// setProgress mutates the shared progress snapshot and fans the update out
// to listeners. listenerMu guards the snapshot as well as the listener set,
// so SubscribeProgress never copies a half-written update.
func (imp *activeImport) setProgress(update func(p *ImportProgress)) {
	imp.listenerMu.Lock()
	defer imp.listenerMu.Unlock()
	update(&imp.Progress)
	for _, ch := range imp.listeners {
		select {
		case ch <- imp.Progress:
		default:
			// Slow listener; drop the update rather than block the import.
		}
	}
}

func (imp *activeImport) closeListeners() {
	imp.listenerMu.Lock()
	defer imp.listenerMu.Unlock()
	for _, ch := range imp.listeners {
		close(ch)
	}
	imp.listeners = nil
}

/* ----------------------------------------
	Exports
---------------------------------------- */

// WriteQuestionExport writes the full question catalog as CSV.
func (s *Service) WriteQuestionExport(ctx context.Context, w io.Writer) error {
	departments, err := s.store.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("load departments: %w", err)
	}
	return csv.WriteRows(w, QuestionCatalogRows(departments))
}

// WriteHistoryExport writes the audit session history as CSV.
func (s *Service) WriteHistoryExport(ctx context.Context, w io.Writer) error {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	return csv.WriteRows(w, AuditHistoryRows(sessions))
}

// WriteAuditDetailExport writes a single audit's detail CSV and returns
// the suggested filename. A missing department is not an error; the
// export degrades to the snapshot or minimal row source.
func (s *Service) WriteAuditDetailExport(ctx context.Context, sessionID uuid.UUID, w io.Writer) (string, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	var dept *Department
	if session.DepartmentID != uuid.Nil {
		if d, err := s.store.GetDepartment(ctx, session.DepartmentID); err == nil {
			dept = &d
		}
	}

	if err := csv.WriteRows(w, AuditDetailRows(session, dept)); err != nil {
		return "", err
	}
	return AuditDetailFilename(session), nil
}
