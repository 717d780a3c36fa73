package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// DefaultDepartmentIcon is assigned to departments created during import.
// The icon can be changed later through the normal department editor.
const DefaultDepartmentIcon = "clipboard"

// ImportDeps are the collaborator calls the reconciler needs. Both
// creation calls hit the external store and are fallible; OnProgress is
// optional.
type ImportDeps struct {
	CreateDepartment func(ctx context.Context, name, icon string) (uuid.UUID, error)
	CreateQuestion   func(ctx context.Context, departmentID uuid.UUID, row ParsedQuestionRow) error
	OnProgress       ProgressFunc
}

// ReconcileImport merges a parsed batch into the existing catalog.
//
// Rows are processed strictly in sequence. Department matching is by
// case-insensitive trimmed name against the existing catalog plus the
// departments created earlier in this same run, so two rows naming the
// same new department trigger exactly one creation call. A failed creation
// call counts the row as failed and moves on; it is never fatal to the
// batch. Cancelling ctx stops the run before the next row begins. The
// caller is expected to have capped the batch size already.
func ReconcileImport(ctx context.Context, rows []ParsedQuestionRow, existing []Department, deps ImportDeps) ImportSummary {
	summary := ImportSummary{Total: len(rows)}

	// departmentIDs starts as the live catalog and accumulates departments
	// created during this run. It lives only for this call.
	departmentIDs := make(map[string]uuid.UUID, len(existing))
	for _, d := range existing {
		departmentIDs[departmentKey(d.Name)] = d.ID
	}

	for i, row := range rows {
		// A cancelled or timed-out run stops here; rows past this point
		// are neither imported nor failed, they were never attempted.
		if ctx.Err() != nil {
			break
		}
		if importRow(ctx, row, departmentIDs, deps) {
			summary.Imported++
		} else {
			summary.Failed++
		}
		if deps.OnProgress != nil {
			deps.OnProgress(i+1, len(rows))
		}
	}

	return summary
}

// importRow creates the department if needed and then the question.
// Returns false on any failure.
func importRow(ctx context.Context, row ParsedQuestionRow, departmentIDs map[string]uuid.UUID, deps ImportDeps) bool {
	name := strings.TrimSpace(row.DepartmentName)
	key := departmentKey(name)

	departmentID, ok := departmentIDs[key]
	if !ok {
		id, err := deps.CreateDepartment(ctx, name, DefaultDepartmentIcon)
		if err != nil {
			return false
		}
		departmentIDs[key] = id
		departmentID = id
	}

	return deps.CreateQuestion(ctx, departmentID, row) == nil
}

func departmentKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
