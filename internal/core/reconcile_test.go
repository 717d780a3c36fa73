package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestReconcileImportMatchesExistingDepartments(t *testing.T) {
	existing := []Department{
		{ID: uuid.New(), Name: "Bakery"},
	}

	var created []string
	var questionDepts []uuid.UUID

	rows := []ParsedQuestionRow{
		{DepartmentName: "bakery", Text: "Q1?"},   // case-insensitive match
		{DepartmentName: " Bakery ", Text: "Q2?"}, // trimmed match
	}

	summary := ReconcileImport(context.Background(), rows, existing, ImportDeps{
		CreateDepartment: func(_ context.Context, name, _ string) (uuid.UUID, error) {
			created = append(created, name)
			return uuid.New(), nil
		},
		CreateQuestion: func(_ context.Context, departmentID uuid.UUID, _ ParsedQuestionRow) error {
			questionDepts = append(questionDepts, departmentID)
			return nil
		},
	})

	if len(created) != 0 {
		t.Errorf("expected no department creations, got %v", created)
	}
	if summary.Imported != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	for _, id := range questionDepts {
		if id != existing[0].ID {
			t.Errorf("question attached to %s, want %s", id, existing[0].ID)
		}
	}
}

func TestReconcileImportCreatesNewDepartmentOnce(t *testing.T) {
	var created []string
	newID := uuid.New()

	rows := []ParsedQuestionRow{
		{DepartmentName: "Produce", Text: "Q1?"},
		{DepartmentName: "PRODUCE", Text: "Q2?"},
		{DepartmentName: "produce ", Text: "Q3?"},
	}

	summary := ReconcileImport(context.Background(), rows, nil, ImportDeps{
		CreateDepartment: func(_ context.Context, name, icon string) (uuid.UUID, error) {
			created = append(created, name)
			if icon != DefaultDepartmentIcon {
				t.Errorf("icon = %q, want %q", icon, DefaultDepartmentIcon)
			}
			return newID, nil
		},
		CreateQuestion: func(_ context.Context, departmentID uuid.UUID, _ ParsedQuestionRow) error {
			if departmentID != newID {
				t.Errorf("question attached to %s, want %s", departmentID, newID)
			}
			return nil
		},
	})

	// Three rows naming the same new department must trigger exactly one
	// creation call.
	if len(created) != 1 || created[0] != "Produce" {
		t.Errorf("created = %v, want one creation of Produce", created)
	}
	if summary.Imported != 3 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestReconcileImportPerRowFailures(t *testing.T) {
	rows := []ParsedQuestionRow{
		{DepartmentName: "A", Text: "Q1?"},
		{DepartmentName: "A", Text: "Q2?"},
		{DepartmentName: "B", Text: "Q3?"},
	}

	summary := ReconcileImport(context.Background(), rows, nil, ImportDeps{
		CreateDepartment: func(_ context.Context, name, _ string) (uuid.UUID, error) {
			if name == "B" {
				return uuid.Nil, fmt.Errorf("store unavailable")
			}
			return uuid.New(), nil
		},
		CreateQuestion: func(_ context.Context, _ uuid.UUID, row ParsedQuestionRow) error {
			if row.Text == "Q2?" {
				return fmt.Errorf("insert failed")
			}
			return nil
		},
	})

	if summary.Imported != 1 {
		t.Errorf("imported = %d, want 1", summary.Imported)
	}
	if summary.Failed != 2 {
		t.Errorf("failed = %d, want 2", summary.Failed)
	}
	if summary.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Total)
	}
}

func TestReconcileImportProgressCalledOncePerRow(t *testing.T) {
	rows := []ParsedQuestionRow{
		{DepartmentName: "A", Text: "Q1?"},
		{DepartmentName: "B", Text: "Q2?"}, // will fail
		{DepartmentName: "A", Text: "Q3?"},
	}

	var calls [][2]int
	ReconcileImport(context.Background(), rows, nil, ImportDeps{
		CreateDepartment: func(_ context.Context, name, _ string) (uuid.UUID, error) {
			if name == "B" {
				return uuid.Nil, fmt.Errorf("nope")
			}
			return uuid.New(), nil
		},
		CreateQuestion: func(_ context.Context, _ uuid.UUID, _ ParsedQuestionRow) error {
			return nil
		},
		OnProgress: func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		},
	})

	// Exactly once per row, in order, including the failed row.
	expected := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(expected) {
		t.Fatalf("progress calls = %v, want %v", calls, expected)
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], expected[i])
		}
	}
}

func TestReconcileImportStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	rows := []ParsedQuestionRow{
		{DepartmentName: "A", Text: "Q1?"},
		{DepartmentName: "A", Text: "Q2?"},
		{DepartmentName: "A", Text: "Q3?"},
	}

	var attempted []string
	summary := ReconcileImport(ctx, rows, nil, ImportDeps{
		CreateDepartment: func(_ context.Context, _, _ string) (uuid.UUID, error) {
			return uuid.New(), nil
		},
		CreateQuestion: func(_ context.Context, _ uuid.UUID, row ParsedQuestionRow) error {
			attempted = append(attempted, row.Text)
			if row.Text == "Q1?" {
				cancel()
			}
			return nil
		},
	})

	// Rows after the cancellation are never attempted and are not counted
	// as failures.
	if len(attempted) != 1 || attempted[0] != "Q1?" {
		t.Errorf("attempted = %v, want only Q1?", attempted)
	}
	if summary.Imported != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Total)
	}
}

func TestReconcileImportEmptyBatch(t *testing.T) {
	summary := ReconcileImport(context.Background(), nil, nil, ImportDeps{
		CreateDepartment: func(_ context.Context, _, _ string) (uuid.UUID, error) {
			t.Fatal("should not be called")
			return uuid.Nil, nil
		},
		CreateQuestion: func(_ context.Context, _ uuid.UUID, _ ParsedQuestionRow) error {
			t.Fatal("should not be called")
			return nil
		},
	})

	if summary.Imported != 0 || summary.Failed != 0 || summary.Total != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
