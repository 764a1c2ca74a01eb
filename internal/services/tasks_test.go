package services

import (
	"testing"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		page          int
		limit         int
		expectedPages int
	}{
		{"exact fit", 100, 1, 10, 10},
		{"partial last page", 125, 1, 50, 3},
		{"single page", 5, 1, 10, 1},
		{"empty", 0, 1, 10, 0},
		{"page past the end", 125, 4, 50, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := buildPagination(test.total, test.page, test.limit)
			if p.Pages != test.expectedPages {
				t.Errorf("Expected %d pages for total=%d limit=%d, got %d",
					test.expectedPages, test.total, test.limit, p.Pages)
			}
			if p.Current != test.page {
				t.Errorf("Expected current page %d, got %d", test.page, p.Current)
			}
			if p.Total != test.total {
				t.Errorf("Expected total %d, got %d", test.total, p.Total)
			}
			if p.Limit != test.limit {
				t.Errorf("Expected limit %d, got %d", test.limit, p.Limit)
			}
		})
	}
}

func TestNormalizePaging(t *testing.T) {
	page, limit := normalizePaging(0, 0)
	if page != 1 || limit != DefaultPageSize {
		t.Errorf("Expected defaults (1, %d), got (%d, %d)", DefaultPageSize, page, limit)
	}

	page, limit = normalizePaging(-3, 500)
	if page != 1 || limit != MaxPageSize {
		t.Errorf("Expected clamped (1, %d), got (%d, %d)", MaxPageSize, page, limit)
	}

	page, limit = normalizePaging(4, 50)
	if page != 4 || limit != 50 {
		t.Errorf("Expected (4, 50) to pass through, got (%d, %d)", page, limit)
	}
}

func baseTask() models.Task {
	creator := uuid.Must(uuid.NewV4())
	return models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       "Ship release",
		Description: "Cut the release branch",
		DueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Priority:    models.PriorityHigh,
		Status:      models.StatusInProgress,
		CreatedByID: creator,
	}
}

func TestApplyUpdate_PartialMerge(t *testing.T) {
	task := baseTask()
	original := task

	err := applyUpdate(&task, TaskUpdate{Title: "Ship hotfix"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Title != "Ship hotfix" {
		t.Errorf("Expected title to be overwritten, got %q", task.Title)
	}
	if task.Description != original.Description {
		t.Errorf("Expected description untouched, got %q", task.Description)
	}
	if task.Status != original.Status || task.Priority != original.Priority {
		t.Error("Expected status and priority untouched")
	}
	if task.CreatedByID != original.CreatedByID {
		t.Error("Expected createdBy to be immutable")
	}
}

func TestApplyUpdate_EmptyTitleKeepsStored(t *testing.T) {
	task := baseTask()

	// An empty title is treated as omitted, not as a clear. Long-standing
	// behavior the edit form relies on.
	if err := applyUpdate(&task, TaskUpdate{Title: ""}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Title != "Ship release" {
		t.Errorf("Expected stored title to survive empty update, got %q", task.Title)
	}
}

func TestApplyUpdate_DescriptionClearing(t *testing.T) {
	task := baseTask()

	empty := ""
	if err := applyUpdate(&task, TaskUpdate{Description: &empty}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Description != "" {
		t.Errorf("Expected description cleared, got %q", task.Description)
	}
}

func TestApplyUpdate_DescriptionOmitted(t *testing.T) {
	task := baseTask()

	if err := applyUpdate(&task, TaskUpdate{Description: nil}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Description != "Cut the release branch" {
		t.Errorf("Expected description untouched, got %q", task.Description)
	}
}

func TestApplyUpdate_AssignedToNullOut(t *testing.T) {
	task := baseTask()
	assignee := uuid.Must(uuid.NewV4())
	task.AssignedToID = &assignee

	if err := applyUpdate(&task, TaskUpdate{AssignedToSet: true, AssignedTo: nil}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.AssignedToID != nil {
		t.Error("Expected explicit null to unassign the task")
	}
}

func TestApplyUpdate_AssignedToOmitted(t *testing.T) {
	task := baseTask()
	assignee := uuid.Must(uuid.NewV4())
	task.AssignedToID = &assignee

	if err := applyUpdate(&task, TaskUpdate{AssignedToSet: false}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.AssignedToID == nil || *task.AssignedToID != assignee {
		t.Error("Expected assignee untouched when key omitted")
	}
}

func TestApplyUpdate_InvalidEnumRejectedBeforeMutation(t *testing.T) {
	task := baseTask()
	original := task

	err := applyUpdate(&task, TaskUpdate{Title: "New title", Status: "bogus"})
	if err != ErrInvalidStatus {
		t.Fatalf("Expected ErrInvalidStatus, got %v", err)
	}

	if task.Title != original.Title {
		t.Error("Expected no mutation after invalid status")
	}

	err = applyUpdate(&task, TaskUpdate{Priority: "urgent"})
	if err != ErrInvalidPriority {
		t.Fatalf("Expected ErrInvalidPriority, got %v", err)
	}
}
