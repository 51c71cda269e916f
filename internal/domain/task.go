package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPriority is used when a task is created without a priority.
	DefaultPriority = 2

	// DueDateLayout is the wire format for due dates.
	DueDateLayout = "2006-01-02"
)

// Task is a to-do item inside a workspace.
type Task struct {
	ID                uuid.UUID
	WorkspaceID       uuid.UUID
	Title             string
	Notes             *string
	DueDate           *time.Time
	Priority          int
	Status            Status
	SourceVoiceNoteID *uuid.UUID
	IsPinned          bool
	PinnedAt          *time.Time
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTask creates an ACTIVE task after validating its fields.
// Title and notes are trimmed; blank notes are stored as nil.
func NewTask(
	workspaceID uuid.UUID,
	title string,
	notes *string,
	dueDate *time.Time,
	priority int,
	sourceVoiceNoteID *uuid.UUID,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:                uuid.New(),
		WorkspaceID:       workspaceID,
		Title:             strings.TrimSpace(title),
		Notes:             trimToNil(notes),
		DueDate:           dueDate,
		Priority:          priority,
		Status:            StatusActive,
		SourceVoiceNoteID: sourceVoiceNoteID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the invariants of a Task.
func (t *Task) Validate() error {
	if t.WorkspaceID == uuid.Nil {
		return NewValidationError("workspaceId", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "is required", ErrEmptyTitle)
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "is not a known status", ErrInvalidStatus)
	}
	if (t.Status == StatusDeleted) != (t.DeletedAt != nil) {
		return NewValidationError("deletedAt", "must be set exactly when status is deleted", ErrValidation)
	}
	if t.IsPinned != (t.PinnedAt != nil) {
		return NewValidationError("pinnedAt", "must be set exactly when pinned", ErrValidation)
	}
	return nil
}

// SetTitle replaces the title; it must be non-empty after trimming.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	t.Title = title
	t.touch()
	return nil
}

// SetNotes replaces the notes; blank notes clear the field.
func (t *Task) SetNotes(notes *string) {
	t.Notes = trimToNil(notes)
	t.touch()
}

// SetDueDate replaces or clears the due date.
func (t *Task) SetDueDate(due *time.Time) {
	t.DueDate = due
	t.touch()
}

// SetPriority replaces the priority after validating it.
func (t *Task) SetPriority(priority int) error {
	if err := ValidatePriority(priority); err != nil {
		return err
	}
	t.Priority = priority
	t.touch()
	return nil
}

// SetStatus moves the task to status. DeletedAt is stamped when entering
// DELETED and cleared for every other status.
func (t *Task) SetStatus(status Status, now time.Time) error {
	if !status.IsValid() {
		return NewValidationError("status", "is not a known status", ErrInvalidStatus)
	}
	t.Status = status
	if status == StatusDeleted {
		deletedAt := now.UTC()
		t.DeletedAt = &deletedAt
	} else {
		t.DeletedAt = nil
	}
	t.touch()
	return nil
}

// SetPinned pins or unpins the task, keeping PinnedAt in step.
func (t *Task) SetPinned(pinned bool, now time.Time) {
	t.IsPinned = pinned
	if pinned {
		pinnedAt := now.UTC()
		t.PinnedAt = &pinnedAt
	} else {
		t.PinnedAt = nil
	}
	t.touch()
}

// PriorityScore is the display ranking for the task at time now.
func (t *Task) PriorityScore(now time.Time) int {
	return PriorityScore(t.Priority, t.DueDate, now)
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// ValidatePriority accepts 1, 2 or 3.
func ValidatePriority(priority int) error {
	if priority < 1 || priority > 3 {
		return NewValidationError("priority", "must be 1, 2, or 3", ErrInvalidPriority)
	}
	return nil
}

// ParseDueDate parses a calendar date in yyyy-mm-dd form into midnight UTC.
// An RFC 3339 timestamp is also accepted and reduced to its UTC date.
// Blank input yields nil.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if d, err := time.Parse(DueDateLayout, s); err == nil {
		d = d.UTC()
		return &d, nil
	}

	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		d := truncateToDate(ts)
		return &d, nil
	}

	return nil, NewValidationError("dueDate", "must be a valid yyyy-mm-dd date", ErrInvalidDueDate)
}

// FormatDueDate renders a due date as yyyy-mm-dd, or nil when absent.
func FormatDueDate(due *time.Time) *string {
	if due == nil {
		return nil
	}
	s := due.UTC().Format(DueDateLayout)
	return &s
}

// PriorityScore ranks a task for display: priority*30 plus a bonus that
// grows as the due date approaches. Days are counted on UTC calendar dates.
func PriorityScore(priority int, due *time.Time, now time.Time) int {
	score := priority * 30
	if due == nil {
		return score
	}

	days := int(truncateToDate(*due).Sub(truncateToDate(now)).Hours() / 24)
	switch {
	case days <= 0:
		score += 100
	case days <= 1:
		score += 60
	case days <= 3:
		score += 40
	case days <= 7:
		score += 20
	}
	return score
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
