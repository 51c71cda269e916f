package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string  `json:"email"    validate:"required,max=254"`
	Password string  `json:"password" validate:"required"`
	Name     *string `json:"name"     validate:"omitempty,max=200"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name"`
}

// AuthResponse is returned after a successful login.
type AuthResponse struct {
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 expiry of Token.
	ExpiresAt string `json:"expiresAt"`
}

// CreateTaskRequest accepts both the current and legacy field names:
// notes or details, priority or urgency.
type CreateTaskRequest struct {
	Title             string        `json:"title"`
	Notes             *string       `json:"notes"`
	Details           *string       `json:"details"`
	DueDate           *string       `json:"dueDate"`
	Priority          priorityValue `json:"priority"`
	Urgency           priorityValue `json:"urgency"`
	SourceVoiceNoteID *string       `json:"sourceVoiceNoteId" validate:"omitempty,uuid"`
}

// Params converts the request for the task service.
func (r *CreateTaskRequest) Params() service.CreateTaskParams {
	params := service.CreateTaskParams{
		Title: r.Title,
		Notes: r.Notes,
	}
	if params.Notes == nil {
		params.Notes = r.Details
	}
	if r.DueDate != nil {
		params.DueDate = *r.DueDate
	}
	params.Priority = r.Priority.Value
	if params.Priority == nil {
		params.Priority = r.Urgency.Value
	}
	if r.SourceVoiceNoteID != nil && strings.TrimSpace(*r.SourceVoiceNoteID) != "" {
		if id, err := uuid.Parse(*r.SourceVoiceNoteID); err == nil {
			params.SourceVoiceNoteID = &id
		}
	}
	return params
}

// UpdateTaskRequest is a partial update; absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title    optionalString `json:"title"`
	Notes    optionalString `json:"notes"`
	DueDate  optionalString `json:"dueDate"`
	Priority priorityValue  `json:"priority"`
}

// Validate rejects explicit nulls where the field cannot be cleared.
func (r *UpdateTaskRequest) Validate() error {
	if r.Title.Set && r.Title.Value == nil {
		return domain.NewValidationError("title", "must be a non-empty string", domain.ErrEmptyTitle)
	}
	if r.Priority.Set && r.Priority.Value == nil {
		return domain.NewValidationError("priority", "must be 1, 2, or 3", domain.ErrInvalidPriority)
	}
	return nil
}

// Params converts the request for the task service.
func (r *UpdateTaskRequest) Params() service.UpdateTaskParams {
	return service.UpdateTaskParams{
		Title:      r.Title.Value,
		NotesSet:   r.Notes.Set,
		Notes:      r.Notes.Value,
		DueDateSet: r.DueDate.Set,
		DueDate:    r.DueDate.Value,
		Priority:   r.Priority.Value,
	}
}

// StatusRequest sets the status of a task or voice note.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PinTaskRequest pins or unpins a task. IsPinned must be a JSON boolean.
type PinTaskRequest struct {
	IsPinned json.RawMessage `json:"isPinned"`

	pinned bool
}

// Validate implements the validation hook used by shared.ValidateRequest.
func (r *PinTaskRequest) Validate() error {
	switch string(r.IsPinned) {
	case "true":
		r.pinned = true
	case "false":
		r.pinned = false
	default:
		return domain.NewValidationError("isPinned", "must be a boolean", domain.ErrValidation)
	}
	return nil
}

// UpdateVoiceNoteRequest is a partial update of a voice note.
type UpdateVoiceNoteRequest struct {
	Title   optionalString `json:"title"`
	Content optionalString `json:"content"`
}

// Params converts the request for the voice note service. A null title
// resets it like an empty one.
func (r *UpdateVoiceNoteRequest) Params() service.UpdateVoiceNoteParams {
	params := service.UpdateVoiceNoteParams{
		ContentSet: r.Content.Set,
		Content:    r.Content.Value,
	}
	if r.Title.Set {
		title := ""
		if r.Title.Value != nil {
			title = *r.Title.Value
		}
		params.Title = &title
	}
	return params
}

// TaskResponse is the JSON form of a task.
type TaskResponse struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Notes             *string    `json:"notes"`
	DueDate           *string    `json:"dueDate"`
	Priority          int        `json:"priority"`
	PriorityScore     int        `json:"priorityScore"`
	Status            string     `json:"status"`
	SourceVoiceNoteID *string    `json:"sourceVoiceNoteId"`
	IsPinned          bool       `json:"isPinned"`
	PinnedAt          *time.Time `json:"pinnedAt"`
	DeletedAt         *time.Time `json:"deletedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// TaskEnvelope wraps a single task.
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

func taskToResponse(task *domain.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:            task.ID.String(),
		Title:         task.Title,
		Notes:         task.Notes,
		DueDate:       domain.FormatDueDate(task.DueDate),
		Priority:      task.Priority,
		PriorityScore: task.PriorityScore(now),
		Status:        task.Status.External(),
		IsPinned:      task.IsPinned,
		PinnedAt:      task.PinnedAt,
		DeletedAt:     task.DeletedAt,
		CreatedAt:     task.CreatedAt,
	}
	if task.SourceVoiceNoteID != nil {
		id := task.SourceVoiceNoteID.String()
		resp.SourceVoiceNoteID = &id
	}
	return resp
}

func tasksToResponse(tasks []*domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task, now))
	}
	return out
}

// VoiceNoteResponse is the JSON form of a voice note. Type is the stored
// enum and NoteType its display label.
type VoiceNoteResponse struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	NoteType      string     `json:"noteType"`
	Title         string     `json:"title"`
	Content       *string    `json:"content"`
	AudioURL      *string    `json:"audioUrl"`
	AudioMimeType *string    `json:"audioMimeType"`
	DurationMs    *int       `json:"durationMs"`
	Status        string     `json:"status"`
	TaskCreatedAt *time.Time `json:"taskCreatedAt"`
	DeletedAt     *time.Time `json:"deletedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// VoiceNoteEnvelope wraps a single voice note.
type VoiceNoteEnvelope struct {
	Note VoiceNoteResponse `json:"note"`
}

// VoiceNoteListResponse wraps a list of voice notes.
type VoiceNoteListResponse struct {
	Notes []VoiceNoteResponse `json:"notes"`
}

// TaskCreatedResponse is returned by the task-created latch.
type TaskCreatedResponse struct {
	Note TaskCreatedNote `json:"note"`
}

// TaskCreatedNote carries the latched timestamp.
type TaskCreatedNote struct {
	ID            string    `json:"id"`
	TaskCreatedAt time.Time `json:"taskCreatedAt"`
}

// PurgeResponse reports how many tasks were permanently removed.
type PurgeResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

func voiceNoteToResponse(note *domain.VoiceNote) VoiceNoteResponse {
	return VoiceNoteResponse{
		ID:            note.ID.String(),
		Type:          string(note.Type),
		NoteType:      note.NoteTypeLabel(),
		Title:         note.Title,
		Content:       note.Content,
		AudioURL:      note.AudioURL,
		AudioMimeType: note.AudioMimeType,
		DurationMs:    note.DurationMs,
		Status:        note.Status.External(),
		TaskCreatedAt: note.TaskCreatedAt,
		DeletedAt:     note.DeletedAt,
		CreatedAt:     note.CreatedAt,
	}
}

func voiceNotesToResponse(notes []*domain.VoiceNote) []VoiceNoteResponse {
	out := make([]VoiceNoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, voiceNoteToResponse(note))
	}
	return out
}
