package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/service"
)

// Task list orderings accepted by the sort query parameter.
const (
	SortCreated = "created"
	SortScore   = "score"
)

// TaskHandler serves the task routes. Every request is scoped to the
// caller's personal workspace.
type TaskHandler struct {
	workspaces service.WorkspaceResolver
	tasks      service.TaskService
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	workspaces service.WorkspaceResolver,
	tasks service.TaskService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		workspaces: workspaces,
		tasks:      tasks,
		logger:     logger.With(slog.String("component", "task_handler")),
		now:        time.Now,
	}
}

// workspaceID resolves the caller's workspace, writing the error response
// when that fails.
func (h *TaskHandler) workspaceID(w http.ResponseWriter, r *http.Request, identity domain.Identity) (uuid.UUID, bool) {
	wc, err := h.workspaces.Resolve(r.Context(), identity)
	if err != nil {
		HandleAPIError(w, r, err)
		return uuid.Nil, false
	}
	return wc.Workspace.ID, true
}

// ListTasks handles GET /api/tasks?status=&sort=.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := requireIdentity(w, r, log)
	if !ok {
		return
	}

	query := r.URL.Query()
	sortBy := strings.ToLower(strings.TrimSpace(query.Get("sort")))
	if sortBy != "" && sortBy != SortCreated && sortBy != SortScore {
		HandleAPIError(w, r, domain.NewValidationError("sort", "must be created or score", domain.ErrValidation))
		return
	}

	workspaceID, ok := h.workspaceID(w, r, identity)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), workspaceID, query.Get("status"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	now := h.now()
	if sortBy == SortScore {
		service.SortByPriorityScore(tasks, now)
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasksToResponse(tasks, now)})
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workspaceID, ok := h.workspaceID(w, r, identity)
	if !ok {
		return
	}

	task, err := h.tasks.Create(r.Context(), workspaceID, req.Params())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskEnvelope{Task: taskToResponse(task, h.now())})
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workspaceID, ok := h.workspaceID(w, r, identity)
	if !ok {
		return
	}

	task, err := h.tasks.Update(r.Context(), workspaceID, taskID, req.Params())
	h.respondWithTask(w, r, task, err)
}

// UpdateTaskStatus handles PATCH /api/tasks/{id}/status.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workspaceID, ok := h.workspaceID(w, r, identity)
	if !ok {
		return
	}

	task, err := h.tasks.SetStatus(r.Context(), workspaceID, taskID, req.Status)
	h.respondWithTask(w, r, task, err)
}

// PinTask handles PATCH /api/tasks/{id}/pin.
func (h *TaskHandler) PinTask(w http.ResponseWriter, r *http.Request) {
	identity, taskID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req PinTaskRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workspaceID, ok := h.workspaceID(w, r, identity)
	if !ok {
		return
	}

	task, err := h.tasks.SetPinned(r.Context(), workspaceID, taskID, req.pinned)
	h.respondWithTask(w, r, task, err)
}

func (h *TaskHandler) respondWithTask(w http.ResponseWriter, r *http.Request, task *domain.Task, err error) {
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task, h.now())})
}
