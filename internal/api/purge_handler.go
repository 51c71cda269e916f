package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/service"
)

// PurgeHandler serves the retention purge trigger. It must be mounted behind
// middleware.CronSecret.
type PurgeHandler struct {
	purge  service.PurgeService
	logger *slog.Logger
}

// NewPurgeHandler creates a new PurgeHandler.
func NewPurgeHandler(purge service.PurgeService, logger *slog.Logger) *PurgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeHandler{
		purge:  purge,
		logger: logger.With(slog.String("component", "purge_handler")),
	}
}

// PurgeDeleted handles POST /api/tasks/purge-deleted.
func (h *PurgeHandler) PurgeDeleted(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.purge.Purge(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("purge triggered over HTTP",
		slog.Int64("deleted_count", deleted))
	shared.RespondWithJSON(w, r, http.StatusOK, PurgeResponse{DeletedCount: deleted})
}
