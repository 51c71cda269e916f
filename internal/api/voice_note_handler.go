package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/service"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// VoiceNoteHandler serves the voice note routes. Notes are owned by the
// identity subject directly rather than by a workspace.
type VoiceNoteHandler struct {
	notes          service.VoiceNoteService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewVoiceNoteHandler creates a new VoiceNoteHandler. Request bodies larger
// than maxUploadBytes are rejected with 413.
func NewVoiceNoteHandler(notes service.VoiceNoteService, maxUploadBytes int64, logger *slog.Logger) *VoiceNoteHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for VoiceNoteHandler")
	}
	return &VoiceNoteHandler{
		notes:          notes,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "voice_note_handler")),
	}
}

// ListVoiceNotes handles GET /api/voice-notes?tab=. status is accepted as
// an alias of tab.
func (h *VoiceNoteHandler) ListVoiceNotes(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	query := r.URL.Query()
	tab := query.Get("tab")
	if tab == "" {
		tab = query.Get("status")
	}

	notes, err := h.notes.List(r.Context(), identity.Subject, tab)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, VoiceNoteListResponse{Notes: voiceNotesToResponse(notes)})
}

// CreateVoiceNote handles POST /api/voice-notes with a multipart form of
// title, content, type, durationMs and an optional audio file.
func (h *VoiceNoteHandler) CreateVoiceNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := requireIdentity(w, r, log)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart temp files", slog.String("error", err.Error()))
		}
	}()

	params := service.CreateVoiceNoteParams{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Type:       r.FormValue("type"),
		DurationMs: parseDuration(r.FormValue("durationMs")),
	}
	if content := strings.TrimSpace(r.FormValue("content")); content != "" {
		params.Content = &content
	}

	file, header, err := r.FormFile("audio")
	switch {
	case err == nil:
		defer closeQuietly(file, log)
		if header.Size > 0 {
			params.Audio = &service.AudioUpload{
				Reader:   file,
				Filename: header.Filename,
				MimeType: header.Header.Get("Content-Type"),
			}
		}
	case !errors.Is(err, http.ErrMissingFile):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid audio upload", err)
		return
	}

	note, err := h.notes.Create(r.Context(), identity.Subject, params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, VoiceNoteEnvelope{Note: voiceNoteToResponse(note)})
}

// parseDuration reads durationMs; anything that is not an integer is ignored.
func parseDuration(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func closeQuietly(f multipart.File, log *slog.Logger) {
	if err := f.Close(); err != nil {
		log.Warn("failed to close uploaded file", slog.String("error", err.Error()))
	}
}

// UpdateVoiceNote handles PATCH /api/voice-notes/{id}.
func (h *VoiceNoteHandler) UpdateVoiceNote(w http.ResponseWriter, r *http.Request) {
	identity, noteID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateVoiceNoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	note, err := h.notes.Update(r.Context(), identity.Subject, noteID, req.Params())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, VoiceNoteEnvelope{Note: voiceNoteToResponse(note)})
}

// UpdateVoiceNoteStatus handles PATCH /api/voice-notes/{id}/status.
func (h *VoiceNoteHandler) UpdateVoiceNoteStatus(w http.ResponseWriter, r *http.Request) {
	identity, noteID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	note, err := h.notes.SetStatus(r.Context(), identity.Subject, noteID, req.Status)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, VoiceNoteEnvelope{Note: voiceNoteToResponse(note)})
}

// MarkTaskCreated handles PATCH /api/voice-notes/{id}/task-created. Repeated
// calls return the first timestamp.
func (h *VoiceNoteHandler) MarkTaskCreated(w http.ResponseWriter, r *http.Request) {
	identity, noteID, ok := requireIdentityAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	at, err := h.notes.MarkTaskCreated(r.Context(), identity.Subject, noteID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskCreatedResponse{
		Note: TaskCreatedNote{ID: noteID.String(), TaskCreatedAt: at},
	})
}

// ServeAudio handles GET /api/voice-notes/audio/{file}. Only the owner of a
// note referencing the file can read it.
func (h *VoiceNoteHandler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := requireIdentity(w, r, log)
	if !ok {
		return
	}

	name := path.Base(chi.URLParam(r, "file"))
	f, mimeType, err := h.notes.OpenAudio(r.Context(), identity.Subject, name)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("failed to close audio file", slog.String("error", err.Error()))
		}
	}()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, name, modTime, f)
}
