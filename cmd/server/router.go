package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/voicetask-api/internal/api"
	apiMiddleware "github.com/phrazzld/voicetask-api/internal/api/middleware"
)

// apiAudioPath is where stored audio is always served.
const apiAudioPath = "/api/voice-notes/audio"

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	taskHandler := api.NewTaskHandler(app.workspaceResolver, app.taskService, app.logger)
	noteHandler := api.NewVoiceNoteHandler(app.voiceNoteService, app.config.Storage.MaxUploadBytes, app.logger)
	purgeHandler := api.NewPurgeHandler(app.purgeService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	authRateLimit := apiMiddleware.RateLimit("auth", app.authLimiter, apiMiddleware.ClientIPKey)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, throttled)
		r.Group(func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Scheduler trigger, guarded by the cron secret instead of a token
		r.With(apiMiddleware.CronSecret(app.config.Cron.Secret)).
			Post("/tasks/purge-deleted", purgeHandler.PurgeDeleted)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Patch("/tasks/{id}/status", taskHandler.UpdateTaskStatus)
			r.Patch("/tasks/{id}/pin", taskHandler.PinTask)

			r.Get("/voice-notes", noteHandler.ListVoiceNotes)
			r.Post("/voice-notes", noteHandler.CreateVoiceNote)
			r.Get("/voice-notes/audio/{file}", noteHandler.ServeAudio)
			r.Patch("/voice-notes/{id}", noteHandler.UpdateVoiceNote)
			r.Patch("/voice-notes/{id}/status", noteHandler.UpdateVoiceNoteStatus)
			r.Patch("/voice-notes/{id}/task-created", noteHandler.MarkTaskCreated)
		})
	})

	// Stored notes carry audio URLs under the public base path.
	if base := strings.TrimSuffix(app.config.Storage.PublicBasePath, "/"); base != "" && base != apiAudioPath {
		r.With(authMiddleware.Authenticate).Get(base+"/{file}", noteHandler.ServeAudio)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
