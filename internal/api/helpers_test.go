package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/mocks"
	"github.com/phrazzld/voicetask-api/internal/service"
	"github.com/stretchr/testify/require"
)

// testSubjectHeader stands in for the auth middleware: its value becomes the
// identity subject and the local part of the identity email.
const testSubjectHeader = "X-Test-Subject"

const audioBasePath = "/api/voice-notes/audio"

type testAPI struct {
	router     chi.Router
	tasks      *mocks.MockTaskStore
	notes      *mocks.MockVoiceNoteStore
	audio      *mocks.MockAudioStore
	workspaces *mocks.MockWorkspaceStore
	tx         sqlmock.Sqlmock
}

func newTestAPI(t *testing.T, maxUploadBytes int64) *testAPI {
	t.Helper()

	db, txMock := mocks.NewTxDB(t)
	tasks := mocks.NewMockTaskStore()
	tasks.SQLDB = db
	notes := mocks.NewMockVoiceNoteStore()
	notes.SQLDB = db
	audio := mocks.NewMockAudioStore(audioBasePath)
	workspaces := mocks.NewMockWorkspaceStore()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	resolver, err := service.NewWorkspaceResolver(mocks.NewMockUserStore(), workspaces, log)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, log)
	require.NoError(t, err)
	noteSvc, err := service.NewVoiceNoteService(notes, audio, log)
	require.NoError(t, err)

	taskHandler := NewTaskHandler(resolver, taskSvc, log)
	noteHandler := NewVoiceNoteHandler(noteSvc, maxUploadBytes, log)

	r := chi.NewRouter()
	r.Use(fakeAuth)
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Patch("/{id}", taskHandler.UpdateTask)
		r.Patch("/{id}/status", taskHandler.UpdateTaskStatus)
		r.Patch("/{id}/pin", taskHandler.PinTask)
	})
	r.Route("/api/voice-notes", func(r chi.Router) {
		r.Get("/", noteHandler.ListVoiceNotes)
		r.Post("/", noteHandler.CreateVoiceNote)
		r.Get("/audio/{file}", noteHandler.ServeAudio)
		r.Patch("/{id}", noteHandler.UpdateVoiceNote)
		r.Patch("/{id}/status", noteHandler.UpdateVoiceNoteStatus)
		r.Patch("/{id}/task-created", noteHandler.MarkTaskCreated)
	})

	return &testAPI{
		router:     r,
		tasks:      tasks,
		notes:      notes,
		audio:      audio,
		workspaces: workspaces,
		tx:         txMock,
	}
}

func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject := r.Header.Get(testSubjectHeader); subject != "" {
			ctx := shared.WithIdentity(r.Context(), domain.Identity{
				Subject: subject,
				Email:   subject + "@example.com",
			})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// expectTx queues a committed transaction for the next mutation.
func (a *testAPI) expectTx() {
	mocks.ExpectCommittedTx(a.tx, 1)
}

func (a *testAPI) expectRollback() {
	mocks.ExpectRolledBackTx(a.tx)
}

// do sends a request as subject; an empty subject sends it unauthenticated.
func (a *testAPI) do(t *testing.T, subject, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set(testSubjectHeader, subject)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}
