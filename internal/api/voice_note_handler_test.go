package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audioPart struct {
	filename string
	mimeType string
	data     []byte
}

func postNote(t *testing.T, a *testAPI, subject string, fields map[string]string, audio *audioPart) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if audio != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="audio"; filename="`+audio.filename+`"`)
		h.Set("Content-Type", audio.mimeType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(audio.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/voice-notes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(testSubjectHeader, subject)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func createNote(t *testing.T, a *testAPI, fields map[string]string, audio *audioPart) VoiceNoteResponse {
	t.Helper()
	rec := postNote(t, a, ada, fields, audio)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[VoiceNoteEnvelope](t, rec).Note
}

func TestVoiceNoteHandler_CreateAudioOnly(t *testing.T) {
	a := newTestAPI(t, 0)

	note := createNote(t, a, map[string]string{"type": "TEXT", "durationMs": "4200"},
		&audioPart{filename: "clip.webm", mimeType: "audio/webm", data: []byte("RIFF-audio")})

	assert.Equal(t, "AUDIO", note.Type)
	assert.Equal(t, "Voice note", note.NoteType)
	assert.Equal(t, "Untitled Note", note.Title)
	assert.Nil(t, note.Content)
	assert.Equal(t, "active", note.Status)
	assert.Nil(t, note.TaskCreatedAt)
	require.NotNil(t, note.AudioURL)
	assert.True(t, strings.HasPrefix(*note.AudioURL, audioBasePath+"/"))
	require.NotNil(t, note.DurationMs)
	assert.Equal(t, 4200, *note.DurationMs)
}

func TestVoiceNoteHandler_CreateText(t *testing.T) {
	a := newTestAPI(t, 0)

	note := createNote(t, a, map[string]string{"title": " Groceries ", "content": "eggs", "durationMs": "99"}, nil)
	assert.Equal(t, "TEXT", note.Type)
	assert.Equal(t, "Text note (no recording required)", note.NoteType)
	assert.Equal(t, "Groceries", note.Title)
	assert.Equal(t, strPtr("eggs"), note.Content)
	assert.Nil(t, note.AudioURL)
	assert.Nil(t, note.DurationMs, "duration is only kept for audio")
}

func TestVoiceNoteHandler_CreateAudioTypeWithoutRecordingIsText(t *testing.T) {
	a := newTestAPI(t, 0)

	note := createNote(t, a, map[string]string{"type": "AUDIO", "title": "meant to record", "durationMs": "1500"}, nil)
	assert.Equal(t, "TEXT", note.Type)
	assert.Equal(t, "Text note (no recording required)", note.NoteType)
	assert.Nil(t, note.AudioURL)
	assert.Nil(t, note.DurationMs)

	rec := postNote(t, a, ada, map[string]string{"type": "VIDEO", "title": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoiceNoteHandler_CreateRejects(t *testing.T) {
	t.Run("nothing to save", func(t *testing.T) {
		a := newTestAPI(t, 0)
		rec := postNote(t, a, ada, map[string]string{"title": "  ", "content": ""},
			&audioPart{filename: "empty.webm", mimeType: "audio/webm"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, a.notes.Notes)
	})

	t.Run("not multipart", func(t *testing.T) {
		a := newTestAPI(t, 0)
		rec := a.do(t, ada, http.MethodPost, "/api/voice-notes", map[string]any{"title": "json"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		a := newTestAPI(t, 1024)
		rec := postNote(t, a, ada, map[string]string{"title": "big"},
			&audioPart{filename: "big.webm", mimeType: "audio/webm", data: bytes.Repeat([]byte("a"), 4096)})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, a.notes.Notes)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		a := newTestAPI(t, 0)
		rec := postNote(t, a, "", map[string]string{"title": "x"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestVoiceNoteHandler_TabsAndStatus(t *testing.T) {
	a := newTestAPI(t, 0)

	plain := createNote(t, a, map[string]string{"title": "plain"}, nil)
	promoted := createNote(t, a, map[string]string{"title": "promoted"}, nil)
	archived := createNote(t, a, map[string]string{"title": "archived"}, nil)

	a.expectTx()
	rec := a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+promoted.ID+"/task-created", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[TaskCreatedResponse](t, rec).Note
	assert.Equal(t, promoted.ID, first.ID)

	a.expectTx()
	rec = a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+promoted.ID+"/task-created", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody[TaskCreatedResponse](t, rec).Note
	assert.True(t, first.TaskCreatedAt.Equal(second.TaskCreatedAt), "latch keeps the first timestamp")

	a.expectTx()
	rec = a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+archived.ID+"/status", map[string]any{"status": "archived"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "archived", decodeBody[VoiceNoteEnvelope](t, rec).Note.Status)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "?tab=active", want: []string{plain.ID}},
		{query: "?tab=created", want: []string{promoted.ID}},
		{query: "?status=archived", want: []string{archived.ID}},
		{query: "?tab=deleted", want: []string{}},
	}
	for _, tt := range tests {
		t.Run("list"+tt.query, func(t *testing.T) {
			rec := a.do(t, ada, http.MethodGet, "/api/voice-notes"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			notes := decodeBody[VoiceNoteListResponse](t, rec).Notes
			ids := make([]string, 0, len(notes))
			for _, n := range notes {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	rec = a.do(t, ada, http.MethodGet, "/api/voice-notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[VoiceNoteListResponse](t, rec).Notes
	allIDs := make([]string, 0, len(all))
	for _, n := range all {
		allIDs = append(allIDs, n.ID)
	}
	assert.ElementsMatch(t, []string{plain.ID, promoted.ID, archived.ID}, allIDs)

	rec = a.do(t, ada, http.MethodGet, "/api/voice-notes?tab=everything", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, "grace", http.MethodGet, "/api/voice-notes?tab=created", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[VoiceNoteListResponse](t, rec).Notes)
}

func TestVoiceNoteHandler_DeleteAndRestore(t *testing.T) {
	a := newTestAPI(t, 0)
	note := createNote(t, a, map[string]string{"content": "remember"}, nil)

	a.expectTx()
	rec := a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+note.ID+"/status", map[string]any{"status": "deleted"})
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decodeBody[VoiceNoteEnvelope](t, rec).Note
	assert.Equal(t, "deleted", deleted.Status)
	assert.NotNil(t, deleted.DeletedAt)

	a.expectTx()
	rec = a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+note.ID+"/status", map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[VoiceNoteEnvelope](t, rec).Note.DeletedAt)

	rec = a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+note.ID+"/status", map[string]any{"status": "gone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoiceNoteHandler_Update(t *testing.T) {
	a := newTestAPI(t, 0)
	note := createNote(t, a, map[string]string{"title": "Old", "content": "body"}, nil)

	a.expectTx()
	rec := a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+note.ID, map[string]any{"title": "", "content": "  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[VoiceNoteEnvelope](t, rec).Note
	assert.Equal(t, "Untitled Note", updated.Title)
	assert.Nil(t, updated.Content)

	a.expectRollback()
	rec = a.do(t, "grace", http.MethodPatch, "/api/voice-notes/"+note.ID, map[string]any{"title": "mine"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Voice note not found", decodeBody[shared.ErrorResponse](t, rec).Error)

	a.expectRollback()
	rec = a.do(t, ada, http.MethodPatch, "/api/voice-notes/"+uuid.NewString()+"/task-created", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoiceNoteHandler_ServeAudio(t *testing.T) {
	a := newTestAPI(t, 0)
	note := createNote(t, a, nil, &audioPart{filename: "memo.ogg", mimeType: "audio/ogg", data: []byte("OggS-data")})
	require.NotNil(t, note.AudioURL)

	rec := a.do(t, ada, http.MethodGet, *note.AudioURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/ogg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "OggS-data", rec.Body.String())

	rec = a.do(t, "grace", http.MethodGet, *note.AudioURL, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, ada, http.MethodGet, audioBasePath+"/missing.webm", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
