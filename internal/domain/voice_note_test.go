package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVoiceNote_AudioOnly(t *testing.T) {
	t.Parallel()
	duration := 4200

	note, err := NewVoiceNote("user_123", "", nil, &AudioAttachment{
		URL:        "/uploads/voice-notes/1-abc.webm",
		MimeType:   "audio/webm",
		DurationMs: &duration,
	})
	require.NoError(t, err)

	assert.Equal(t, NoteTypeAudio, note.Type)
	assert.Equal(t, DefaultNoteTitle, note.Title)
	assert.Nil(t, note.Content)
	require.NotNil(t, note.AudioURL)
	assert.Equal(t, "/uploads/voice-notes/1-abc.webm", *note.AudioURL)
	assert.Equal(t, "audio/webm", *note.AudioMimeType)
	assert.Equal(t, 4200, *note.DurationMs)
	assert.Equal(t, StatusActive, note.Status)
	assert.Nil(t, note.TaskCreatedAt)
	assert.Equal(t, "Voice note", note.NoteTypeLabel())
}

func TestNewVoiceNote_Text(t *testing.T) {
	t.Parallel()

	note, err := NewVoiceNote("user_123", "  Groceries ", strPtr(" eggs "), nil)
	require.NoError(t, err)

	assert.Equal(t, NoteTypeText, note.Type)
	assert.Equal(t, "Groceries", note.Title)
	assert.Equal(t, "eggs", *note.Content)
	assert.Nil(t, note.AudioURL)
	assert.Nil(t, note.DurationMs)
	assert.Equal(t, "Text note (no recording required)", note.NoteTypeLabel())
}

func TestNewVoiceNote_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewVoiceNote("user_123", "  ", strPtr("   "), nil)
	assert.ErrorIs(t, err, ErrEmptyNote)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewVoiceNote("", "title", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidID)

	note, err := NewVoiceNote("user_123", "", strPtr("content only"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultNoteTitle, note.Title)
}

func TestVoiceNote_Update(t *testing.T) {
	t.Parallel()
	note, err := NewVoiceNote("user_123", "Title", strPtr("body"), nil)
	require.NoError(t, err)

	note.SetTitle("   ")
	assert.Equal(t, DefaultNoteTitle, note.Title)

	note.SetContent(strPtr(""))
	assert.Nil(t, note.Content)

	note.SetContent(nil)
	assert.Nil(t, note.Content)
}

func TestVoiceNote_SetStatus(t *testing.T) {
	t.Parallel()
	note, err := NewVoiceNote("user_123", "Title", nil, nil)
	require.NoError(t, err)
	now := time.Now().UTC()

	require.NoError(t, note.SetStatus(StatusDeleted, now))
	require.NotNil(t, note.DeletedAt)

	require.NoError(t, note.SetStatus(StatusActive, now))
	assert.Nil(t, note.DeletedAt)

	assert.ErrorIs(t, note.SetStatus("NOPE", now), ErrInvalidStatus)
}

func TestVoiceNote_MarkTaskCreated(t *testing.T) {
	t.Parallel()
	note, err := NewVoiceNote("user_123", "Title", nil, nil)
	require.NoError(t, err)
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	at, changed := note.MarkTaskCreated(first)
	assert.True(t, changed)
	assert.Equal(t, first, at)

	again, changed := note.MarkTaskCreated(first.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, first, again, "the latch keeps the original timestamp")
	assert.Equal(t, first, *note.TaskCreatedAt)
}

func TestParseNoteType(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]NoteType{"": NoteTypeText, "text": NoteTypeText, "AUDIO": NoteTypeAudio} {
		got, err := ParseNoteType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseNoteType("video")
	assert.ErrorIs(t, err, ErrInvalidNoteType)
}

func TestParseNoteTab(t *testing.T) {
	t.Parallel()

	tab, err := ParseNoteTab("")
	require.NoError(t, err)
	assert.Equal(t, NoteTabAll, tab)

	tab, err = ParseNoteTab("ALL")
	require.NoError(t, err)
	assert.Equal(t, NoteTabAll, tab)

	tab, err = ParseNoteTab(" Created ")
	require.NoError(t, err)
	assert.Equal(t, NoteTabCreated, tab)

	_, err = ParseNoteTab("pinned")
	assert.ErrorIs(t, err, ErrInvalidTab)
}

func TestNoteTab_Filter(t *testing.T) {
	t.Parallel()

	all := NoteTabAll.Filter()
	assert.Nil(t, all.Status)
	assert.Nil(t, all.TaskCreated)

	active := NoteTabActive.Filter()
	require.NotNil(t, active.Status)
	assert.Equal(t, StatusActive, *active.Status)
	require.NotNil(t, active.TaskCreated)
	assert.False(t, *active.TaskCreated)

	created := NoteTabCreated.Filter()
	require.NotNil(t, created.Status)
	assert.Equal(t, StatusActive, *created.Status)
	require.NotNil(t, created.TaskCreated)
	assert.True(t, *created.TaskCreated)

	archived := NoteTabArchived.Filter()
	require.NotNil(t, archived.Status)
	assert.Equal(t, StatusArchived, *archived.Status)
	assert.Nil(t, archived.TaskCreated)

	deleted := NoteTabDeleted.Filter()
	require.NotNil(t, deleted.Status)
	assert.Equal(t, StatusDeleted, *deleted.Status)
	assert.Nil(t, deleted.TaskCreated)
}
