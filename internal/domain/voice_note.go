package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultNoteTitle replaces a blank note title.
const DefaultNoteTitle = "Untitled Note"

// NoteType distinguishes recorded notes from typed ones.
type NoteType string

const (
	NoteTypeText  NoteType = "TEXT"
	NoteTypeAudio NoteType = "AUDIO"
)

// ParseNoteType reads a note type; blank input means TEXT.
func ParseNoteType(s string) (NoteType, error) {
	switch NoteType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", NoteTypeText:
		return NoteTypeText, nil
	case NoteTypeAudio:
		return NoteTypeAudio, nil
	default:
		return "", NewValidationError("type", "must be TEXT or AUDIO", ErrInvalidNoteType)
	}
}

// NoteTab selects one of the voice note list views.
type NoteTab string

// NoteTabActive lists active notes not yet turned into tasks and
// NoteTabCreated lists active notes that were. NoteTabAll applies no
// status predicate at all.
const (
	NoteTabAll      NoteTab = "all"
	NoteTabActive   NoteTab = "active"
	NoteTabCreated  NoteTab = "created"
	NoteTabArchived NoteTab = "archived"
	NoteTabDeleted  NoteTab = "deleted"
)

// NoteFilter is the storage-level predicate behind a tab.
// A nil Status matches every status and a nil TaskCreated matches notes
// regardless of promotion.
type NoteFilter struct {
	Status      *Status
	TaskCreated *bool
}

// ParseNoteTab reads a tab name; blank input selects every note.
func ParseNoteTab(s string) (NoteTab, error) {
	tab := NoteTab(strings.ToLower(strings.TrimSpace(s)))
	switch tab {
	case "":
		return NoteTabAll, nil
	case NoteTabAll, NoteTabActive, NoteTabCreated, NoteTabArchived, NoteTabDeleted:
		return tab, nil
	default:
		return "", NewValidationError(
			"tab",
			fmt.Sprintf("must be one of all, active, created, archived, deleted (got %q)", s),
			ErrInvalidTab,
		)
	}
}

// Filter returns the predicate that selects notes for the tab.
func (t NoteTab) Filter() NoteFilter {
	notCreated, created := false, true
	switch t {
	case NoteTabActive:
		return NoteFilter{Status: statusPtr(StatusActive), TaskCreated: &notCreated}
	case NoteTabCreated:
		return NoteFilter{Status: statusPtr(StatusActive), TaskCreated: &created}
	case NoteTabArchived:
		return NoteFilter{Status: statusPtr(StatusArchived)}
	case NoteTabDeleted:
		return NoteFilter{Status: statusPtr(StatusDeleted)}
	default:
		return NoteFilter{}
	}
}

func statusPtr(s Status) *Status {
	return &s
}

// AudioAttachment references a stored recording.
type AudioAttachment struct {
	URL        string
	MimeType   string
	DurationMs *int
}

// VoiceNote is a typed or recorded note owned by one identity.
type VoiceNote struct {
	ID            uuid.UUID
	OwnerID       string
	Type          NoteType
	Title         string
	Content       *string
	AudioURL      *string
	AudioMimeType *string
	DurationMs    *int
	Status        Status
	TaskCreatedAt *time.Time
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateNoteInput rejects a note that would carry nothing at all.
func ValidateNoteInput(title string, content *string, hasAudio bool) error {
	if hasAudio || strings.TrimSpace(title) != "" {
		return nil
	}
	if content != nil && strings.TrimSpace(*content) != "" {
		return nil
	}
	return NewValidationError("", "a note needs a title, content, or audio", ErrEmptyNote)
}

// NewVoiceNote builds an ACTIVE note. An attached recording makes it an AUDIO
// note whatever type was requested; without one the note is TEXT and carries
// no audio fields.
func NewVoiceNote(
	ownerID string,
	title string,
	content *string,
	audio *AudioAttachment,
) (*VoiceNote, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, NewValidationError("ownerId", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateNoteInput(title, content, audio != nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &VoiceNote{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      NoteTypeText,
		Title:     noteTitle(title),
		Content:   trimToNil(content),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if audio != nil {
		url, mimeType := audio.URL, audio.MimeType
		note.Type = NoteTypeAudio
		note.AudioURL = &url
		note.AudioMimeType = &mimeType
		note.DurationMs = audio.DurationMs
	}

	return note, nil
}

// SetTitle replaces the title; a blank title resets to the default.
func (n *VoiceNote) SetTitle(title string) {
	n.Title = noteTitle(title)
	n.touch()
}

// SetContent replaces the content; blank content clears it.
func (n *VoiceNote) SetContent(content *string) {
	n.Content = trimToNil(content)
	n.touch()
}

// SetStatus moves the note to status, stamping or clearing DeletedAt.
func (n *VoiceNote) SetStatus(status Status, now time.Time) error {
	if !status.IsValid() {
		return NewValidationError("status", "is not a known status", ErrInvalidStatus)
	}
	n.Status = status
	if status == StatusDeleted {
		deletedAt := now.UTC()
		n.DeletedAt = &deletedAt
	} else {
		n.DeletedAt = nil
	}
	n.touch()
	return nil
}

// MarkTaskCreated latches TaskCreatedAt. It reports whether the note changed;
// once set, the original timestamp is kept and returned.
func (n *VoiceNote) MarkTaskCreated(now time.Time) (time.Time, bool) {
	if n.TaskCreatedAt != nil {
		return *n.TaskCreatedAt, false
	}
	at := now.UTC()
	n.TaskCreatedAt = &at
	n.touch()
	return at, true
}

// NoteTypeLabel is the human-readable description of the note type.
func (n *VoiceNote) NoteTypeLabel() string {
	if n.Type == NoteTypeAudio {
		return "Voice note"
	}
	return "Text note (no recording required)"
}

func (n *VoiceNote) touch() {
	n.UpdatedAt = time.Now().UTC()
}

func noteTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultNoteTitle
	}
	return title
}
