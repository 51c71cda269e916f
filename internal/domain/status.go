package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state shared by tasks and voice notes.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
	StatusDeleted  Status = "DELETED"
)

// statusVocabulary is the single source for converting between the stored
// enum and the lowercase strings used on the wire. Both lookup maps below are
// derived from it, so every entry round-trips.
var statusVocabulary = []struct {
	status   Status
	external string
}{
	{StatusActive, "active"},
	{StatusArchived, "archived"},
	{StatusDeleted, "deleted"},
}

var (
	externalByStatus = make(map[Status]string, len(statusVocabulary))
	statusByExternal = make(map[string]Status, len(statusVocabulary))
)

func init() {
	for _, entry := range statusVocabulary {
		externalByStatus[entry.status] = entry.external
		statusByExternal[entry.external] = entry.status
	}
}

// ParseStatus converts an external status string into a Status.
// Matching ignores case and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	status, ok := statusByExternal[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", NewValidationError(
			"status",
			fmt.Sprintf("must be one of active, archived, deleted (got %q)", s),
			ErrInvalidStatus,
		)
	}
	return status, nil
}

// External returns the lowercase wire form of the status.
func (s Status) External() string {
	return externalByStatus[s]
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := externalByStatus[s]
	return ok
}
