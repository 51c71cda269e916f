package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

// User represents a person who owns a personal workspace.
// HashedPassword is empty for users that were only ever provisioned from an
// external identity.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           *string   `json:"name,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a User with a fresh ID and normalized email.
// The name is trimmed and dropped when blank.
func NewUser(email string, name *string, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          NormalizeEmail(email),
		Name:           trimToNil(name),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if u.Email == "" {
		return NewValidationError("email", "cannot be empty", ErrInvalidEmail)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", "is not a valid address", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword checks a plaintext password against the length rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 8 characters", ErrInvalidPassword)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "must be at most 72 characters", ErrInvalidPassword)
	}
	return nil
}

// validateEmailFormat requires a non-empty local part and a dotted domain.
func validateEmailFormat(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// trimToNil trims s and returns nil when nothing is left.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
