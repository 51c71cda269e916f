package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
)

// TokenTypeAccess is the only token type this service issues.
const TokenTypeAccess = "access"

// Claims holds the validated contents of an access token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Identity returns the caller identity carried by the token.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{Subject: c.Subject, Email: c.Email}
}

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken signs an access token for user and returns it with its expiry.
	GenerateToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateToken verifies signature, expiry and type.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
