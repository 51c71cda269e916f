package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
)

// ContextKey is the type of request-scoped values set by this package.
type ContextKey string

const (
	// IdentityContextKey holds the authenticated domain.Identity.
	IdentityContextKey ContextKey = "identity"

	// UserIDContextKey holds the authenticated user's UUID when the identity
	// is a locally registered user.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// WithIdentity stores the caller's identity, and its user ID when the subject
// is a UUID.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	ctx = context.WithValue(ctx, IdentityContextKey, identity)
	if id, err := uuid.Parse(identity.Subject); err == nil {
		ctx = context.WithValue(ctx, UserIDContextKey, id)
	}
	return ctx
}

// GetIdentity returns the identity placed by the auth middleware.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	if !ok || identity.Validate() != nil {
		return domain.Identity{}, false
	}
	return identity, true
}

// GetUserID returns the caller's user ID when the identity is a local user.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 16 random bytes hex encoded. If crypto/rand fails
// it falls back to a time-based ID rather than a constant.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	fallbackID := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(fallbackID[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(fallbackID[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(fallbackID[12:16], uint32(now.Unix()))
	return hex.EncodeToString(fallbackID)
}
