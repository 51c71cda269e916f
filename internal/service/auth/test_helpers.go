package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/voicetask-api/internal/config"
	"github.com/phrazzld/voicetask-api/internal/domain"
)

// DefaultJWTConfig returns an AuthConfig suitable for tests.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
		BcryptCost:           4,
	}
}

// NewTestJWTService creates a JWT service from DefaultJWTConfig whose clock is
// timeFunc. A nil timeFunc uses time.Now.
func NewTestJWTService(timeFunc func() time.Time) (JWTService, error) {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	cfg := DefaultJWTConfig()
	return newHMACJWTService(cfg.JWTSecret, time.Duration(cfg.TokenLifetimeMinutes)*time.Minute, timeFunc)
}

// GenerateAuthHeaderForTesting returns a "Bearer <token>" header value for user.
func GenerateAuthHeaderForTesting(user *domain.User) (string, error) {
	svc, err := NewTestJWTService(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create JWT service: %w", err)
	}
	token, _, err := svc.GenerateToken(context.Background(), user)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}
