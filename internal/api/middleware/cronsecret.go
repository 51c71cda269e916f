package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/service"
)

// CronSecretHeader carries the shared secret for scheduler-triggered routes.
const CronSecretHeader = "X-Cron-Secret"

// CronSecret guards a route with a shared secret presented either as a bearer
// token or in the X-Cron-Secret header. With no secret configured every
// request fails with 500.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Server configuration error", service.ErrCronSecretNotConfigured)
				return
			}

			if !secretMatches(secret, presentedSecrets(r)) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Unauthorized", nil,
					shared.WithElevatedLogLevel())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedSecrets(r *http.Request) []string {
	var candidates []string
	if token, ok := bearerToken(r); ok {
		candidates = append(candidates, token)
	}
	if header := strings.TrimSpace(r.Header.Get(CronSecretHeader)); header != "" {
		candidates = append(candidates, header)
	}
	return candidates
}

// secretMatches compares every candidate in constant time.
func secretMatches(secret string, candidates []string) bool {
	matched := 0
	for _, candidate := range candidates {
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(secret))
	}
	return matched == 1
}
