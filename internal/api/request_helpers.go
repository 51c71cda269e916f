package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// requireIdentity returns the caller's identity, writing a 401 when the auth
// middleware has not placed one in the context.
func requireIdentity(w http.ResponseWriter, r *http.Request, log *slog.Logger) (domain.Identity, bool) {
	identity, ok := shared.GetIdentity(r.Context())
	if !ok {
		if log == nil {
			log = logger.FromContextOrDefault(r.Context(), slog.Default())
		}
		log.Warn("identity not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return domain.Identity{}, false
	}
	return identity, true
}

// requireIdentityAndPathUUID combines requireIdentity and getPathUUID and
// writes the error response when either fails.
func requireIdentityAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.Identity, uuid.UUID, bool) {
	identity, ok := requireIdentity(w, r, log)
	if !ok {
		return domain.Identity{}, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err)
		return domain.Identity{}, uuid.Nil, false
	}
	return identity, id, true
}

// decodeRequest decodes and validates a JSON body into v. On failure it
// writes a 400 and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}

// optionalString distinguishes an absent JSON field from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when the
// field is present.
func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// priorityValue accepts a priority as a JSON number or a numeric string.
// Null and "" leave Value nil.
type priorityValue struct {
	Set   bool
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *priorityValue) UnmarshalJSON(b []byte) error {
	p.Set = true
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		p.Value = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			p.Value = nil
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return domain.NewValidationError("priority", "must be 1, 2, or 3", domain.ErrInvalidPriority)
	}
	p.Value = &n
	return nil
}
