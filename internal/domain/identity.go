package domain

import "strings"

// Identity is the authenticated caller as asserted by the identity provider.
// Subject is stable; Email may be empty for some providers.
type Identity struct {
	Subject string
	Email   string
}

// Validate requires a non-blank subject.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Subject) == "" {
		return ErrUnauthorized
	}
	return nil
}
