package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken indicates that the provided token is malformed, has an
	// invalid signature or fails validation for another reason.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates that the token is past its expiry time.
	ErrExpiredToken = errors.New("token has expired")

	// ErrTokenNotYetValid indicates that the token's "not before" time is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrMissingToken indicates that no token was provided.
	ErrMissingToken = errors.New("missing token")

	// ErrWrongTokenType indicates a token of another type was presented.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
