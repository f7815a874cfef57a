package auth

import "errors"

var (
	// -- Configuration --
	ErrMissingSecret   = errors.New("session secret is empty")
	ErrProviderMissing = errors.New("identity provider is not configured")

	// -- Login flow --
	ErrStateMismatch  = errors.New("invalid state token")
	ErrMissingCode    = errors.New("no authorization code")
	ErrMissingIDToken = errors.New("token response has no id_token")

	// -- Session --
	ErrInvalidSession = errors.New("invalid session token")
	ErrNoSubject      = errors.New("identity has no subject")
)
