package domain

import "errors"

var (
	// ErrCredentialMissing means a tenant has no usable access token.
	// Terminal for that tenant's sync cycle; never retried within it.
	ErrCredentialMissing = errors.New("store connection missing or has no access token")

	// ErrSignatureMismatch means a webhook HMAC did not match. The request
	// is rejected before its body is parsed and no state is mutated.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)
