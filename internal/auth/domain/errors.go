package domain

import (
	"github.com/healthtracker/backend/internal/errors"
)

// Token rejection errors.
//
// Every way a token can fail validation gets its own sentinel so callers can
// branch with errors.Is, while all of them still unwrap to ErrUnauthorized
// for HTTP mapping. The distinction matters for metrics and logging; clients
// only ever see 401.
var (
	// ErrTokenMalformed indicates the token is not a parseable JWT.
	ErrTokenMalformed = errors.Wrap(errors.ErrUnauthorized, "token is malformed")

	// ErrSignatureInvalid indicates the token signature does not verify
	// against the configured signing secret.
	ErrSignatureInvalid = errors.Wrap(errors.ErrUnauthorized, "token signature is invalid")

	// ErrTokenExpired indicates the token's expiry time has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token has expired")

	// ErrIssuerMismatch indicates the token was issued by a different issuer.
	ErrIssuerMismatch = errors.Wrap(errors.ErrUnauthorized, "token issuer mismatch")

	// ErrAudienceMismatch indicates the token was minted for a different audience.
	ErrAudienceMismatch = errors.Wrap(errors.ErrUnauthorized, "token audience mismatch")

	// ErrKindMismatch indicates an access token was presented where a refresh
	// token is required, or the reverse.
	ErrKindMismatch = errors.Wrap(errors.ErrUnauthorized, "wrong token kind")

	// ErrTokenRevoked indicates the token has been explicitly revoked.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token has been revoked")

	// ErrRevocationUnavailable indicates the revocation store could not be
	// consulted. Validation fails closed: a token that cannot be checked
	// against the revocation list is denied, never accepted.
	ErrRevocationUnavailable = errors.Wrap(errors.ErrUnavailable, "revocation store unavailable")
)
