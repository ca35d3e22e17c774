package domain

import (
	"github.com/healthtracker/backend/internal/errors"
)

// Field encryption error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for protected-field failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrInvalidKeySize indicates the derived encryption key size is invalid.
	//
	// Field keys must be exactly 32 bytes (256 bits) for AES-256-GCM.
	//
	// HTTP Status: 500 Internal Server Error (generic body)
	ErrInvalidKeySize = errors.Wrap(errors.ErrDataIntegrity, "invalid key size")

	// ErrMalformedCiphertext indicates stored ciphertext is not a valid
	// protected field value.
	//
	// This error is returned when the stored value is not valid base64 or is
	// too short to contain a nonce and authentication tag. It usually means
	// the column holds plaintext from before encryption was enabled, or was
	// written by something other than this application.
	//
	// HTTP Status: 500 Internal Server Error (generic body)
	ErrMalformedCiphertext = errors.Wrap(errors.ErrDataIntegrity, "malformed ciphertext")

	// ErrIntegrityViolation indicates authenticated decryption failed.
	//
	// This error can occur due to:
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Wrong decryption key (rotated secret, wrong salt)
	//   - Corrupted encrypted data
	//
	// The caller sent no input that could explain the failure, so nothing
	// beyond a generic error leaves the server; the specific cause stays in
	// the log. Decryption never returns unauthenticated plaintext.
	//
	// HTTP Status: 500 Internal Server Error (generic body)
	ErrIntegrityViolation = errors.Wrap(errors.ErrDataIntegrity, "field integrity violation")
)

// Zero securely overwrites a byte slice with zeros to clear sensitive data from memory.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
