package service

import (
	"encoding/base64"
	"sync/atomic"

	"github.com/healthtracker/backend/internal/phi/domain"
)

// FieldCipher encrypts and decrypts individual protected string fields for
// storage, using a key obtained from the KeyDeriver.
//
// The stored representation is base64(nonce || ciphertext || tag): a 12-byte
// random nonce followed by the AES-256-GCM output with its 16-byte
// authentication tag. Each encryption draws a fresh nonce, so encrypting the
// same plaintext twice yields different stored values.
//
// Empty strings pass through unchanged in both directions: an absent value is
// not secret, and encrypting it would make "no value" indistinguishable from
// a present value at the storage layer.
type FieldCipher struct {
	deriver *KeyDeriver
	entry   atomic.Pointer[cipherEntry]
}

// cipherEntry pairs an AEAD with the derived key it was built from, so the
// AEAD can be rebuilt after a key rotation.
type cipherEntry struct {
	key  []byte
	aead *AESGCMCipher
}

// NewFieldCipher creates a FieldCipher on top of the given KeyDeriver.
func NewFieldCipher(deriver *KeyDeriver) *FieldCipher {
	return &FieldCipher{deriver: deriver}
}

// cipher returns the AEAD for the current derived key, rebuilding it if the
// deriver has rotated since the last call.
func (f *FieldCipher) cipher() (*AESGCMCipher, error) {
	key := f.deriver.Key()

	// The deriver hands out slices into its cached key array, so comparing
	// backing-array addresses detects rotation without comparing key bytes.
	if e := f.entry.Load(); e != nil && &e.key[0] == &key[0] {
		return e.aead, nil
	}

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	f.entry.Store(&cipherEntry{key: key, aead: aead})
	return aead, nil
}

// EncryptField encrypts a single field value for storage. An empty plaintext
// is returned unchanged.
func (f *FieldCipher) EncryptField(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := f.cipher()
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", err
	}

	combined := make([]byte, 0, len(nonce)+len(ciphertext))
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// DecryptField decrypts a stored field value. An empty stored value is
// returned unchanged. Returns domain.ErrMalformedCiphertext when the value is
// not a well-formed protected field, and domain.ErrIntegrityViolation when
// authentication fails.
func (f *FieldCipher) DecryptField(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}

	aead, err := f.cipher()
	if err != nil {
		return "", err
	}

	combined, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", domain.ErrMalformedCiphertext
	}

	if len(combined) < aead.NonceSize()+aead.Overhead() {
		return "", domain.ErrMalformedCiphertext
	}

	nonce := combined[:aead.NonceSize()]
	ciphertext := combined[aead.NonceSize():]

	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
