package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/healthtracker/backend/internal/phi/domain"
)

// AESGCMCipher provides authenticated encryption using AES-256-GCM.
//
// AES-GCM combines the confidentiality of AES encryption with the authenticity
// of GMAC, so tampering with ciphertext is detected on decryption.
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce (96 bits, randomly generated per encryption)
//   - 16-byte authentication tag (appended to ciphertext)
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from multiple
//	goroutines. Each encryption operation generates a unique nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits). Keys should come from the
// KeyDeriver rather than being used raw.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, domain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// NonceSize returns the nonce size in bytes (12 for GCM).
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}

// Overhead returns the authentication tag size in bytes (16 for GCM).
func (a *AESGCMCipher) Overhead() int {
	return a.aead.Overhead()
}

// Encrypt encrypts plaintext with a fresh random nonce and returns the
// ciphertext (with authentication tag appended) and the nonce. The optional
// AAD is authenticated but not encrypted; the same AAD must be supplied to
// Decrypt. Nonces must never be reused with the same key, so each call draws
// a new one from crypto/rand.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using the provided nonce and AAD. The
// authentication tag is verified before any plaintext is returned; on
// verification failure the error is domain.ErrIntegrityViolation and no
// partial plaintext is exposed.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, domain.ErrIntegrityViolation
	}
	return plaintext, nil
}
