package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtracker/backend/internal/phi/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		cipher, err := NewAESGCM(testKey(t))
		require.NoError(t, err)
		assert.Equal(t, 12, cipher.NonceSize())
		assert.Equal(t, 16, cipher.Overhead())
	})

	t.Run("invalid key size", func(t *testing.T) {
		for _, size := range []int{0, 16, 31, 33, 64} {
			_, err := NewAESGCM(make([]byte, size))
			assert.ErrorIs(t, err, domain.ErrInvalidKeySize)
		}
	})
}

func TestAESGCMCipher_EncryptDecrypt(t *testing.T) {
	cipher, err := NewAESGCM(testKey(t))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		plaintext := []byte("blood pressure 120/80")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		require.Len(t, nonce, 12)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("unique nonces per encryption", func(t *testing.T) {
		plaintext := []byte("same plaintext")

		_, nonce1, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)
		_, nonce2, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		assert.NotEqual(t, nonce1, nonce2)
	})

	t.Run("tampered ciphertext fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("sensitive"), nil)
		require.NoError(t, err)

		ciphertext[0] ^= 0x01

		_, err = cipher.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})

	t.Run("mismatched AAD fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("sensitive"), []byte("record-1"))
		require.NoError(t, err)

		_, err = cipher.Decrypt(ciphertext, nonce, []byte("record-2"))
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})

	t.Run("wrong key fails authentication", func(t *testing.T) {
		ciphertext, nonce, err := cipher.Encrypt([]byte("sensitive"), nil)
		require.NoError(t, err)

		other, err := NewAESGCM(testKey(t))
		require.NoError(t, err)

		_, err = other.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})
}
