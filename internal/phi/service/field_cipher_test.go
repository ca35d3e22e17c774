package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtracker/backend/internal/phi/domain"
)

func newTestFieldCipher() *FieldCipher {
	// Small iteration count keeps tests fast; production uses 100k+.
	return NewFieldCipher(NewKeyDeriver("field-cipher-test-secret", "field-cipher-test-salt", 1000))
}

func TestFieldCipher_EncryptField(t *testing.T) {
	cipher := newTestFieldCipher()

	t.Run("round trip", func(t *testing.T) {
		stored, err := cipher.EncryptField("diagnosed with hypertension")
		require.NoError(t, err)
		require.NotEmpty(t, stored)
		assert.NotEqual(t, "diagnosed with hypertension", stored)

		plaintext, err := cipher.DecryptField(stored)
		require.NoError(t, err)
		assert.Equal(t, "diagnosed with hypertension", plaintext)
	})

	t.Run("stored value is base64 of nonce plus ciphertext", func(t *testing.T) {
		stored, err := cipher.EncryptField("x")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(stored)
		require.NoError(t, err)
		// 12-byte nonce + 1 byte plaintext + 16-byte tag
		assert.Len(t, raw, 12+1+16)
	})

	t.Run("same plaintext yields different stored values", func(t *testing.T) {
		first, err := cipher.EncryptField("repeat me")
		require.NoError(t, err)
		second, err := cipher.EncryptField("repeat me")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)

		for _, stored := range []string{first, second} {
			plaintext, err := cipher.DecryptField(stored)
			require.NoError(t, err)
			assert.Equal(t, "repeat me", plaintext)
		}
	})

	t.Run("empty plaintext passes through", func(t *testing.T) {
		stored, err := cipher.EncryptField("")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("unicode plaintext", func(t *testing.T) {
		stored, err := cipher.EncryptField("allergie au pénicilline — 𝛃-lactamines")
		require.NoError(t, err)

		plaintext, err := cipher.DecryptField(stored)
		require.NoError(t, err)
		assert.Equal(t, "allergie au pénicilline — 𝛃-lactamines", plaintext)
	})
}

func TestFieldCipher_DecryptField(t *testing.T) {
	cipher := newTestFieldCipher()

	t.Run("empty stored value passes through", func(t *testing.T) {
		plaintext, err := cipher.DecryptField("")
		require.NoError(t, err)
		assert.Empty(t, plaintext)
	})

	t.Run("invalid base64 is malformed", func(t *testing.T) {
		_, err := cipher.DecryptField("not-valid-base64!!!")
		assert.ErrorIs(t, err, domain.ErrMalformedCiphertext)
	})

	t.Run("plaintext column value is malformed", func(t *testing.T) {
		// Legacy rows written before encryption was enabled.
		_, err := cipher.DecryptField("high cholesterol")
		assert.ErrorIs(t, err, domain.ErrMalformedCiphertext)
	})

	t.Run("too short to hold nonce and tag is malformed", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 27))
		_, err := cipher.DecryptField(short)
		assert.ErrorIs(t, err, domain.ErrMalformedCiphertext)
	})

	t.Run("flipped byte is an integrity violation", func(t *testing.T) {
		stored, err := cipher.EncryptField("tamper target")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(stored)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0x01
		tampered := base64.StdEncoding.EncodeToString(raw)

		_, err = cipher.DecryptField(tampered)
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})

	t.Run("rotated key cannot decrypt old values", func(t *testing.T) {
		deriver := NewKeyDeriver("original-secret-value", "original-salt", 1000)
		cipher := NewFieldCipher(deriver)

		stored, err := cipher.EncryptField("sealed under old key")
		require.NoError(t, err)

		deriver.Rotate("replacement-secret-value", "replacement-salt")

		_, err = cipher.DecryptField(stored)
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})
}
