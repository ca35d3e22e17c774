// Package service implements field-level encryption for protected health data.
package service

import (
	"crypto/sha256"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/singleflight"
)

// fieldKeySize is the derived key size in bytes (AES-256).
const fieldKeySize = 32

// KeyDeriver derives the field encryption key from the configured secret and
// salt using PBKDF2-HMAC-SHA256, and caches the result.
//
// Key derivation is deliberately expensive (the iteration count is tuned to
// slow down offline brute force), so the derived key is computed at most once
// per secret and shared by all callers. Concurrent first-time callers are
// collapsed into a single derivation via singleflight; later callers hit the
// cached key with a single atomic load.
//
// Thread safety: all methods are safe for concurrent use.
type KeyDeriver struct {
	mu         sync.Mutex
	secret     []byte
	salt       []byte
	iterations int

	key         atomic.Pointer[[fieldKeySize]byte]
	group       singleflight.Group
	derivations atomic.Int64
}

// NewKeyDeriver creates a KeyDeriver for the given secret, salt, and PBKDF2
// iteration count. No derivation happens until the first call to Key.
func NewKeyDeriver(secret, salt string, iterations int) *KeyDeriver {
	return &KeyDeriver{
		secret:     []byte(secret),
		salt:       []byte(salt),
		iterations: iterations,
	}
}

// Key returns the derived 32-byte field encryption key, deriving and caching
// it on first use. The returned slice must not be modified.
func (d *KeyDeriver) Key() []byte {
	if k := d.key.Load(); k != nil {
		return k[:]
	}

	v, _, _ := d.group.Do("derive", func() (any, error) {
		// Re-check under the flight: a previous flight may have populated
		// the cache between our load and Do.
		if k := d.key.Load(); k != nil {
			return k, nil
		}

		d.mu.Lock()
		secret, salt, iterations := d.secret, d.salt, d.iterations
		d.mu.Unlock()

		raw := pbkdf2.Key(secret, salt, iterations, fieldKeySize, sha256.New)
		var k [fieldKeySize]byte
		copy(k[:], raw)

		d.derivations.Add(1)
		d.key.Store(&k)
		return &k, nil
	})

	k := v.(*[fieldKeySize]byte)
	return k[:]
}

// Rotate replaces the secret and salt and invalidates the cached key. The
// next call to Key derives from the new material. Values encrypted under the
// old key can no longer be decrypted.
func (d *KeyDeriver) Rotate(secret, salt string) {
	d.mu.Lock()
	d.secret = []byte(secret)
	d.salt = []byte(salt)
	d.mu.Unlock()
	d.key.Store(nil)
}

// Invalidate drops the cached key, forcing re-derivation on next use.
func (d *KeyDeriver) Invalidate() {
	d.key.Store(nil)
}

// Derivations reports how many times the key has actually been derived.
func (d *KeyDeriver) Derivations() int64 {
	return d.derivations.Load()
}
