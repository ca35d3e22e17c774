package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh
// tokens. The kind is embedded in the token itself, so a refresh token can
// never be replayed as an access token or vice versa.
type TokenKind string

const (
	// TokenKindAccess is a short-lived token presented on API requests.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is a long-lived token exchanged for new token pairs.
	TokenKindRefresh TokenKind = "refresh"
)

// Valid reports whether the kind is one of the known token kinds.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// Claims is the verified content of an accepted token.
type Claims struct {
	UserID    uuid.UUID
	Kind      TokenKind
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the result of minting credentials for a user: a short-lived
// access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// RevocationRecord marks a single token as revoked. The token itself is never
// stored; only its fingerprint is, so a leaked revocation table does not leak
// usable credentials.
type RevocationRecord struct {
	ID            uuid.UUID
	Fingerprint   string
	OwnerID       uuid.UUID
	ExpiresAt     time.Time
	RevokedAt     time.Time
	Reason        string
	OriginAddress string
}

// Fingerprint computes the hex-encoded SHA-256 digest of a token string. All
// revocation bookkeeping keys on this value.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
