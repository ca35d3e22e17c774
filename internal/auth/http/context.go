// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
)

// claimsKey is a context key type for storing verified token claims.
type claimsKey struct{}

// WithClaims stores verified token claims in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithClaims(ctx context.Context, claims *authDomain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves verified token claims from the context.
// Returns (claims, true) if claims are present, or (nil, false) if no claims were set.
func GetClaims(ctx context.Context) (*authDomain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authDomain.Claims)
	return claims, ok
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns (id, true) when the authentication middleware has run, (uuid.Nil, false) otherwise.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
