package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/healthtracker/backend/internal/auth/usecase"
)

// originCLI is recorded as the origin address for revocations issued from the
// command line rather than from an HTTP request.
const originCLI = "cli"

// RunRevokeToken revokes a single token so it can no longer authenticate.
// Intended for incident response when a token is known to be compromised.
// Revoking an already revoked or already expired token succeeds.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeToken(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	out io.Writer,
	token, reason string,
) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	if err := tokenUseCase.Revoke(ctx, token, reason, originCLI); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	fmt.Fprintln(out, "Token revoked successfully")
	logger.Info("token revoked", slog.String("reason", reason))

	return nil
}
