package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/healthtracker/backend/internal/auth/usecase"
)

// RunCleanRevokedTokens purges revocation records for tokens that have already
// expired on their own. Such records no longer affect validation and only grow
// the table. Supports dry-run mode to preview the purge count and both
// text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanRevokedTokens(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	out io.Writer,
	dryRun bool,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Info("cleaning revoked tokens",
		slog.Bool("dry_run", dryRun),
	)

	// Execute deletion or count operation
	var (
		count int64
		err   error
	)
	if dryRun {
		count, err = tokenUseCase.CountSweepable(ctx)
	} else {
		count, err = tokenUseCase.SweepExpired(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to clean revoked tokens: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCleanRevokedJSON(out, count, dryRun)
	} else {
		outputCleanRevokedText(out, count, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanRevokedText outputs the result in human-readable text format.
func outputCleanRevokedText(out io.Writer, count int64, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would delete %d revocation record(s) for expired tokens\n", count)
	} else {
		fmt.Fprintf(out, "Successfully deleted %d revocation record(s) for expired tokens\n", count)
	}
}

// outputCleanRevokedJSON outputs the result in JSON format for machine consumption.
func outputCleanRevokedJSON(out io.Writer, count int64, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
