// Package sudo validates elevated privileges up front and keeps the sudo
// timestamp fresh for the lifetime of a run, so hour-long installs never
// stop to re-prompt for a password mid-step.
package sudo

import (
	"context"
	"fmt"
	"time"

	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/rs/zerolog"
)

const refreshInterval = 60 * time.Second

// Validate prompts for (or refreshes) sudo credentials. Called once before
// the step loop; a failure here is critical since nearly every step
// escalates.
func Validate(ctx context.Context, runner helpers.CommandRunner) error {
	if err := runner.RequireCommand("sudo"); err != nil {
		return err
	}
	if _, err := runner.RunCommand(ctx, "sudo", "-v"); err != nil {
		return fmt.Errorf("sudo validation failed: %w", err)
	}
	return nil
}

// KeepAlive refreshes the sudo timestamp on a ticker until ctx is
// cancelled. Best effort: a failed refresh is logged and retried on the
// next tick, never surfaced to the step loop.
func KeepAlive(ctx context.Context, runner helpers.CommandRunner, log *zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := runner.RunCommand(ctx, "sudo", "-n", "true"); err != nil {
					log.Warn().Err(err).Msg("sudo keep-alive refresh failed")
				}
			}
		}
	}()
}
