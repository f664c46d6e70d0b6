// Package snap drives snap installs. snapd is bootstrapped through the
// native package manager where the distribution carries it; on Arch snapd
// lives in the AUR, so the adapter reports itself unavailable rather than
// pulling in a second backend's bootstrap chain.
package snap

import (
	"context"
	"fmt"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/rs/zerolog"
)

// RuntimeInstaller installs the snapd package when it is missing.
type RuntimeInstaller interface {
	Install(ctx context.Context, names []string) error
}

// Adapter implements the installer contract for snap packages.
type Adapter struct {
	distro  distro.ID
	runner  helpers.CommandRunner
	runtime RuntimeInstaller
	logger  *zerolog.Logger

	ready    bool
	readyErr error
}

// New creates a snap adapter.
func New(d distro.ID, runner helpers.CommandRunner, runtime RuntimeInstaller, log *zerolog.Logger) *Adapter {
	return &Adapter{
		distro:  d,
		runner:  runner,
		runtime: runtime,
		logger:  log,
	}
}

// Name returns the backend name
func (a *Adapter) Name() string {
	return "snap"
}

// EnsureReady installs snapd if needed and enables its socket. Memoized.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	if a.ready {
		return a.readyErr
	}
	a.ready = true
	a.readyErr = a.bootstrap(ctx)
	return a.readyErr
}

func (a *Adapter) bootstrap(ctx context.Context) error {
	if a.runner.CommandExists("snap") {
		return nil
	}

	if a.distro == distro.Arch {
		return fmt.Errorf("snapd is not packaged natively on Arch: %w", core.ErrBackendUnavailable)
	}

	a.logger.Info().Msg("snapd not installed, bootstrapping via native package manager")
	if err := a.runtime.Install(ctx, []string{"snapd"}); err != nil {
		return fmt.Errorf("install snapd: %w: %w", err, core.ErrBackendUnavailable)
	}
	if _, err := a.runner.RunCommand(ctx, "sudo", "systemctl", "enable", "--now", "snapd.socket"); err != nil {
		return fmt.Errorf("enable snapd socket: %w: %w", err, core.ErrBackendUnavailable)
	}

	return nil
}

// IsInstalled queries the snap database. A non-zero exit means the snap is
// absent.
func (a *Adapter) IsInstalled(ctx context.Context, name string) (bool, error) {
	if _, err := a.runner.RunCommand(ctx, "snap", "list", name); err != nil {
		return false, nil
	}
	return true, nil
}

// Install installs snaps one at a time; the snap CLI rejects multiple
// names when any of them needs --classic confinement prompts.
func (a *Adapter) Install(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := a.runner.RunCommand(ctx, "sudo", "snap", "install", name); err != nil {
			return fmt.Errorf("snap install %s failed: %w", name, err)
		}
	}

	a.logger.Debug().Strs("snaps", names).Msg("snaps installed")
	return nil
}
