// Package aur drives an AUR helper (yay or paru). The AUR only exists on
// Arch; on anything else the adapter reports itself unavailable. When no
// helper is present the adapter bootstraps yay from source, which is the
// one place the installer builds a package instead of downloading one.
package aur

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
)

const yayRepo = "https://aur.archlinux.org/yay.git"

// helperCandidates in preference order; the first one found wins.
var helperCandidates = []string{"yay", "paru"}

// Adapter implements the installer contract for AUR packages.
type Adapter struct {
	distro distro.ID
	runner helpers.CommandRunner
	logger *zerolog.Logger

	helper   string
	ready    bool
	readyErr error
}

// New creates an AUR adapter.
func New(d distro.ID, runner helpers.CommandRunner, log *zerolog.Logger) *Adapter {
	return &Adapter{
		distro: d,
		runner: runner,
		logger: log,
	}
}

// Name returns the helper in use, or "aur" before EnsureReady has run.
func (a *Adapter) Name() string {
	if a.helper != "" {
		return a.helper
	}
	return "aur"
}

// EnsureReady locates an AUR helper, building yay when none is installed.
// The result is memoized: bootstrap runs at most once per process.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	if a.ready {
		return a.readyErr
	}
	a.ready = true
	a.readyErr = a.bootstrap(ctx)
	return a.readyErr
}

func (a *Adapter) bootstrap(ctx context.Context) error {
	if a.distro != distro.Arch {
		return fmt.Errorf("AUR requires Arch, detected %s: %w", a.distro, core.ErrBackendUnavailable)
	}

	for _, h := range helperCandidates {
		if a.runner.CommandExists(h) {
			a.helper = h
			a.logger.Debug().Str("helper", h).Msg("AUR helper found")
			return nil
		}
	}

	a.logger.Info().Msg("no AUR helper found, building yay from the AUR")

	for _, tool := range []string{"git", "makepkg"} {
		if err := a.runner.RequireCommand(tool); err != nil {
			return fmt.Errorf("cannot build yay: %w: %w", err, core.ErrBackendUnavailable)
		}
	}

	buildDir, err := os.MkdirTemp("", "postinstall-yay-*")
	if err != nil {
		return fmt.Errorf("create build dir: %w: %w", err, core.ErrBackendUnavailable)
	}
	defer os.RemoveAll(buildDir)

	spinner := ui.NewSpinner("Building yay")
	defer spinner.Finish()

	if _, err := a.runner.RunCommand(ctx, "git", "clone", yayRepo, buildDir); err != nil {
		return fmt.Errorf("clone yay: %w: %w", err, core.ErrBackendUnavailable)
	}
	spinner.Add(1)
	if _, err := a.runner.RunCommandInDir(ctx, buildDir, "makepkg", "-si", "--noconfirm"); err != nil {
		return fmt.Errorf("build yay: %w: %w", err, core.ErrBackendUnavailable)
	}
	spinner.Add(1)

	a.helper = "yay"
	return nil
}

// IsInstalled checks the pacman database; AUR packages land there like any
// other local package.
func (a *Adapter) IsInstalled(ctx context.Context, name string) (bool, error) {
	if _, err := a.runner.RunCommand(ctx, "pacman", "-Q", name); err != nil {
		return false, nil
	}
	return true, nil
}

// Install builds and installs AUR packages through the helper. Helpers run
// as the invoking user and escalate internally, so no sudo prefix here.
func (a *Adapter) Install(ctx context.Context, names []string) error {
	if err := a.EnsureReady(ctx); err != nil {
		return err
	}

	args := append([]string{"-S", "--noconfirm", "--needed"}, names...)
	if _, err := a.runner.RunCommand(ctx, a.helper, args...); err != nil {
		return fmt.Errorf("%s install failed: %w", a.helper, err)
	}

	a.logger.Debug().Strs("packages", names).Str("helper", a.helper).Msg("AUR packages installed")
	return nil
}
