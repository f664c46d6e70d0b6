// Package flatpak drives flatpak installs from the Flathub remote. The
// adapter can bootstrap the flatpak runtime itself through the native
// package manager and registers the Flathub remote on first use.
package flatpak

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/rs/zerolog"
)

const (
	remoteName = "flathub"
	remoteURL  = "https://dl.flathub.org/repo/flathub.flatpakrepo"
)

// RuntimeInstaller installs the flatpak runtime package when it is missing.
// Satisfied by the native backend adapter.
type RuntimeInstaller interface {
	Install(ctx context.Context, names []string) error
}

// Adapter implements the installer contract for Flatpak applications.
type Adapter struct {
	runner  helpers.CommandRunner
	runtime RuntimeInstaller
	logger  *zerolog.Logger

	ready    bool
	readyErr error
}

// New creates a Flatpak adapter.
func New(runner helpers.CommandRunner, runtime RuntimeInstaller, log *zerolog.Logger) *Adapter {
	return &Adapter{
		runner:  runner,
		runtime: runtime,
		logger:  log,
	}
}

// Name returns the backend name
func (a *Adapter) Name() string {
	return "flatpak"
}

// EnsureReady installs the flatpak runtime if needed and registers the
// Flathub remote. Memoized; runs at most once per process.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	if a.ready {
		return a.readyErr
	}
	a.ready = true
	a.readyErr = a.bootstrap(ctx)
	return a.readyErr
}

func (a *Adapter) bootstrap(ctx context.Context) error {
	if !a.runner.CommandExists("flatpak") {
		a.logger.Info().Msg("flatpak not installed, bootstrapping via native package manager")
		if err := a.runtime.Install(ctx, []string{"flatpak"}); err != nil {
			return fmt.Errorf("install flatpak runtime: %w: %w", err, core.ErrBackendUnavailable)
		}
	}

	remotes, err := a.runner.RunCommand(ctx, "flatpak", "remote-list")
	if err != nil {
		return fmt.Errorf("list flatpak remotes: %w: %w", err, core.ErrBackendUnavailable)
	}

	if !strings.Contains(remotes, remoteName) {
		a.logger.Info().Str("remote", remoteName).Msg("adding flatpak remote")
		if _, err := a.runner.RunCommand(ctx, "flatpak", "remote-add", "--if-not-exists", remoteName, remoteURL); err != nil {
			return fmt.Errorf("add %s remote: %w: %w", remoteName, err, core.ErrBackendUnavailable)
		}
	}

	return nil
}

// IsInstalled checks the installed application list for an exact ID match.
func (a *Adapter) IsInstalled(ctx context.Context, name string) (bool, error) {
	out, err := a.runner.RunCommand(ctx, "flatpak", "list", "--app", "--columns=application")
	if err != nil {
		return false, fmt.Errorf("flatpak list failed: %w", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == name {
			return true, nil
		}
	}
	return false, nil
}

// Install installs applications from Flathub. Flatpak treats reinstalling
// an existing app as a no-op under --noninteractive.
func (a *Adapter) Install(ctx context.Context, names []string) error {
	args := append([]string{"install", "-y", "--noninteractive", remoteName}, names...)
	if _, err := a.runner.RunCommand(ctx, "flatpak", args...); err != nil {
		return fmt.Errorf("flatpak install failed: %w", err)
	}

	a.logger.Debug().Strs("apps", names).Msg("flatpak applications installed")
	return nil
}
