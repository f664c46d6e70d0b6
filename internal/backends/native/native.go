// Package native drives the distribution's own package manager (pacman,
// apt-get, dnf, zypper) behind the generic installer contract.
package native

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/rs/zerolog"
)

// commandSet holds the command templates for one package manager.
// Install/remove/upgrade run under sudo; queries do not.
type commandSet struct {
	tool    string
	query   []string
	install []string
	remove  []string
	refresh []string
	upgrade []string
}

var commandSets = map[distro.ID]commandSet{
	distro.Arch: {
		tool:    "pacman",
		query:   []string{"pacman", "-Q"},
		install: []string{"pacman", "-S", "--noconfirm", "--needed"},
		remove:  []string{"pacman", "-Rns", "--noconfirm"},
		refresh: []string{"pacman", "-Syy"},
		upgrade: []string{"pacman", "-Syu", "--noconfirm"},
	},
	distro.Debian: {
		tool:    "apt-get",
		query:   []string{"dpkg", "-s"},
		install: []string{"apt-get", "install", "-y"},
		remove:  []string{"apt-get", "remove", "-y"},
		refresh: []string{"apt-get", "update"},
		upgrade: []string{"apt-get", "dist-upgrade", "-y"},
	},
	distro.Fedora: {
		tool:    "dnf",
		query:   []string{"rpm", "-q"},
		install: []string{"dnf", "install", "-y"},
		remove:  []string{"dnf", "remove", "-y"},
		refresh: []string{"dnf", "makecache"},
		upgrade: []string{"dnf", "upgrade", "-y"},
	},
	distro.OpenSUSE: {
		tool:    "zypper",
		query:   []string{"rpm", "-q"},
		install: []string{"zypper", "--non-interactive", "install"},
		remove:  []string{"zypper", "--non-interactive", "remove"},
		refresh: []string{"zypper", "refresh"},
		upgrade: []string{"zypper", "--non-interactive", "update"},
	},
}

func init() {
	// Ubuntu shares the Debian toolchain.
	commandSets[distro.Ubuntu] = commandSets[distro.Debian]
}

// Adapter implements the installer contract for the native package manager.
type Adapter struct {
	cmds   commandSet
	runner helpers.CommandRunner
	logger *zerolog.Logger
}

// New creates a native adapter for the given distribution.
func New(d distro.ID, runner helpers.CommandRunner, log *zerolog.Logger) (*Adapter, error) {
	cmds, ok := commandSets[d]
	if !ok {
		return nil, fmt.Errorf("no native package manager known for distribution %q", d)
	}

	return &Adapter{
		cmds:   cmds,
		runner: runner,
		logger: log,
	}, nil
}

// Name returns the package manager name
func (a *Adapter) Name() string {
	return a.cmds.tool
}

// EnsureReady verifies the package manager binary exists. The native
// manager ships with the distribution, so there is nothing to bootstrap.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	return a.runner.RequireCommand(a.cmds.tool)
}

// IsInstalled queries the local package database. A non-zero exit means
// the package is absent, not that the query failed; only a query that
// never ran (binary missing, context cancelled) surfaces as an error.
func (a *Adapter) IsInstalled(ctx context.Context, name string) (bool, error) {
	args := append(a.cmds.query[1:], name)
	_, err := a.runner.RunCommand(ctx, a.cmds.query[0], args...)
	if err == nil {
		return true, nil
	}
	if a.runner.GetExitCode(err) >= 0 {
		return false, nil
	}
	return false, fmt.Errorf("%s query failed: %w", a.cmds.query[0], err)
}

// Install installs the concrete names for one logical package in a single
// transaction. The underlying managers all treat already-installed
// packages as a no-op with the flags used here.
func (a *Adapter) Install(ctx context.Context, names []string) error {
	args := append(append([]string{}, a.cmds.install...), names...)
	if _, err := a.runner.RunCommand(ctx, "sudo", args...); err != nil {
		return fmt.Errorf("%s install failed: %w", a.cmds.tool, err)
	}

	a.logger.Debug().Strs("packages", names).Str("manager", a.cmds.tool).Msg("packages installed")
	return nil
}

// Remove uninstalls packages. A failure to remove something that was never
// installed is not reported as an error.
func (a *Adapter) Remove(ctx context.Context, names []string) error {
	for _, name := range names {
		installed, _ := a.IsInstalled(ctx, name)
		if !installed {
			continue
		}

		args := append(append([]string{}, a.cmds.remove...), name)
		if _, err := a.runner.RunCommand(ctx, "sudo", args...); err != nil {
			return fmt.Errorf("%s remove %s failed: %w", a.cmds.tool, name, err)
		}
	}
	return nil
}

// Refresh updates the package index.
func (a *Adapter) Refresh(ctx context.Context) error {
	args := append([]string{}, a.cmds.refresh...)
	if _, err := a.runner.RunCommand(ctx, "sudo", args...); err != nil {
		return fmt.Errorf("%s refresh failed: %w", a.cmds.tool, err)
	}
	return nil
}

// Upgrade performs a full system upgrade. Output streams straight to the
// terminal; a full upgrade can run for many minutes and emit megabytes.
func (a *Adapter) Upgrade(ctx context.Context) error {
	args := append([]string{}, a.cmds.upgrade...)
	if err := a.runner.RunCommandStreaming(ctx, os.Stdout, os.Stderr, "sudo", args...); err != nil {
		return fmt.Errorf("%s upgrade failed: %w", a.cmds.tool, err)
	}
	return nil
}
