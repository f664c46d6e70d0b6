// Package backends defines the uniform contract every package-management
// technology is driven through, and a registry that selects adapters once
// per run.
package backends

import (
	"context"
	"fmt"

	"github.com/quantmind-br/postinstall/internal/backends/aur"
	"github.com/quantmind-br/postinstall/internal/backends/flatpak"
	"github.com/quantmind-br/postinstall/internal/backends/native"
	"github.com/quantmind-br/postinstall/internal/backends/snap"
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/rs/zerolog"
)

// Installer is implemented by every backend adapter.
type Installer interface {
	// Name returns the adapter name (e.g. "pacman", "yay", "flatpak")
	Name() string

	// EnsureReady bootstraps the backend runtime itself. Adapters memoize
	// the result, so callers may invoke it before every group. A failure
	// wraps core.ErrBackendUnavailable.
	EnsureReady(ctx context.Context) error

	// IsInstalled is a cheap read-only query against the backend's
	// package database.
	IsInstalled(ctx context.Context, name string) (bool, error)

	// Install installs one logical package, which may span several
	// concrete names. Installing an already-present package must not error.
	Install(ctx context.Context, names []string) error
}

// Registry holds the adapter for each backend type, constructed once at
// start-up and injected into everything that installs packages.
type Registry struct {
	installers map[core.Backend]Installer
	native     *native.Adapter
}

// NewRegistry builds all adapters for the detected distribution.
func NewRegistry(d distro.ID, runner helpers.CommandRunner, log *zerolog.Logger) (*Registry, error) {
	nat, err := native.New(d, runner, log)
	if err != nil {
		return nil, fmt.Errorf("native backend: %w", err)
	}

	return &Registry{
		native: nat,
		installers: map[core.Backend]Installer{
			core.BackendNative:  nat,
			core.BackendAUR:     aur.New(d, runner, log),
			core.BackendFlatpak: flatpak.New(runner, nat, log),
			core.BackendSnap:    snap.New(d, runner, nat, log),
		},
	}, nil
}

// Get returns the adapter for a backend type.
func (r *Registry) Get(b core.Backend) (Installer, error) {
	inst, ok := r.installers[b]
	if !ok {
		return nil, fmt.Errorf("no installer registered for backend %q", b)
	}
	return inst, nil
}

// Native exposes the native adapter directly; steps need its extra
// operations (system upgrade, package removal) that the generic
// Installer contract does not carry.
func (r *Registry) Native() *native.Adapter {
	return r.native
}
