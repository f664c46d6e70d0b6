// Package resolver maps distribution-agnostic package identifiers to the
// concrete names a backend's install command expects. Resolution is pure:
// a (distro, backend, identifier) triple always yields the same names, no
// filesystem or network involved.
package resolver

import (
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
)

// anyDistro is the override-table key for "every distribution not listed
// explicitly".
const anyDistro = distro.ID("*")

// Resolve returns the concrete package names for identifier on the given
// distribution and backend. An empty result is a valid steady state meaning
// the package is intentionally absent there; callers skip it silently.
func Resolve(identifier string, d distro.ID, b core.Backend) []string {
	if d == distro.Unknown {
		return nil
	}

	switch b {
	case core.BackendFlatpak, core.BackendSnap:
		// Flatpak application IDs and snap names are distribution-agnostic.
		return []string{identifier}
	case core.BackendAUR:
		if d != distro.Arch {
			return nil
		}
	}

	entry, ok := overrides[identifier]
	if !ok {
		// No known divergence: the identifier is the concrete name.
		return []string{identifier}
	}

	names, ok := entry[d]
	if !ok {
		names, ok = entry[anyDistro]
	}
	if !ok || len(names) == 0 {
		return nil
	}

	out := make([]string, len(names))
	copy(out, names)
	return out
}
