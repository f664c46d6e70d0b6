// Package pkgset installs logical package groups through backend adapters.
// A group is a named identifier list tied to one backend; every package in
// it gets an individual outcome and one package's failure never blocks the
// rest.
package pkgset

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantmind-br/postinstall/internal/backends"
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/resolver"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
)

// Source yields the adapter for a backend type. Satisfied by
// backends.Registry.
type Source interface {
	Get(b core.Backend) (backends.Installer, error)
}

// Options configure group installation behavior for a whole run.
type Options struct {
	Mode         core.Mode
	DryRun       bool
	ShowProgress bool
}

// Installer resolves and installs package groups.
type Installer struct {
	source Source
	distro distro.ID
	opts   Options
	logger *zerolog.Logger
}

// Report aggregates per-package outcomes for one group, each list in input
// order. A non-empty Failed list is a normal end state, not an error.
type Report struct {
	Section   string
	Backend   core.Backend
	Installed []core.Outcome
	Skipped   []core.Outcome
	Failed    []core.Outcome
}

// HasFailures reports whether any package in the group failed.
func (r *Report) HasFailures() bool {
	return len(r.Failed) > 0
}

// Outcomes returns all outcomes across the three lists.
func (r *Report) Outcomes() []core.Outcome {
	out := make([]core.Outcome, 0, len(r.Installed)+len(r.Skipped)+len(r.Failed))
	out = append(out, r.Installed...)
	out = append(out, r.Skipped...)
	out = append(out, r.Failed...)
	return out
}

// NewInstaller creates a group installer.
func NewInstaller(src Source, d distro.ID, opts Options, log *zerolog.Logger) *Installer {
	return &Installer{
		source: src,
		distro: d,
		opts:   opts,
		logger: log,
	}
}

// InstallGroup installs the declared identifier list for (section, backend).
// An undeclared group yields an empty report.
func (g *Installer) InstallGroup(ctx context.Context, section string, b core.Backend) *Report {
	ids, ok := Lookup(section, b, g.opts.Mode)
	if !ok {
		g.logger.Debug().Str("section", section).Str("backend", string(b)).Msg("no package list declared")
		return &Report{Section: section, Backend: b}
	}
	return g.InstallList(ctx, section, b, ids)
}

// InstallList installs an explicit identifier list. Identifiers are
// deduplicated first-seen-first, resolved per distribution, and classified
// into installed/skipped/failed. Identifiers that resolve empty are not
// applicable here and appear in no list.
func (g *Installer) InstallList(ctx context.Context, section string, b core.Backend, identifiers []string) *Report {
	report := &Report{Section: section, Backend: b}

	ids := dedupe(identifiers)
	if len(ids) == 0 {
		return report
	}

	inst, err := g.source.Get(b)
	if err != nil {
		report.Failed = append(report.Failed, core.Outcome{
			Identifier: section,
			Backend:    b,
			Status:     core.StatusFailed,
			Reason:     err.Error(),
		})
		return report
	}

	// Bootstrapping a backend mutates the system: flatpak and snapd get
	// installed through the native manager, yay gets built from source.
	// Dry runs skip it and preview against read-only queries only.
	if !g.opts.DryRun {
		if err := inst.EnsureReady(ctx); err != nil {
			// The backend itself is broken: one aggregated failure for the
			// whole group, not one per package.
			g.logger.Warn().Err(err).Str("section", section).Str("backend", string(b)).Msg("backend unavailable, skipping group")
			reason := err.Error()
			if !errors.Is(err, core.ErrBackendUnavailable) {
				reason = fmt.Sprintf("backend %s not ready: %s", inst.Name(), reason)
			}
			report.Failed = append(report.Failed, core.Outcome{
				Identifier: section,
				Backend:    b,
				Status:     core.StatusFailed,
				Reason:     reason,
			})
			return report
		}
	}

	var bar *ui.ProgressBar
	if g.opts.ShowProgress {
		bar = ui.NewProgressBar(int64(len(ids)), fmt.Sprintf("Installing %s (%s)", section, inst.Name()))
		defer bar.Finish()
	}

	for _, id := range ids {
		outcome := g.installOne(ctx, inst, b, id)
		if bar != nil {
			bar.Add(1)
		}
		switch outcome.Status {
		case core.StatusInstalled:
			report.Installed = append(report.Installed, outcome)
		case core.StatusSkipped:
			report.Skipped = append(report.Skipped, outcome)
		case core.StatusFailed:
			report.Failed = append(report.Failed, outcome)
		case core.StatusNotApplicable:
			// Intentionally absent everywhere.
		}
	}

	g.logger.Info().
		Str("section", section).
		Str("backend", string(b)).
		Int("installed", len(report.Installed)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("group installation finished")

	return report
}

func (g *Installer) installOne(ctx context.Context, inst backends.Installer, b core.Backend, identifier string) core.Outcome {
	outcome := core.Outcome{Identifier: identifier, Backend: b}

	names := resolver.Resolve(identifier, g.distro, b)
	if len(names) == 0 {
		g.logger.Debug().Str("identifier", identifier).Msg("no mapping for this distribution, skipping silently")
		outcome.Status = core.StatusNotApplicable
		return outcome
	}

	allPresent := true
	for _, name := range names {
		installed, err := inst.IsInstalled(ctx, name)
		if err != nil || !installed {
			allPresent = false
			break
		}
	}
	if allPresent {
		outcome.Status = core.StatusSkipped
		ui.PrintPackageResult(identifier, "SKIP", "already installed")
		return outcome
	}

	if g.opts.DryRun {
		// Preview what a real run would install; no backend command runs.
		outcome.Status = core.StatusInstalled
		outcome.Reason = "dry run"
		ui.PrintPackageResult(identifier, "DRY", "would install")
		return outcome
	}

	if err := inst.Install(ctx, names); err != nil {
		g.logger.Error().Err(err).Str("identifier", identifier).Strs("names", names).Msg("package installation failed")
		outcome.Status = core.StatusFailed
		outcome.Reason = err.Error()
		ui.PrintPackageResult(identifier, "FAIL", err.Error())
		return outcome
	}

	outcome.Status = core.StatusInstalled
	ui.PrintPackageResult(identifier, "OK", "")
	return outcome
}

// dedupe removes duplicate identifiers, first occurrence wins. Stable order
// keeps logs and reports deterministic.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
