package steps

import (
	"context"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/pkgset"
)

func (e *Env) coreUtilities(ctx context.Context) error {
	rep := e.Groups.InstallGroup(ctx, pkgset.SectionCore, core.BackendNative)
	e.report("core-utilities", rep)
	return nil
}

// desktopPackages installs the general desktop software plus the extras for
// the detected desktop environment, and removes the stock packages this
// setup replaces. Package failures are reported, never returned.
func (e *Env) desktopPackages(ctx context.Context) error {
	for _, section := range []string{pkgset.SectionSystem, pkgset.SectionEssential, pkgset.SectionGaming} {
		rep := e.Groups.InstallGroup(ctx, section, core.BackendNative)
		e.report("desktop-packages", rep)
	}

	if extras := pkgset.DesktopPackages(e.Desktop, e.Mode); len(extras) > 0 {
		rep := e.Groups.InstallList(ctx, "desktop-"+string(e.Desktop), core.BackendNative, extras)
		e.report("desktop-packages", rep)
	}

	removals := pkgset.DesktopRemovals(e.Desktop)
	if len(removals) == 0 {
		return nil
	}
	if e.DryRun {
		e.Logger.Info().Strs("packages", removals).Msg("dry run, would remove stock packages")
		return nil
	}
	if err := e.Registry.Native().Remove(ctx, removals); err != nil {
		// Removal is cosmetic; log and move on.
		e.Logger.Warn().Err(err).Msg("stock package removal failed")
	}
	return nil
}

func (e *Env) aurPackages(ctx context.Context) error {
	rep := e.Groups.InstallGroup(ctx, pkgset.SectionAUR, core.BackendAUR)
	e.report("aur-packages", rep)
	return nil
}

func (e *Env) flatpakPackages(ctx context.Context) error {
	apps := pkgset.FlatpakApps(e.Desktop, e.Mode)
	if len(apps) == 0 {
		return nil
	}
	rep := e.Groups.InstallList(ctx, pkgset.SectionFlatpak, core.BackendFlatpak, apps)
	e.report("flatpak-packages", rep)
	return nil
}

// snapPackages installs the snap group. Arch has no native snapd package,
// so without a pre-existing snap binary the whole step is skipped rather
// than reported as a failure.
func (e *Env) snapPackages(ctx context.Context) error {
	if e.Distro == distro.Arch && !e.Runner.CommandExists("snap") {
		e.Logger.Info().Msg("snapd not present and not natively packaged, skipping snap group")
		return nil
	}
	rep := e.Groups.InstallGroup(ctx, pkgset.SectionSnap, core.BackendSnap)
	e.report("snap-packages", rep)
	return nil
}
