// Package steps declares the ordered list of post-installation steps and
// their bodies. Bodies stay thin: group installs through pkgset plus a few
// direct CommandRunner invocations; everything stateful (skipping,
// persistence, summaries) lives in the orchestrator.
package steps

import (
	"context"
	"path/filepath"

	"github.com/quantmind-br/postinstall/internal/backends"
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/orchestrator"
	"github.com/quantmind-br/postinstall/internal/pkgset"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Env carries everything a step body may touch. Built once per run by the
// run command and shared across all steps.
type Env struct {
	Distro  distro.ID
	Desktop distro.Desktop
	Mode    core.Mode
	DryRun  bool

	Runner   helpers.CommandRunner
	Registry *backends.Registry
	Groups   *pkgset.Installer
	Fs       afero.Fs
	Logger   *zerolog.Logger

	// HomeDir is where deployed dotfiles land.
	HomeDir string
	// ConfigsDir holds optional user overrides for the bundled configs
	// (<ConfigsDir>/postinstall/zshrc, .../starship.toml).
	ConfigsDir string

	// Report receives each group's per-package report; the run command
	// wires it to the summary and the history database. May be nil.
	Report func(step string, rep *pkgset.Report)
}

func (e *Env) report(step string, rep *pkgset.Report) {
	if e.Report != nil && rep != nil {
		e.Report(step, rep)
	}
}

func (e *Env) overridePath(name string) string {
	return filepath.Join(e.ConfigsDir, "postinstall", name)
}

// Build returns the full step list in execution order. The list is static
// per environment; filtering for `run --only` happens on the result.
func Build(env *Env) []orchestrator.Step {
	return []orchestrator.Step{
		{
			Name:        "preflight",
			Description: "Checking system requirements",
			Critical:    true,
			Run:         func(ctx context.Context) error { return env.preflight(ctx) },
		},
		{
			Name:        "sudo-feedback",
			Description: "Enabling sudo password feedback",
			Run:         func(ctx context.Context) error { return env.sudoFeedback(ctx) },
		},
		{
			Name:        "core-utilities",
			Description: "Installing core utilities",
			Run:         func(ctx context.Context) error { return env.coreUtilities(ctx) },
		},
		{
			Name:        "package-manager-tuning",
			Description: "Tuning the package manager",
			BoundInput:  env.pmConfigPath(),
			Run:         func(ctx context.Context) error { return env.packageManagerTuning(ctx) },
		},
		{
			Name:        "system-update",
			Description: "Updating the system",
			Critical:    true,
			Run:         func(ctx context.Context) error { return env.systemUpdate(ctx) },
		},
		{
			Name:        "cpu-microcode",
			Description: "Installing CPU microcode",
			Run:         func(ctx context.Context) error { return env.cpuMicrocode(ctx) },
		},
		{
			Name:        "kernel-headers",
			Description: "Installing kernel headers",
			Run:         func(ctx context.Context) error { return env.kernelHeaders(ctx) },
		},
		{
			Name:        "shell-setup",
			Description: "Setting up zsh",
			BoundInput:  env.overridePath("zshrc"),
			Run:         func(ctx context.Context) error { return env.shellSetup(ctx) },
		},
		{
			Name:        "prompt-setup",
			Description: "Setting up the starship prompt",
			BoundInput:  env.overridePath("starship.toml"),
			Run:         func(ctx context.Context) error { return env.promptSetup(ctx) },
		},
		{
			Name:        "desktop-packages",
			Description: "Installing desktop applications",
			Run:         func(ctx context.Context) error { return env.desktopPackages(ctx) },
		},
		{
			Name:        "aur-packages",
			Description: "Installing AUR packages",
			Run:         func(ctx context.Context) error { return env.aurPackages(ctx) },
		},
		{
			Name:        "flatpak-packages",
			Description: "Installing Flatpak applications",
			Run:         func(ctx context.Context) error { return env.flatpakPackages(ctx) },
		},
		{
			Name:        "snap-packages",
			Description: "Installing Snap packages",
			Run:         func(ctx context.Context) error { return env.snapPackages(ctx) },
		},
		{
			Name:        "firewall-services",
			Description: "Configuring firewall and services",
			Run:         func(ctx context.Context) error { return env.firewallServices(ctx) },
		},
		{
			Name:        "cleanup",
			Description: "Cleaning up",
			Run:         func(ctx context.Context) error { return env.cleanup(ctx) },
		},
	}
}

// pmConfigPath is the package-manager config file whose content gates the
// tuning step. Only pacman gets file-level tuning today.
func (e *Env) pmConfigPath() string {
	if e.Distro == distro.Arch {
		return "/etc/pacman.conf"
	}
	return ""
}
