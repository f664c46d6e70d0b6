package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/sudo"
	"github.com/spf13/afero"
)

const (
	cpuinfoPath      = "/proc/cpuinfo"
	pwfeedbackPath   = "/etc/sudoers.d/99-pwfeedback"
	pacmanConfPath   = "/etc/pacman.conf"
	mirrorlistPath   = "/etc/pacman.d/mirrorlist"
	pwfeedbackDropin = "Defaults pwfeedback\n"
)

// preflight aborts the run before anything mutates the system: the tool
// must run as a regular user with working sudo on a distribution whose
// package manager we know how to drive.
func (e *Env) preflight(ctx context.Context) error {
	if e.HomeDir == "" {
		return errors.New("cannot resolve home directory; staging and shell deployment need one")
	}
	if os.Geteuid() == 0 {
		return errors.New("running as root; run as a regular user with sudo access")
	}
	if !distro.Supported(e.Distro) {
		return fmt.Errorf("unsupported distribution %q", e.Distro)
	}
	if err := e.Registry.Native().EnsureReady(ctx); err != nil {
		return err
	}
	if e.DryRun {
		return nil
	}
	return sudo.Validate(ctx, e.Runner)
}

// sudoFeedback drops in a sudoers fragment that echoes asterisks while
// typing the password. Sudoers fragments must be root-owned mode 0440, so
// the file is staged in the user's home and moved into place with sudo.
func (e *Env) sudoFeedback(ctx context.Context) error {
	if exists, _ := afero.Exists(e.Fs, pwfeedbackPath); exists {
		e.Logger.Debug().Msg("pwfeedback drop-in already present")
		return nil
	}
	if e.DryRun {
		e.Logger.Info().Str("path", pwfeedbackPath).Msg("dry run, would enable pwfeedback")
		return nil
	}

	staging := e.HomeDir + "/.postinstall-pwfeedback.tmp"
	if err := afero.WriteFile(e.Fs, staging, []byte(pwfeedbackDropin), 0o644); err != nil {
		return fmt.Errorf("stage pwfeedback drop-in: %w", err)
	}
	defer e.Fs.Remove(staging)

	if _, err := e.Runner.RunCommand(ctx, "sudo", "install", "-m", "0440", "-o", "root", "-g", "root", staging, pwfeedbackPath); err != nil {
		return fmt.Errorf("install pwfeedback drop-in: %w", err)
	}
	return nil
}

// packageManagerTuning enables color output, parallel downloads, and the
// multilib repository in pacman.conf. The edits are idempotent: once the
// directives are uncommented the sed expressions no longer match anything.
func (e *Env) packageManagerTuning(ctx context.Context) error {
	if e.Distro != distro.Arch {
		e.Logger.Debug().Str("distro", string(e.Distro)).Msg("no package manager tuning for this distribution")
		return nil
	}
	if e.DryRun {
		e.Logger.Info().Msg("dry run, would tune pacman.conf")
		return nil
	}

	edits := [][]string{
		{"sed", "-i", "s/^#Color$/Color/", pacmanConfPath},
		{"sed", "-i", "s/^#ParallelDownloads.*/ParallelDownloads = 10/", pacmanConfPath},
		{"sed", "-i", `/\[multilib\]/,/Include/s/^#//`, pacmanConfPath},
	}
	for _, edit := range edits {
		if _, err := e.Runner.RunCommand(ctx, "sudo", edit...); err != nil {
			return fmt.Errorf("tune pacman.conf: %w", err)
		}
	}

	// Multilib just appeared; the index must know about it.
	return e.Registry.Native().Refresh(ctx)
}

// systemUpdate refreshes the package index and upgrades every installed
// package. On Arch the mirrorlist is re-ranked first when reflector is
// available; a reflector failure only costs speed, not correctness.
func (e *Env) systemUpdate(ctx context.Context) error {
	if e.DryRun {
		e.Logger.Info().Msg("dry run, would refresh and upgrade the system")
		return nil
	}

	if e.Distro == distro.Arch && e.Runner.CommandExists("reflector") {
		_, err := e.Runner.RunCommand(ctx, "sudo", "reflector",
			"--latest", "10", "--protocol", "https", "--sort", "rate", "--save", mirrorlistPath)
		if err != nil {
			e.Logger.Warn().Err(err).Msg("mirror ranking failed, keeping current mirrorlist")
		}
	}

	if err := e.Registry.Native().Refresh(ctx); err != nil {
		return err
	}
	return e.Registry.Native().Upgrade(ctx)
}

// cpuMicrocode installs the microcode package matching the CPU vendor in
// /proc/cpuinfo. Unknown vendors (VMs, ARM) get nothing.
func (e *Env) cpuMicrocode(ctx context.Context) error {
	data, err := afero.ReadFile(e.Fs, cpuinfoPath)
	if err != nil {
		e.Logger.Warn().Err(err).Msg("cannot read cpuinfo, skipping microcode")
		return nil
	}

	var identifier string
	switch {
	case strings.Contains(string(data), "GenuineIntel"):
		identifier = "intel-ucode"
	case strings.Contains(string(data), "AuthenticAMD"):
		identifier = "amd-ucode"
	default:
		e.Logger.Info().Msg("no recognized CPU vendor, skipping microcode")
		return nil
	}

	rep := e.Groups.InstallList(ctx, "cpu-microcode", core.BackendNative, []string{identifier})
	e.report("cpu-microcode", rep)
	return nil
}

// archKernels are the officially packaged kernel flavours whose headers get
// installed when the kernel itself is present.
var archKernels = []string{"linux", "linux-lts", "linux-zen", "linux-hardened"}

// kernelHeaders installs headers for every installed kernel flavour. On
// non-Arch distributions a single generic headers package covers it, via
// the resolver's linux-headers mapping.
func (e *Env) kernelHeaders(ctx context.Context) error {
	if e.Distro != distro.Arch {
		rep := e.Groups.InstallList(ctx, "kernel-headers", core.BackendNative, []string{"linux-headers"})
		e.report("kernel-headers", rep)
		return nil
	}

	var headers []string
	for _, kernel := range archKernels {
		if installed, _ := e.Registry.Native().IsInstalled(ctx, kernel); installed {
			headers = append(headers, kernel+"-headers")
		}
	}
	if len(headers) == 0 {
		e.Logger.Warn().Msg("no known kernel flavour installed, skipping headers")
		return nil
	}

	rep := e.Groups.InstallList(ctx, "kernel-headers", core.BackendNative, headers)
	e.report("kernel-headers", rep)
	return nil
}

// serviceUnits are enabled and started after the firewall is up. Units a
// distribution does not ship simply fail to enable and are logged.
var serviceUnits = []string{"ufw.service", "cronie.service", "sshd.service", "bluetooth.service"}

// firewallServices applies a deny-incoming default policy, enables ufw, and
// turns on the background service units the installed packages provide.
// Individual failures are collected so one broken unit does not hide the rest.
func (e *Env) firewallServices(ctx context.Context) error {
	if e.DryRun {
		e.Logger.Info().Msg("dry run, would configure ufw and enable services")
		return nil
	}

	var errs []error

	if e.Runner.CommandExists("ufw") {
		for _, args := range [][]string{
			{"ufw", "default", "deny", "incoming"},
			{"ufw", "default", "allow", "outgoing"},
			{"ufw", "--force", "enable"},
		} {
			if _, err := e.Runner.RunCommand(ctx, "sudo", args...); err != nil {
				errs = append(errs, fmt.Errorf("ufw: %w", err))
				break
			}
		}
	} else {
		e.Logger.Warn().Msg("ufw not installed, skipping firewall configuration")
	}

	for _, unit := range serviceUnits {
		if _, err := e.Runner.RunCommand(ctx, "sudo", "systemctl", "enable", "--now", unit); err != nil {
			e.Logger.Warn().Err(err).Str("unit", unit).Msg("could not enable service")
		}
	}

	return errors.Join(errs...)
}

// cleanup trims the package cache and removes orphaned dependencies where
// the package manager supports the query.
func (e *Env) cleanup(ctx context.Context) error {
	if e.DryRun {
		e.Logger.Info().Msg("dry run, would clean package cache and orphans")
		return nil
	}

	switch e.Distro {
	case distro.Arch:
		if _, err := e.Runner.RunCommand(ctx, "sudo", "pacman", "-Sc", "--noconfirm"); err != nil {
			return fmt.Errorf("trim pacman cache: %w", err)
		}
		// pacman -Qtdq exits non-zero when there are no orphans.
		out, err := e.Runner.RunCommand(ctx, "pacman", "-Qtdq")
		if err != nil || strings.TrimSpace(out) == "" {
			return nil
		}
		orphans := strings.Fields(out)
		args := append([]string{"pacman", "-Rns", "--noconfirm"}, orphans...)
		if _, err := e.Runner.RunCommand(ctx, "sudo", args...); err != nil {
			return fmt.Errorf("remove orphans: %w", err)
		}
	case distro.Debian, distro.Ubuntu:
		if _, err := e.Runner.RunCommand(ctx, "sudo", "apt-get", "autoremove", "-y"); err != nil {
			return fmt.Errorf("autoremove: %w", err)
		}
		if _, err := e.Runner.RunCommand(ctx, "sudo", "apt-get", "autoclean"); err != nil {
			return fmt.Errorf("autoclean: %w", err)
		}
	case distro.Fedora:
		if _, err := e.Runner.RunCommand(ctx, "sudo", "dnf", "autoremove", "-y"); err != nil {
			return fmt.Errorf("autoremove: %w", err)
		}
	case distro.OpenSUSE:
		if _, err := e.Runner.RunCommand(ctx, "sudo", "zypper", "clean"); err != nil {
			return fmt.Errorf("clean cache: %w", err)
		}
	}
	return nil
}
