package steps

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/pkgset"
	"github.com/spf13/afero"
)

//go:embed assets/zshrc assets/starship.toml
var bundled embed.FS

// shellSetup installs zsh with its plugins, deploys the bundled .zshrc, and
// makes zsh the login shell when it is not already.
func (e *Env) shellSetup(ctx context.Context) error {
	rep := e.Groups.InstallGroup(ctx, pkgset.SectionShell, core.BackendNative)
	e.report("shell-setup", rep)

	if err := e.deployConfig("zshrc", filepath.Join(e.HomeDir, ".zshrc")); err != nil {
		return err
	}
	return e.setDefaultShell(ctx)
}

// promptSetup installs starship and deploys its configuration.
func (e *Env) promptSetup(ctx context.Context) error {
	rep := e.Groups.InstallGroup(ctx, pkgset.SectionPrompt, core.BackendNative)
	e.report("prompt-setup", rep)

	dest := filepath.Join(e.ConfigsDir, "starship.toml")
	return e.deployConfig("starship.toml", dest)
}

// deployConfig writes a bundled config to dest, preferring the user's
// override file when one exists under <ConfigsDir>/postinstall/.
func (e *Env) deployConfig(name, dest string) error {
	content, err := bundled.ReadFile("assets/" + name)
	if err != nil {
		return fmt.Errorf("bundled config %s: %w", name, err)
	}

	override := e.overridePath(name)
	if data, err := afero.ReadFile(e.Fs, override); err == nil {
		e.Logger.Info().Str("path", override).Msg("using override config")
		content = data
	}

	if e.DryRun {
		e.Logger.Info().Str("dest", dest).Msg("dry run, would deploy config")
		return nil
	}

	if err := e.Fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := afero.WriteFile(e.Fs, dest, content, 0o644); err != nil {
		return fmt.Errorf("deploy %s: %w", name, err)
	}
	e.Logger.Info().Str("dest", dest).Msg("config deployed")
	return nil
}

// setDefaultShell switches the login shell to zsh via chsh. Skipped when
// $SHELL already points at zsh; chsh prompts for the user's own password,
// which sudo keep-alive does not cover, so this runs late in the step.
func (e *Env) setDefaultShell(ctx context.Context) error {
	if filepath.Base(os.Getenv("SHELL")) == "zsh" {
		e.Logger.Debug().Msg("zsh already the login shell")
		return nil
	}
	if e.DryRun {
		e.Logger.Info().Msg("dry run, would change login shell to zsh")
		return nil
	}

	zshPath, err := e.Runner.RunCommand(ctx, "which", "zsh")
	if err != nil {
		return fmt.Errorf("locate zsh: %w", err)
	}
	shell := firstLine(zshPath)

	if _, err := e.Runner.RunCommand(ctx, "sudo", "chsh", "-s", shell, currentUser()); err != nil {
		return fmt.Errorf("change login shell: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("LOGNAME")
}
