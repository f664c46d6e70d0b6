package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// CommandRunner abstracts system command execution so package-manager
// invocations can be mocked in tests and injected into backends.
type CommandRunner interface {
	// CommandExists reports whether a command is available in PATH
	CommandExists(name string) bool

	// RequireCommand ensures a command exists or returns an error
	RequireCommand(name string) error

	// RunCommand executes a command and returns its stdout
	RunCommand(ctx context.Context, name string, args ...string) (string, error)

	// RunCommandInDir executes a command in a specific working directory
	RunCommandInDir(ctx context.Context, dir, name string, args ...string) (string, error)

	// RunCommandStreaming executes a command and streams output to the
	// provided writers; pass nil to discard a stream
	RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

	// GetExitCode extracts the exit code from a command error
	GetExitCode(err error) int
}

// OSCommandRunner is the default implementation backed by os/exec.
type OSCommandRunner struct {
	lookupCache sync.Map // map[string]bool
}

// NewOSCommandRunner creates a new OSCommandRunner instance
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// CommandExists reports whether a command is available in PATH.
// Lookups are cached; package-manager probes hit the same few names
// dozens of times per run.
func (r *OSCommandRunner) CommandExists(name string) bool {
	if cached, ok := r.lookupCache.Load(name); ok {
		if exists, ok := cached.(bool); ok {
			return exists
		}
		r.lookupCache.Delete(name)
	}

	_, err := exec.LookPath(name)
	exists := err == nil
	r.lookupCache.Store(name, exists)
	return exists
}

// RequireCommand ensures a command exists or returns an error
func (r *OSCommandRunner) RequireCommand(name string) error {
	if !r.CommandExists(name) {
		return fmt.Errorf("required command %q not found in PATH", name)
	}
	return nil
}

// RunCommand executes a command and returns its stdout.
// Arguments are passed separately to exec, never through a shell.
func (r *OSCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %q failed: %w\nstderr: %s", name, err, stderr.String())
	}

	return stdout.String(), nil
}

// RunCommandInDir executes a command in a specific working directory
func (r *OSCommandRunner) RunCommandInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %q failed in dir %q: %w\nstderr: %s", name, dir, err, stderr.String())
	}

	return stdout.String(), nil
}

// RunCommandStreaming executes a command and streams output to the provided
// writers. Package-manager transactions can emit megabytes of progress text;
// streaming avoids buffering all of it.
func (r *OSCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", name, err)
	}

	return nil
}

// GetExitCode extracts the exit code from a command error
func (r *OSCommandRunner) GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
