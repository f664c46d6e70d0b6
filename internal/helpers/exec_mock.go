package helpers

import (
	"context"
	"io"
)

// MockCommandRunner is a mock implementation of CommandRunner for testing
type MockCommandRunner struct {
	CommandExistsFunc       func(name string) bool
	RequireCommandFunc      func(name string) error
	RunCommandFunc          func(ctx context.Context, name string, args ...string) (string, error)
	RunCommandInDirFunc     func(ctx context.Context, dir, name string, args ...string) (string, error)
	RunCommandStreamingFunc func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
	GetExitCodeFunc         func(err error) int

	// Calls records every RunCommand/RunCommandInDir/RunCommandStreaming
	// invocation as "name arg1 arg2 ...", in order. Useful for asserting
	// that dry runs and resumed runs execute nothing.
	Calls []string
}

func (m *MockCommandRunner) record(name string, args ...string) {
	call := name
	for _, a := range args {
		call += " " + a
	}
	m.Calls = append(m.Calls, call)
}

// CommandExists implements CommandRunner.CommandExists
func (m *MockCommandRunner) CommandExists(name string) bool {
	if m.CommandExistsFunc != nil {
		return m.CommandExistsFunc(name)
	}
	return false
}

// RequireCommand implements CommandRunner.RequireCommand
func (m *MockCommandRunner) RequireCommand(name string) error {
	if m.RequireCommandFunc != nil {
		return m.RequireCommandFunc(name)
	}
	return nil
}

// RunCommand implements CommandRunner.RunCommand
func (m *MockCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	m.record(name, args...)
	if m.RunCommandFunc != nil {
		return m.RunCommandFunc(ctx, name, args...)
	}
	return "", nil
}

// RunCommandInDir implements CommandRunner.RunCommandInDir
func (m *MockCommandRunner) RunCommandInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	m.record(name, args...)
	if m.RunCommandInDirFunc != nil {
		return m.RunCommandInDirFunc(ctx, dir, name, args...)
	}
	return "", nil
}

// RunCommandStreaming implements CommandRunner.RunCommandStreaming
func (m *MockCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	m.record(name, args...)
	if m.RunCommandStreamingFunc != nil {
		return m.RunCommandStreamingFunc(ctx, stdout, stderr, name, args...)
	}
	return nil
}

// GetExitCode implements CommandRunner.GetExitCode
func (m *MockCommandRunner) GetExitCode(err error) int {
	if m.GetExitCodeFunc != nil {
		return m.GetExitCodeFunc(err)
	}
	return 0
}
