package native

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, d distro.ID, runner helpers.CommandRunner) *Adapter {
	t.Helper()
	log := logging.NewTestLogger(nil)
	a, err := New(d, runner, log)
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	t.Run("unsupported distro", func(t *testing.T) {
		log := logging.NewTestLogger(nil)
		_, err := New(distro.Unknown, &helpers.MockCommandRunner{}, log)
		assert.Error(t, err)
	})

	t.Run("ubuntu shares debian commands", func(t *testing.T) {
		a := newAdapter(t, distro.Ubuntu, &helpers.MockCommandRunner{})
		assert.Equal(t, "apt-get", a.Name())
	})
}

func TestAdapter_Install(t *testing.T) {
	tests := []struct {
		distro   distro.ID
		wantArgs []string
	}{
		{distro.Arch, []string{"pacman", "-S", "--noconfirm", "--needed", "htop", "btop"}},
		{distro.Debian, []string{"apt-get", "install", "-y", "htop", "btop"}},
		{distro.Fedora, []string{"dnf", "install", "-y", "htop", "btop"}},
		{distro.OpenSUSE, []string{"zypper", "--non-interactive", "install", "htop", "btop"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.distro), func(t *testing.T) {
			mock := &helpers.MockCommandRunner{}
			mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
				assert.Equal(t, "sudo", name)
				assert.Equal(t, tt.wantArgs, args)
				return "", nil
			}

			a := newAdapter(t, tt.distro, mock)
			assert.NoError(t, a.Install(context.Background(), []string{"htop", "btop"}))
		})
	}

	t.Run("install failure is returned", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, _ string, _ ...string) (string, error) {
				return "", errors.New("exit status 1")
			},
		}

		a := newAdapter(t, distro.Arch, mock)
		err := a.Install(context.Background(), []string{"htop"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "pacman install failed")
	})
}

func TestAdapter_IsInstalled(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, name string, args ...string) (string, error) {
				assert.Equal(t, "pacman", name)
				assert.Equal(t, []string{"-Q", "htop"}, args)
				return "htop 3.3.0-3", nil
			},
		}

		a := newAdapter(t, distro.Arch, mock)
		installed, err := a.IsInstalled(context.Background(), "htop")
		assert.NoError(t, err)
		assert.True(t, installed)
	})

	t.Run("query exit != 0 means not installed", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, _ string, _ ...string) (string, error) {
				return "", errors.New("exit status 1")
			},
			GetExitCodeFunc: func(error) int { return 1 },
		}

		a := newAdapter(t, distro.Debian, mock)
		installed, err := a.IsInstalled(context.Background(), "htop")
		assert.NoError(t, err)
		assert.False(t, installed)
	})

	t.Run("query that never ran is an error", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, _ string, _ ...string) (string, error) {
				return "", errors.New("executable file not found in $PATH")
			},
			GetExitCodeFunc: func(error) int { return -1 },
		}

		a := newAdapter(t, distro.Debian, mock)
		_, err := a.IsInstalled(context.Background(), "htop")
		assert.Error(t, err)
	})

	t.Run("debian queries via dpkg", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, name string, args ...string) (string, error) {
				assert.Equal(t, "dpkg", name)
				assert.Equal(t, []string{"-s", "htop"}, args)
				return "Status: install ok installed", nil
			},
		}

		a := newAdapter(t, distro.Debian, mock)
		installed, _ := a.IsInstalled(context.Background(), "htop")
		assert.True(t, installed)
	})
}

func TestAdapter_Remove(t *testing.T) {
	t.Run("skips packages that are not installed", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
			if name == "pacman" {
				return "", errors.New("not installed")
			}
			t.Fatalf("unexpected mutating call: %s %v", name, args)
			return "", nil
		}

		a := newAdapter(t, distro.Arch, mock)
		assert.NoError(t, a.Remove(context.Background(), []string{"epiphany"}))
	})

	t.Run("removes installed packages", func(t *testing.T) {
		var removed []string
		mock := &helpers.MockCommandRunner{}
		mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
			if name == "sudo" {
				removed = append(removed, args[len(args)-1])
			}
			return "", nil
		}

		a := newAdapter(t, distro.Arch, mock)
		require.NoError(t, a.Remove(context.Background(), []string{"htop", "totem"}))
		assert.Equal(t, []string{"htop", "totem"}, removed)
	})
}

func TestAdapter_Upgrade(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		RunCommandStreamingFunc: func(_ context.Context, _, _ io.Writer, name string, args ...string) error {
			assert.Equal(t, "sudo", name)
			assert.Equal(t, []string{"pacman", "-Syu", "--noconfirm"}, args)
			return nil
		},
	}

	a := newAdapter(t, distro.Arch, mock)
	assert.NoError(t, a.Upgrade(context.Background()))
}

func TestAdapter_EnsureReady(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		RequireCommandFunc: func(name string) error {
			assert.Equal(t, "dnf", name)
			return nil
		},
	}

	a := newAdapter(t, distro.Fedora, mock)
	assert.NoError(t, a.EnsureReady(context.Background()))
}
