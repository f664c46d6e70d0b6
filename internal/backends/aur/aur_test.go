package aur

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureReady(t *testing.T) {
	t.Run("unavailable off arch", func(t *testing.T) {
		a := New(distro.Debian, &helpers.MockCommandRunner{}, logging.NewTestLogger(nil))

		err := a.EnsureReady(context.Background())
		assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	})

	t.Run("existing helper is picked up", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "paru" },
		}
		a := New(distro.Arch, mock, logging.NewTestLogger(nil))

		require.NoError(t, a.EnsureReady(context.Background()))
		assert.Equal(t, "paru", a.Name())
	})

	t.Run("bootstraps yay when no helper exists", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool {
				return name == "git" || name == "makepkg"
			},
		}
		a := New(distro.Arch, mock, logging.NewTestLogger(nil))

		require.NoError(t, a.EnsureReady(context.Background()))
		assert.Equal(t, "yay", a.Name())
		require.Len(t, mock.Calls, 2)
		assert.Contains(t, mock.Calls[0], "git clone https://aur.archlinux.org/yay.git")
		assert.True(t, strings.HasPrefix(mock.Calls[1], "makepkg -si --noconfirm"))
	})

	t.Run("bootstrap failure is memoized", func(t *testing.T) {
		attempts := 0
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return false },
			RequireCommandFunc: func(string) error {
				attempts++
				return errors.New("git not found")
			},
		}
		a := New(distro.Arch, mock, logging.NewTestLogger(nil))

		err1 := a.EnsureReady(context.Background())
		err2 := a.EnsureReady(context.Background())
		assert.ErrorIs(t, err1, core.ErrBackendUnavailable)
		assert.Equal(t, err1, err2)
		assert.Equal(t, 1, attempts, "bootstrap must run at most once per run")
	})
}

func TestInstall(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		CommandExistsFunc: func(name string) bool { return name == "yay" },
	}
	mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
		assert.Equal(t, "yay", name)
		assert.Equal(t, []string{"-S", "--noconfirm", "--needed", "brave-bin"}, args)
		return "", nil
	}

	a := New(distro.Arch, mock, logging.NewTestLogger(nil))
	assert.NoError(t, a.Install(context.Background(), []string{"brave-bin"}))
}

func TestIsInstalled(t *testing.T) {
	t.Run("queries pacman database", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, name string, args ...string) (string, error) {
				assert.Equal(t, "pacman", name)
				assert.Equal(t, []string{"-Q", "brave-bin"}, args)
				return "brave-bin 1.0-1", nil
			},
		}

		a := New(distro.Arch, mock, logging.NewTestLogger(nil))
		installed, err := a.IsInstalled(context.Background(), "brave-bin")
		assert.NoError(t, err)
		assert.True(t, installed)
	})

	t.Run("missing package", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, _ string, _ ...string) (string, error) {
				return "", errors.New("package not found")
			},
		}

		a := New(distro.Arch, mock, logging.NewTestLogger(nil))
		installed, err := a.IsInstalled(context.Background(), "brave-bin")
		assert.NoError(t, err)
		assert.False(t, installed)
	})
}
