package snap

import (
	"context"
	"errors"
	"testing"

	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	installed [][]string
	err       error
}

func (f *fakeRuntime) Install(_ context.Context, names []string) error {
	f.installed = append(f.installed, names)
	return f.err
}

func TestEnsureReady(t *testing.T) {
	t.Run("snap already present", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "snap" },
		}
		rt := &fakeRuntime{}

		a := New(distro.Ubuntu, mock, rt, logging.NewTestLogger(nil))
		require.NoError(t, a.EnsureReady(context.Background()))
		assert.Empty(t, rt.installed)
	})

	t.Run("bootstraps snapd and enables socket", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return false },
		}
		rt := &fakeRuntime{}

		a := New(distro.Fedora, mock, rt, logging.NewTestLogger(nil))
		require.NoError(t, a.EnsureReady(context.Background()))
		assert.Equal(t, [][]string{{"snapd"}}, rt.installed)
		require.Len(t, mock.Calls, 1)
		assert.Equal(t, "sudo systemctl enable --now snapd.socket", mock.Calls[0])
	})

	t.Run("unavailable on arch without snap", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return false },
		}

		a := New(distro.Arch, mock, &fakeRuntime{}, logging.NewTestLogger(nil))
		err := a.EnsureReady(context.Background())
		assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	})

	t.Run("runtime failure is unavailable", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return false },
		}
		rt := &fakeRuntime{err: errors.New("mirror down")}

		a := New(distro.Debian, mock, rt, logging.NewTestLogger(nil))
		assert.ErrorIs(t, a.EnsureReady(context.Background()), core.ErrBackendUnavailable)
	})
}

func TestIsInstalled(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, name string, args ...string) (string, error) {
				assert.Equal(t, "snap", name)
				assert.Equal(t, []string{"list", "spotify"}, args)
				return "spotify 1.2 ...", nil
			},
		}

		a := New(distro.Ubuntu, mock, &fakeRuntime{}, logging.NewTestLogger(nil))
		installed, err := a.IsInstalled(context.Background(), "spotify")
		assert.NoError(t, err)
		assert.True(t, installed)
	})

	t.Run("not installed", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			RunCommandFunc: func(_ context.Context, _ string, _ ...string) (string, error) {
				return "", errors.New("error: no matching snaps installed")
			},
		}

		a := New(distro.Ubuntu, mock, &fakeRuntime{}, logging.NewTestLogger(nil))
		installed, err := a.IsInstalled(context.Background(), "spotify")
		assert.NoError(t, err)
		assert.False(t, installed)
	})
}

func TestInstall(t *testing.T) {
	mock := &helpers.MockCommandRunner{}
	a := New(distro.Ubuntu, mock, &fakeRuntime{}, logging.NewTestLogger(nil))

	require.NoError(t, a.Install(context.Background(), []string{"spotify", "discord"}))
	assert.Equal(t, []string{
		"sudo snap install spotify",
		"sudo snap install discord",
	}, mock.Calls)
}
