package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quantmind-br/postinstall/internal/backends"
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/logging"
	"github.com/quantmind-br/postinstall/internal/pkgset"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEnv wires a real registry and group installer against a mock
// runner, so step bodies exercise the same code paths as production.
func newTestEnv(t *testing.T, d distro.ID, mock *helpers.MockCommandRunner) *Env {
	t.Helper()
	log := logging.NewTestLogger(nil)

	reg, err := backends.NewRegistry(d, mock, log)
	require.NoError(t, err)

	return &Env{
		Distro:     d,
		Desktop:    distro.Generic,
		Mode:       core.ModeDefault,
		Runner:     mock,
		Registry:   reg,
		Groups:     pkgset.NewInstaller(reg, d, pkgset.Options{Mode: core.ModeDefault}, log),
		Fs:         afero.NewMemMapFs(),
		Logger:     log,
		HomeDir:    "/home/test",
		ConfigsDir: "/home/test/.config",
	}
}

func hasCall(calls []string, prefix string) bool {
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func TestBuildStepList(t *testing.T) {
	env := newTestEnv(t, distro.Arch, &helpers.MockCommandRunner{})
	list := Build(env)

	require.Len(t, list, 15)
	assert.Equal(t, "preflight", list[0].Name)
	assert.True(t, list[0].Critical)
	assert.Equal(t, "cleanup", list[len(list)-1].Name)

	byName := map[string]int{}
	for i, s := range list {
		byName[s.Name] = i
	}
	assert.Less(t, byName["system-update"], byName["desktop-packages"], "upgrade must precede bulk installs")
	assert.True(t, list[byName["system-update"]].Critical)
	assert.Equal(t, "/etc/pacman.conf", list[byName["package-manager-tuning"]].BoundInput)
	assert.Equal(t, "/home/test/.config/postinstall/zshrc", list[byName["shell-setup"]].BoundInput)
}

func TestPreflightRequiresHomeDir(t *testing.T) {
	env := newTestEnv(t, distro.Arch, &helpers.MockCommandRunner{})
	env.HomeDir = ""

	err := env.preflight(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home directory")
}

func TestBuildNoTuningInputOffArch(t *testing.T) {
	env := newTestEnv(t, distro.Fedora, &helpers.MockCommandRunner{})
	for _, s := range Build(env) {
		if s.Name == "package-manager-tuning" {
			assert.Empty(t, s.BoundInput)
		}
	}
}

func TestCPUMicrocode(t *testing.T) {
	t.Run("intel vendor on arch", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return true },
			RunCommandFunc: func(_ context.Context, name string, _ ...string) (string, error) {
				if name == "pacman" {
					return "", errors.New("not installed")
				}
				return "", nil
			},
		}
		env := newTestEnv(t, distro.Arch, mock)
		require.NoError(t, afero.WriteFile(env.Fs, cpuinfoPath,
			[]byte("vendor_id\t: GenuineIntel\n"), 0o644))

		require.NoError(t, env.cpuMicrocode(context.Background()))
		assert.True(t, hasCall(mock.Calls, "sudo pacman -S --noconfirm --needed intel-ucode"))
	})

	t.Run("amd vendor on debian resolves the debian name", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{
			CommandExistsFunc: func(string) bool { return true },
			RunCommandFunc: func(_ context.Context, name string, _ ...string) (string, error) {
				if name == "dpkg" {
					return "", errors.New("not installed")
				}
				return "", nil
			},
		}
		env := newTestEnv(t, distro.Debian, mock)
		require.NoError(t, afero.WriteFile(env.Fs, cpuinfoPath,
			[]byte("vendor_id\t: AuthenticAMD\n"), 0o644))

		require.NoError(t, env.cpuMicrocode(context.Background()))
		assert.True(t, hasCall(mock.Calls, "sudo apt-get install -y amd64-microcode"))
	})

	t.Run("unknown vendor does nothing", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Arch, mock)
		require.NoError(t, afero.WriteFile(env.Fs, cpuinfoPath,
			[]byte("vendor_id\t: Virtual\n"), 0o644))

		require.NoError(t, env.cpuMicrocode(context.Background()))
		assert.Empty(t, mock.Calls)
	})
}

func TestKernelHeadersArch(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		CommandExistsFunc: func(string) bool { return true },
	}
	mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
		if name == "pacman" && len(args) == 2 && args[0] == "-Q" {
			// Only the zen kernel and its headers query; headers absent.
			if args[1] == "linux-zen" {
				return "linux-zen 6.9", nil
			}
			return "", errors.New("not installed")
		}
		return "", nil
	}

	env := newTestEnv(t, distro.Arch, mock)
	require.NoError(t, env.kernelHeaders(context.Background()))
	assert.True(t, hasCall(mock.Calls, "sudo pacman -S --noconfirm --needed linux-zen-headers"))
	assert.False(t, hasCall(mock.Calls, "sudo pacman -S --noconfirm --needed linux-headers"),
		"headers for uninstalled kernels must not be pulled in")
}

func TestSudoFeedback(t *testing.T) {
	t.Run("installs drop-in when missing", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Arch, mock)

		require.NoError(t, env.sudoFeedback(context.Background()))
		require.Len(t, mock.Calls, 1)
		assert.Contains(t, mock.Calls[0], "sudo install -m 0440")
		assert.Contains(t, mock.Calls[0], pwfeedbackPath)
	})

	t.Run("already present", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Arch, mock)
		require.NoError(t, afero.WriteFile(env.Fs, pwfeedbackPath, []byte("Defaults pwfeedback\n"), 0o440))

		require.NoError(t, env.sudoFeedback(context.Background()))
		assert.Empty(t, mock.Calls)
	})

	t.Run("dry run stages nothing", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Arch, mock)
		env.DryRun = true

		require.NoError(t, env.sudoFeedback(context.Background()))
		assert.Empty(t, mock.Calls)
	})
}

func TestPackageManagerTuning(t *testing.T) {
	t.Run("arch edits pacman.conf and refreshes", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Arch, mock)

		require.NoError(t, env.packageManagerTuning(context.Background()))
		assert.True(t, hasCall(mock.Calls, "sudo sed -i s/^#Color$/Color/"))
		assert.True(t, hasCall(mock.Calls, "sudo pacman -Syy"))
	})

	t.Run("no-op off arch", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Fedora, mock)

		require.NoError(t, env.packageManagerTuning(context.Background()))
		assert.Empty(t, mock.Calls)
	})
}

func TestSystemUpdate(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		CommandExistsFunc: func(name string) bool { return name == "reflector" || name == "pacman" },
	}
	env := newTestEnv(t, distro.Arch, mock)

	require.NoError(t, env.systemUpdate(context.Background()))
	assert.True(t, hasCall(mock.Calls, "sudo reflector"))
	assert.True(t, hasCall(mock.Calls, "sudo pacman -Syy"))
	assert.True(t, hasCall(mock.Calls, "sudo pacman -Syu --noconfirm"))
}

func TestSnapPackagesSkippedOnArchWithoutSnapd(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		CommandExistsFunc: func(name string) bool { return name != "snap" },
	}
	env := newTestEnv(t, distro.Arch, mock)

	require.NoError(t, env.snapPackages(context.Background()))
	assert.Empty(t, mock.Calls)
}

func TestDeployConfig(t *testing.T) {
	t.Run("bundled default", func(t *testing.T) {
		env := newTestEnv(t, distro.Arch, &helpers.MockCommandRunner{})

		require.NoError(t, env.deployConfig("zshrc", "/home/test/.zshrc"))
		data, err := afero.ReadFile(env.Fs, "/home/test/.zshrc")
		require.NoError(t, err)
		assert.Contains(t, string(data), "starship init zsh")
	})

	t.Run("user override wins", func(t *testing.T) {
		env := newTestEnv(t, distro.Arch, &helpers.MockCommandRunner{})
		override := env.overridePath("zshrc")
		require.NoError(t, env.Fs.MkdirAll("/home/test/.config/postinstall", 0o755))
		require.NoError(t, afero.WriteFile(env.Fs, override, []byte("# custom\n"), 0o644))

		require.NoError(t, env.deployConfig("zshrc", "/home/test/.zshrc"))
		data, err := afero.ReadFile(env.Fs, "/home/test/.zshrc")
		require.NoError(t, err)
		assert.Equal(t, "# custom\n", string(data))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		env := newTestEnv(t, distro.Arch, &helpers.MockCommandRunner{})
		env.DryRun = true

		require.NoError(t, env.deployConfig("zshrc", "/home/test/.zshrc"))
		exists, _ := afero.Exists(env.Fs, "/home/test/.zshrc")
		assert.False(t, exists)
	})
}

func TestCleanup(t *testing.T) {
	t.Run("arch removes orphans", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
			if name == "pacman" && args[0] == "-Qtdq" {
				return "orphan-one\norphan-two\n", nil
			}
			return "", nil
		}
		env := newTestEnv(t, distro.Arch, mock)

		require.NoError(t, env.cleanup(context.Background()))
		assert.True(t, hasCall(mock.Calls, "sudo pacman -Sc --noconfirm"))
		assert.True(t, hasCall(mock.Calls, "sudo pacman -Rns --noconfirm orphan-one orphan-two"))
	})

	t.Run("arch without orphans", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		mock.RunCommandFunc = func(_ context.Context, name string, args ...string) (string, error) {
			if name == "pacman" && args[0] == "-Qtdq" {
				return "", errors.New("exit status 1")
			}
			return "", nil
		}
		env := newTestEnv(t, distro.Arch, mock)

		require.NoError(t, env.cleanup(context.Background()))
		assert.False(t, hasCall(mock.Calls, "sudo pacman -Rns"))
	})

	t.Run("debian autoremove", func(t *testing.T) {
		mock := &helpers.MockCommandRunner{}
		env := newTestEnv(t, distro.Debian, mock)

		require.NoError(t, env.cleanup(context.Background()))
		assert.True(t, hasCall(mock.Calls, "sudo apt-get autoremove -y"))
		assert.True(t, hasCall(mock.Calls, "sudo apt-get autoclean"))
	})
}

func TestGroupStepReports(t *testing.T) {
	mock := &helpers.MockCommandRunner{
		CommandExistsFunc: func(string) bool { return true },
		RunCommandFunc: func(_ context.Context, name string, _ ...string) (string, error) {
			if name == "pacman" {
				return "", errors.New("not installed")
			}
			return "", nil
		},
	}
	env := newTestEnv(t, distro.Arch, mock)

	var reported []string
	env.Report = func(step string, rep *pkgset.Report) {
		reported = append(reported, step)
		assert.NotEmpty(t, rep.Outcomes())
	}

	require.NoError(t, env.coreUtilities(context.Background()))
	assert.Equal(t, []string{"core-utilities"}, reported)
}
