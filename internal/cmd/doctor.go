package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/history"
	"github.com/quantmind-br/postinstall/internal/state"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment before running",
		Long:  `Check distribution support, required commands, data directories, and the state/history files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.InitColors()
			ui.PrintHeader("Environment diagnostics")

			var issues []string
			runner := helpers.NewOSCommandRunner()
			fs := afero.NewOsFs()

			// Distribution and desktop
			d, err := distro.Detect(fs)
			if err != nil || !distro.Supported(d) {
				ui.PrintError("distribution: not supported (%s)", d)
				issues = append(issues, "unsupported or undetected distribution")
			} else {
				ui.PrintSuccess("distribution: %s", d)
			}
			ui.PrintInfo("desktop: %s", distro.DetectDesktop())

			// Required commands
			for _, name := range []string{"sudo", "git", "curl"} {
				if runner.CommandExists(name) {
					ui.PrintSuccess("%s: found", name)
				} else {
					ui.PrintError("%s: NOT FOUND", name)
					issues = append(issues, fmt.Sprintf("missing required command: %s", name))
				}
			}

			// Optional backend runtimes; the run bootstraps these on demand.
			for _, name := range []string{"yay", "paru", "flatpak", "snap"} {
				if runner.CommandExists(name) {
					ui.PrintSuccess("%s: found", name)
				} else {
					ui.PrintInfo("%s: not found (bootstrapped when needed)", name)
				}
			}

			// Data directories
			for _, dir := range []string{cfg.Paths.DataDir, filepath.Dir(cfg.Paths.LogFile)} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					ui.PrintError("directory not writable: %s", dir)
					issues = append(issues, fmt.Sprintf("directory not writable: %s", dir))
				} else {
					ui.PrintSuccess("directory: %s", dir)
				}
			}

			// State file
			store := state.NewStore(fs, cfg.Paths.StateFile, log)
			if entries, err := store.Entries(); err != nil {
				ui.PrintError("state file unreadable: %v", err)
				issues = append(issues, "state file unreadable")
			} else {
				ui.PrintSuccess("state file: %d completed step(s)", len(entries))
			}

			// History database
			if hist, err := history.New(cmd.Context(), cfg.Paths.HistoryDB); err != nil {
				ui.PrintWarning("history database unavailable: %v", err)
			} else {
				hist.Close()
				ui.PrintSuccess("history database: %s", cfg.Paths.HistoryDB)
			}

			fmt.Println()
			if len(issues) > 0 {
				return fmt.Errorf("doctor found %d issue(s)", len(issues))
			}
			ui.PrintSuccess("All checks passed")
			return nil
		},
	}

	return cmd
}
