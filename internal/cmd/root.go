// Package cmd wires the cobra command tree.
package cmd

import (
	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalFlags are persistent flags shared by the subcommands.
type globalFlags struct {
	verbose bool
	dryRun  bool
	yes     bool
	minimal bool
}

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	gf := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "postinstall",
		Short:        "Post-installation setup orchestrator",
		Long:         `Resumable post-installation setup for Linux: installs package groups across native, AUR, Flatpak, and Snap backends and tracks progress so interrupted runs pick up where they stopped.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&gf.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&gf.dryRun, "dry-run", "n", false, "show what would be installed without changing anything")
	pf.BoolVarP(&gf.yes, "yes", "y", false, "assume yes on prompts (resume automatically)")
	pf.BoolVar(&gf.minimal, "minimal", false, "install the minimal package selection")

	cmd.AddCommand(NewRunCmd(cfg, log, gf))
	cmd.AddCommand(NewStatusCmd(cfg, log))
	cmd.AddCommand(NewResetCmd(cfg, log, gf))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
