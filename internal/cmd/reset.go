package cmd

import (
	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/quantmind-br/postinstall/internal/state"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewResetCmd creates the reset command
func NewResetCmd(cfg *config.Config, log *zerolog.Logger, gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard saved progress",
		Long:  `Remove the persisted step state so the next run starts from the first step. Install history is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.InitColors()

			store := state.NewStore(afero.NewOsFs(), cfg.Paths.StateFile, log)
			entries, err := store.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				ui.PrintInfo("Nothing to reset")
				return nil
			}

			if !gf.yes {
				ok, err := ui.ConfirmPrompt("Discard saved progress and start over next run")
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintInfo("Keeping saved progress")
					return nil
				}
			}

			if err := store.Clear(); err != nil {
				return err
			}
			log.Info().Int("steps", len(entries)).Msg("step state cleared")
			ui.PrintSuccess("Discarded progress for %d step(s)", len(entries))
			return nil
		},
	}

	return cmd
}
