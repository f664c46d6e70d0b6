package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/quantmind-br/postinstall/internal/history"
	"github.com/quantmind-br/postinstall/internal/state"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		showHistory bool
		runID       int64
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show completed steps and past runs",
		Long:  `Show which steps previous runs completed, and with --history the recorded runs and their per-package outcomes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.InitColors()

			if showHistory || runID > 0 {
				return printHistory(cmd, cfg, runID)
			}

			store := state.NewStore(afero.NewOsFs(), cfg.Paths.StateFile, log)
			entries, err := store.Entries()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				ui.PrintInfo("No completed steps recorded; next run starts from the beginning")
				return nil
			}

			ui.PrintHeader("Completed steps")
			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Step", "Input Hash"}),
				tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)
			for _, e := range entries {
				table.Append(e.StepName, shortHash(e.InputHash))
			}
			table.Render()

			fmt.Println()
			ui.PrintInfo("State file: %s", cfg.Paths.StateFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHistory, "history", false, "list recorded runs")
	cmd.Flags().Int64Var(&runID, "run", 0, "show per-package events of one run")

	return cmd
}

func printHistory(cmd *cobra.Command, cfg *config.Config, runID int64) error {
	ctx := cmd.Context()
	hist, err := history.New(ctx, cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	if runID > 0 {
		events, err := hist.RunEvents(ctx, runID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			ui.PrintInfo("No events recorded for run %d", runID)
			return nil
		}

		ui.PrintHeader(fmt.Sprintf("Run %d", runID))
		table := tablewriter.NewTable(cmd.OutOrStdout(),
			tablewriter.WithHeader([]string{"Step", "Backend", "Package", "Status", "Reason"}),
			tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
			tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
		)
		for _, e := range events {
			table.Append(e.Step, e.Backend, e.Identifier, e.Status, e.Reason)
		}
		table.Render()
		return nil
	}

	runs, err := hist.RecentRuns(ctx, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.PrintInfo("No runs recorded yet")
		return nil
	}

	ui.PrintHeader("Recent runs")
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"ID", "Started", "Mode", "Dry Run", "Failures"}),
		tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)
	for _, r := range runs {
		dry := ""
		if r.DryRun {
			dry = "yes"
		}
		table.Append(
			fmt.Sprintf("%d", r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Mode,
			dry,
			fmt.Sprintf("%d", r.Failures),
		)
	}
	table.Render()

	fmt.Println()
	ui.PrintInfo("Use --run <id> for per-package details")
	return nil
}

// shortHash trims the versioned hash for display: "v1:abcd1234...".
func shortHash(h string) string {
	version, digest, ok := strings.Cut(h, ":")
	if !ok || len(digest) <= 12 {
		return h
	}
	return version + ":" + digest[:12] + "..."
}
