package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/postinstall/internal/backends"
	"github.com/quantmind-br/postinstall/internal/config"
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
	"github.com/quantmind-br/postinstall/internal/helpers"
	"github.com/quantmind-br/postinstall/internal/history"
	"github.com/quantmind-br/postinstall/internal/orchestrator"
	"github.com/quantmind-br/postinstall/internal/pkgset"
	"github.com/quantmind-br/postinstall/internal/state"
	"github.com/quantmind-br/postinstall/internal/steps"
	"github.com/quantmind-br/postinstall/internal/sudo"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd(cfg *config.Config, log *zerolog.Logger, gf *globalFlags) *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the post-installation steps",
		Long:  `Run every post-installation step in order, skipping steps already completed by a previous run. Package failures are collected and reported at the end instead of aborting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gf.verbose {
				verboseLog := log.Level(zerolog.DebugLevel)
				log = &verboseLog
			}
			ui.InitColors()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Install.RunTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Install.RunTimeout)*time.Second)
				defer cancel()
			}

			assumeYes := gf.yes || cfg.Install.AssumeYes

			fs := afero.NewOsFs()

			d, err := distro.Detect(fs)
			if err != nil {
				log.Warn().Err(err).Msg("could not read os-release")
			}
			if !distro.Supported(d) {
				ui.PrintError("unsupported distribution")
				return &ExitError{Code: core.ExitCritical, Message: "unsupported distribution"}
			}
			desktop := distro.DetectDesktop()

			mode := core.Mode(cfg.Install.Mode)
			if gf.minimal {
				mode = core.ModeMinimal
			}

			ui.PrintHeader("Post-installation setup")
			ui.PrintKeyValue("Distribution", string(d))
			ui.PrintKeyValue("Desktop", string(desktop))
			ui.PrintKeyValue("Mode", string(mode))
			if gf.dryRun {
				ui.PrintWarning("dry run: no packages will be installed")
			}

			runner := helpers.NewOSCommandRunner()
			registry, err := backends.NewRegistry(d, runner, log)
			if err != nil {
				return &ExitError{Code: core.ExitCritical, Message: err.Error()}
			}

			if err := fs.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			store := state.NewStore(fs, cfg.Paths.StateFile, log)
			completed, err := store.Load()
			if err != nil {
				return err
			}
			if len(completed) > 0 && !assumeYes {
				resume, err := ui.PromptResume(len(completed))
				if err != nil {
					return err
				}
				if !resume {
					if err := store.Clear(); err != nil {
						return err
					}
				}
			}

			// History is best effort: a broken database never blocks installs.
			var hist *history.DB
			var runID int64
			if hist, err = history.New(ctx, cfg.Paths.HistoryDB); err != nil {
				log.Warn().Err(err).Msg("history database unavailable")
				hist = nil
			} else {
				defer hist.Close()
				if runID, err = hist.StartRun(ctx, mode, gf.dryRun); err != nil {
					log.Warn().Err(err).Msg("could not record run start")
					hist = nil
				}
			}

			summary := orchestrator.NewSummary()
			groups := pkgset.NewInstaller(registry, d, pkgset.Options{
				Mode:         mode,
				DryRun:       gf.dryRun,
				ShowProgress: !gf.verbose,
			}, log)

			homeDir, err := os.UserHomeDir()
			if err != nil {
				return &ExitError{Code: core.ExitCritical, Message: fmt.Sprintf("resolve home directory: %v", err)}
			}
			env := &steps.Env{
				Distro:     d,
				Desktop:    desktop,
				Mode:       mode,
				DryRun:     gf.dryRun,
				Runner:     runner,
				Registry:   registry,
				Groups:     groups,
				Fs:         fs,
				Logger:     log,
				HomeDir:    homeDir,
				ConfigsDir: cfg.Paths.ConfigsDir,
				Report: func(step string, rep *pkgset.Report) {
					outcomes := rep.Outcomes()
					summary.RecordOutcomes(step, outcomes)
					if hist == nil {
						return
					}
					for _, o := range outcomes {
						if err := hist.RecordOutcome(ctx, runID, step, o); err != nil {
							log.Warn().Err(err).Msg("could not record outcome")
						}
					}
				},
			}

			stepList := steps.Build(env)
			if only != "" {
				stepList, err = filterSteps(stepList, only)
				if err != nil {
					return err
				}
			}

			if cfg.Install.SudoKeepAlive && !gf.dryRun {
				sudo.KeepAlive(ctx, runner, log)
			}

			orch := orchestrator.New(stepList, store, fs, log)
			runErr := orch.Run(ctx, summary)

			if hist != nil {
				if err := hist.FinishRun(ctx, runID, len(summary.Failures())); err != nil {
					log.Warn().Err(err).Msg("could not record run end")
				}
			}

			renderSummary(cmd, cfg, summary)

			if runErr != nil {
				return &ExitError{Code: core.ExitCritical, Message: runErr.Error()}
			}
			if !summary.Empty() {
				return &ExitError{Code: core.ExitWarnings, Message: "completed with failures"}
			}
			ui.PrintSuccess("All steps completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&only, "only", "", "run only steps whose name fuzzy-matches")

	return cmd
}

// filterSteps keeps the steps whose name fuzzy-matches pattern, preserving
// declaration order.
func filterSteps(all []orchestrator.Step, pattern string) ([]orchestrator.Step, error) {
	var out []orchestrator.Step
	for _, s := range all {
		if fuzzy.MatchFold(pattern, s.Name) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		names := make([]string, len(all))
		for i, s := range all {
			names[i] = s.Name
		}
		return nil, fmt.Errorf("no step matches %q; steps: %v", pattern, names)
	}
	return out, nil
}

// renderSummary prints the end-of-run report: package counters, a failure
// table when anything failed, and where the resume state lives.
func renderSummary(cmd *cobra.Command, cfg *config.Config, summary *orchestrator.Summary) {
	ui.PrintHeader("Summary")
	ui.PrintKeyValue("Installed", fmt.Sprintf("%d", summary.Count(core.StatusInstalled)))
	ui.PrintKeyValue("Skipped", fmt.Sprintf("%d", summary.Count(core.StatusSkipped)))
	ui.PrintKeyValue("Failed", fmt.Sprintf("%d", summary.Count(core.StatusFailed)))

	failures := summary.Failures()
	if len(failures) > 0 {
		fmt.Println()
		ui.PrintWarning("%d failure(s):", len(failures))

		table := tablewriter.NewTable(cmd.OutOrStdout(),
			tablewriter.WithHeader([]string{"Step", "Package", "Reason"}),
			tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
			tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
		)
		for _, f := range failures {
			reason := f.Message
			if len(reason) > 60 {
				reason = reason[:57] + "..."
			}
			table.Append(f.Step, f.Subject, reason)
		}
		table.Render()
	}

	fmt.Println()
	ui.PrintInfo("Progress saved to %s", cfg.Paths.StateFile)
	ui.PrintInfo("Log file: %s", filepath.Clean(cfg.Paths.LogFile))
}
