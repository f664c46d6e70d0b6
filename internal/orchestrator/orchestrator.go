// Package orchestrator sequences the installation into named steps and
// persists completion per step, so an interrupted run resumes where it
// stopped. Steps run strictly in declared order; a failed step is logged,
// recorded, and left unpersisted so the next run retries it.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/quantmind-br/postinstall/internal/state"
	"github.com/quantmind-br/postinstall/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Step is one named unit of orchestrated work. The list of steps is fixed
// at construction and never mutated afterwards.
type Step struct {
	// Name is the stable state-store key; renaming a step orphans its
	// persisted completion.
	Name        string
	Description string

	// BoundInput optionally names a file whose content hash gates
	// re-execution: the step re-runs when the file changed since the
	// recorded completion.
	BoundInput string

	// Critical steps abort the whole run on failure; everything else
	// fails soft into the summary.
	Critical bool

	Run func(ctx context.Context) error
}

// Orchestrator drives the step list against the persisted state store.
type Orchestrator struct {
	steps  []Step
	store  *state.Store
	fs     afero.Fs
	logger *zerolog.Logger
}

// New creates an orchestrator. fs is used only to hash bound input files.
func New(steps []Step, store *state.Store, fs afero.Fs, log *zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		steps:  steps,
		store:  store,
		fs:     fs,
		logger: log,
	}
}

// Steps returns the declared step list.
func (o *Orchestrator) Steps() []Step {
	return o.steps
}

// Run executes every step in order, skipping steps whose persisted input
// hash still matches. Step failures land in summary; only a critical
// failure (or context cancellation) returns an error and stops the loop.
// State-store reads happen before the first step, and each completion is
// persisted before the next step starts, so a crash between steps always
// leaves a resumable store.
func (o *Orchestrator) Run(ctx context.Context, summary *Summary) error {
	completed, err := o.store.Load()
	if err != nil {
		return fmt.Errorf("load step state: %w", err)
	}

	total := len(o.steps)
	for i, step := range o.steps {
		if err := ctx.Err(); err != nil {
			// Interrupted: the in-flight position is not persisted, the
			// next run re-enters right here.
			return fmt.Errorf("run cancelled before step %q: %w", step.Name, err)
		}

		currentHash := state.NoHash
		if step.BoundInput != "" {
			currentHash, err = state.HashFile(o.fs, step.BoundInput)
			if err != nil {
				o.logger.Warn().Err(err).Str("step", step.Name).Msg("cannot hash bound input, step will run")
				currentHash = state.NoHash
			}
		}

		if entry, ok := completed[step.Name]; ok && entry.InputHash == currentHash {
			o.logger.Debug().Str("step", step.Name).Msg("step already satisfied, skipping")
			ui.PrintStepSkipped(i+1, total, step.Description)
			continue
		}

		ui.PrintStep(i+1, total, step.Description)
		o.logger.Info().Str("step", step.Name).Msg("step started")

		if err := step.Run(ctx); err != nil {
			o.logger.Error().Err(err).Str("step", step.Name).Msg("step failed")
			summary.RecordStepFailure(step.Name, err.Error())

			if step.Critical {
				return fmt.Errorf("critical step %q failed: %w", step.Name, err)
			}
			if ctx.Err() != nil {
				return fmt.Errorf("run cancelled during step %q: %w", step.Name, ctx.Err())
			}
			ui.PrintError("step %s failed: %v", step.Name, err)
			continue
		}

		if err := o.store.MarkCompleted(step.Name, currentHash); err != nil {
			// Completion that cannot be persisted will re-run next time;
			// annoying but safe, since steps are idempotent.
			o.logger.Warn().Err(err).Str("step", step.Name).Msg("could not persist step completion")
		}
		o.logger.Info().Str("step", step.Name).Msg("step completed")
	}

	return nil
}
