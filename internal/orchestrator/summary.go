package orchestrator

import (
	"sync"

	"github.com/quantmind-br/postinstall/internal/core"
)

// Failure is one recorded problem: a step that failed outright or a single
// package inside a step's group.
type Failure struct {
	Step    string `json:"step"`
	Subject string `json:"subject"` // package identifier, or the step name itself
	Message string `json:"message"`
}

// Summary accumulates every failure across a whole run without ever
// raising. It is read once at the end to render the final report and pick
// the exit code.
type Summary struct {
	mu       sync.Mutex
	failures []Failure
	counts   map[core.Status]int
}

// NewSummary creates an empty run summary.
func NewSummary() *Summary {
	return &Summary{counts: map[core.Status]int{}}
}

// RecordStepFailure records a step-level error.
func (s *Summary) RecordStepFailure(step, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, Failure{Step: step, Subject: step, Message: message})
}

// RecordOutcomes folds a group's per-package outcomes in: failures are
// kept individually, everything else only bumps the status counters.
func (s *Summary) RecordOutcomes(step string, outcomes []core.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range outcomes {
		s.counts[o.Status]++
		if o.Status == core.StatusFailed {
			s.failures = append(s.failures, Failure{Step: step, Subject: o.Identifier, Message: o.Reason})
		}
	}
}

// Failures returns all recorded failures in insertion order.
func (s *Summary) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Failure, len(s.failures))
	copy(out, s.failures)
	return out
}

// Count returns how many packages ended in the given status.
func (s *Summary) Count(status core.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[status]
}

// Empty reports whether the run finished without a single failure.
func (s *Summary) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failures) == 0
}

// ExitCode maps the summary onto the process exit status.
func (s *Summary) ExitCode() int {
	if s.Empty() {
		return core.ExitSuccess
	}
	return core.ExitWarnings
}
