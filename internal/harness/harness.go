// Package harness drives an enforcement engine through a sequence of
// proposed transitions, classifying each outcome and auditing the applied
// state after every turn. It operates entirely in-memory; persistence is the
// decisionlog's job.
package harness

import (
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region types

// Outcome classifies a single enforced transition. The engine itself returns
// only the effective step (its API boundary is exactly that), so outcomes are
// derived by comparison on the host side.
type Outcome string

const (
	// OutcomePass means the proposal came back unchanged.
	OutcomePass Outcome = "pass"
	// OutcomeAdjusted means a scaled or projected variant came back.
	OutcomeAdjusted Outcome = "adjusted"
	// OutcomeNeutral means enforcement failed closed to the neutral step.
	OutcomeNeutral Outcome = "neutral"
)

// Host bundles everything the harness needs around an engine: the transition
// operator, the neutral step for outcome classification, and an optional
// state validity check used as a post-apply audit.
type Host[State any, Step comparable] struct {
	Engine  *ase.Engine[State, Step]
	Apply   func(State, Step) State
	Neutral Step

	// StateValid, when set, audits the applied state each turn; a failure is
	// recorded, not fatal, mirroring a post-commit evaluation stage.
	StateValid func(State) bool
}

// TurnResult captures one enforced transition.
type TurnResult[Step comparable] struct {
	Turn      int
	Proposed  Step
	Effective Step
	Outcome   Outcome
	AuditOK   bool
}

// Summary aggregates a run.
type Summary struct {
	TotalTurns    int
	Passes        int
	Adjusted      int
	Neutralized   int
	AuditFailures int
}

// #endregion types

// #region run

// Run enforces each proposal in order, applying the effective step through
// the host operator and advancing the state. It returns per-turn results and
// the final state.
func Run[State any, Step comparable](h Host[State, Step], start State, proposals []Step) ([]TurnResult[Step], State) {
	current := start
	results := make([]TurnResult[Step], 0, len(proposals))

	for i, proposed := range proposals {
		effective := h.Engine.Enforce(current, proposed)

		outcome := OutcomeAdjusted
		switch effective {
		case proposed:
			outcome = OutcomePass
		case h.Neutral:
			outcome = OutcomeNeutral
		}

		current = h.Apply(current, effective)

		auditOK := true
		if h.StateValid != nil {
			auditOK = h.StateValid(current)
		}

		results = append(results, TurnResult[Step]{
			Turn:      i,
			Proposed:  proposed,
			Effective: effective,
			Outcome:   outcome,
			AuditOK:   auditOK,
		})
	}

	return results, current
}

// Summarize computes aggregate stats from run results.
func Summarize[Step comparable](results []TurnResult[Step]) Summary {
	s := Summary{TotalTurns: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomePass:
			s.Passes++
		case OutcomeAdjusted:
			s.Adjusted++
		case OutcomeNeutral:
			s.Neutralized++
		}
		if !r.AuditOK {
			s.AuditFailures++
		}
	}
	return s
}

// #endregion run
