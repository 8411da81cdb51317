package harness

import (
	"math"
	"testing"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

func scalarHost(mode ase.Mode) Host[float64, float64] {
	env := envelope.DefaultScalar()
	cfg := ase.Config{Mode: mode, MaxScaleAttempts: 16, ScaleFactor: 0.5}
	return Host[float64, float64]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: func(s float64) bool { return env.IsAdmissible(s, 0.0) },
	}
}

func TestRunClassifiesOutcomes(t *testing.T) {
	host := scalarHost(ase.ModeScale)

	// From 0.0: 0.2 passes; from 0.2: 1.5 gets scaled; NaN fails closed.
	results, final := Run(host, 0.0, []float64{0.2, 1.5, math.NaN()})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Outcome != OutcomePass {
		t.Fatalf("turn 0: expected pass, got %s", results[0].Outcome)
	}
	if results[1].Outcome != OutcomeAdjusted {
		t.Fatalf("turn 1: expected adjusted, got %s", results[1].Outcome)
	}
	if results[2].Outcome != OutcomeNeutral {
		t.Fatalf("turn 2: expected neutral, got %s", results[2].Outcome)
	}
	if math.Abs(final) > 1.0 {
		t.Fatalf("final state %v left the envelope", final)
	}
	for _, r := range results {
		if !r.AuditOK {
			t.Fatalf("turn %d: audit failed", r.Turn)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	host := scalarHost(ase.ModeReject)

	results, _ := Run(host, 0.9, []float64{0.05, 0.5, -0.1, math.Inf(1)})
	s := Summarize(results)

	if s.TotalTurns != 4 {
		t.Fatalf("expected 4 turns, got %d", s.TotalTurns)
	}
	if s.Passes != 2 { // 0.05 and -0.1 are admissible from the running state
		t.Fatalf("expected 2 passes, got %d (results %+v)", s.Passes, results)
	}
	if s.Neutralized != 2 {
		t.Fatalf("expected 2 neutralized, got %d", s.Neutralized)
	}
	if s.AuditFailures != 0 {
		t.Fatalf("expected no audit failures, got %d", s.AuditFailures)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	proposals := []float64{0.3, 0.9, -1.4, 0.01, math.NaN(), 2.0}

	a, finalA := Run(scalarHost(ase.ModeScale), 0.5, proposals)
	b, finalB := Run(scalarHost(ase.ModeScale), 0.5, proposals)

	if finalA != finalB {
		t.Fatalf("final states diverged: %v != %v", finalA, finalB)
	}
	for i := range a {
		if a[i].Effective != b[i].Effective || a[i].Outcome != b[i].Outcome {
			t.Fatalf("turn %d diverged: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestVectorHostRun(t *testing.T) {
	env := envelope.DefaultVector()
	cfg := ase.Config{Mode: ase.ModeProject, MaxScaleAttempts: 16, ScaleFactor: 0.5}
	host := Host[envelope.Vec, envelope.Vec]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: env.StateValid,
	}

	var big envelope.Vec
	big[0] = 100.0

	results, final := Run(host, envelope.Vec{}, []envelope.Vec{big})
	if results[0].Outcome != OutcomeAdjusted {
		t.Fatalf("expected adjusted, got %s", results[0].Outcome)
	}
	if !env.StateValid(final) {
		t.Fatal("final vector state left the envelope")
	}
}

func TestOptimizerHostRun(t *testing.T) {
	env := envelope.DefaultOptimizer()
	cfg := ase.Config{Mode: ase.ModeScale, MaxScaleAttempts: 16, ScaleFactor: 0.5}
	host := Host[envelope.OptState, envelope.Vec]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: env.StateValid,
	}

	var small, big, broken envelope.Vec
	small[0] = 0.1
	big[0] = 100.0
	broken[0] = math.NaN()

	results, final := Run(host, envelope.OptState{}, []envelope.Vec{small, big, broken})
	if results[0].Outcome != OutcomePass {
		t.Fatalf("turn 0: expected pass, got %s", results[0].Outcome)
	}
	if results[1].Outcome != OutcomeAdjusted {
		t.Fatalf("turn 1: expected adjusted, got %s", results[1].Outcome)
	}
	if results[2].Outcome != OutcomeNeutral {
		t.Fatalf("turn 2: expected neutral, got %s", results[2].Outcome)
	}
	for _, r := range results {
		if !r.AuditOK {
			t.Fatalf("turn %d: audit failed", r.Turn)
		}
	}
	if !env.StateValid(final) {
		t.Fatal("final optimizer state left the envelope")
	}
	if final.Step != 3 {
		t.Fatalf("expected 3 transitions, got %d", final.Step)
	}
}
