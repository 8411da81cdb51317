package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/MaryanBog/ASE-SDK/internal/decisionlog"
	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/internal/harness"
	"github.com/MaryanBog/ASE-SDK/internal/proposer"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region main

// loop-demo drives a seeded loop through the gate for N turns, records every
// decision to the SQLite store and prints the summary. The proposal stream
// occasionally spikes and injects NaN, so all three outcome classes show up
// in the log. Scalar runs record exact values and replay bit-identically via
// cmd/replay; vector and optimizer runs record norms for inspection.
func main() {
	dbPath := flag.String("db", "ase_decisions.db", "path to the decision database")
	domain := flag.String("domain", "scalar", "envelope domain: scalar | vector | optimizer")
	mode := flag.String("mode", "scale", "enforcement mode: reject | scale | project")
	turns := flag.Int("turns", 200, "number of proposed transitions")
	seed := flag.Int64("seed", 1, "proposer seed")
	start := flag.Float64("start", 0.0, "starting state (scalar domain)")
	flag.Parse()

	m, ok := ase.ParseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	store, err := decisionlog.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	cfg := ase.DefaultConfig()
	cfg.Mode = m

	switch *domain {
	case "scalar":
		runScalar(store, cfg, *turns, *seed, *start)
	case "vector":
		runVector(store, cfg, *turns, *seed)
	case "optimizer":
		runOptimizer(store, cfg, *turns, *seed)
	default:
		fmt.Fprintf(os.Stderr, "unknown domain %q\n", *domain)
		os.Exit(2)
	}
}

// #endregion main

// #region scalar-run

func runScalar(store *decisionlog.Store, cfg ase.Config, turns int, seed int64, start float64) {
	env := envelope.DefaultScalar()
	host := harness.Host[float64, float64]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: func(s float64) bool { return env.IsAdmissible(s, 0.0) },
	}

	propConfig := proposer.DefaultConfig()
	propConfig.Seed = seed
	prop := proposer.New(propConfig)

	// Generate the full proposal stream up front so the run is a pure
	// function of (seed, config, start).
	state := start
	proposals := make([]float64, 0, turns)
	for i := 0; i < turns; i++ {
		p := prop.ProposeScalar(state)
		proposals = append(proposals, p)
		state = env.Apply(state, host.Engine.Enforce(state, p))
	}

	run, err := store.BeginRun(decisionlog.RunRecord{
		Domain:           "scalar",
		Mode:             cfg.Mode.String(),
		MaxScaleAttempts: cfg.MaxScaleAttempts,
		ScaleFactor:      cfg.ScaleFactor,
		Seed:             seed,
		StartState:       formatFloat(start),
	})
	if err != nil {
		log.Fatalf("begin run: %v", err)
	}

	results, final := harness.Run(host, start, proposals)

	current := start
	for i, r := range results {
		err := store.LogDecision(decisionlog.DecisionEntry{
			RunID:         run.RunID,
			Turn:          r.Turn,
			State:         formatFloat(current),
			Proposed:      formatFloat(r.Proposed),
			Effective:     formatFloat(r.Effective),
			StateNorm:     abs(current),
			ProposedNorm:  abs(r.Proposed),
			EffectiveNorm: abs(r.Effective),
			Outcome:       string(r.Outcome),
			AuditOK:       r.AuditOK,
		})
		if err != nil {
			log.Fatalf("log decision %d: %v", i, err)
		}
		current = env.Apply(current, r.Effective)
	}

	printSummary(run, cfg, seed, harness.Summarize(results))
	fmt.Printf("  final state=%v\n", final)
}

// #endregion scalar-run

// #region vector-run

func runVector(store *decisionlog.Store, cfg ase.Config, turns int, seed int64) {
	env := envelope.DefaultVector()
	host := harness.Host[envelope.Vec, envelope.Vec]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: env.StateValid,
	}

	propConfig := proposer.DefaultConfig()
	propConfig.Seed = seed
	prop := proposer.New(propConfig)

	var state envelope.Vec
	proposals := make([]envelope.Vec, 0, turns)
	for i := 0; i < turns; i++ {
		p := prop.ProposeVec(state)
		proposals = append(proposals, p)
		state = env.Apply(state, host.Engine.Enforce(state, p))
	}

	run, err := store.BeginRun(decisionlog.RunRecord{
		Domain:           "vector",
		Mode:             cfg.Mode.String(),
		MaxScaleAttempts: cfg.MaxScaleAttempts,
		ScaleFactor:      cfg.ScaleFactor,
		Seed:             seed,
	})
	if err != nil {
		log.Fatalf("begin run: %v", err)
	}

	results, final := harness.Run(host, envelope.Vec{}, proposals)

	current := envelope.Vec{}
	for i, r := range results {
		err := store.LogDecision(decisionlog.DecisionEntry{
			RunID:         run.RunID,
			Turn:          r.Turn,
			Proposed:      formatFloat(envelope.L2Norm(r.Proposed)),
			Effective:     formatFloat(envelope.L2Norm(r.Effective)),
			StateNorm:     envelope.L2Norm(current),
			ProposedNorm:  envelope.L2Norm(r.Proposed),
			EffectiveNorm: envelope.L2Norm(r.Effective),
			Outcome:       string(r.Outcome),
			AuditOK:       r.AuditOK,
		})
		if err != nil {
			log.Fatalf("log decision %d: %v", i, err)
		}
		current = env.Apply(current, r.Effective)
	}

	printSummary(run, cfg, seed, harness.Summarize(results))
	fmt.Printf("  final state norm=%v\n", envelope.L2Norm(final))
}

// #endregion vector-run

// #region optimizer-run

func runOptimizer(store *decisionlog.Store, cfg ase.Config, turns int, seed int64) {
	env := envelope.DefaultOptimizer()
	host := harness.Host[envelope.OptState, envelope.Vec]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: env.StateValid,
	}

	propConfig := proposer.DefaultConfig()
	propConfig.Seed = seed
	prop := proposer.New(propConfig)

	var state envelope.OptState
	proposals := make([]envelope.Vec, 0, turns)
	for i := 0; i < turns; i++ {
		p := prop.ProposeVec(state.Theta)
		proposals = append(proposals, p)
		state = env.Apply(state, host.Engine.Enforce(state, p))
	}

	run, err := store.BeginRun(decisionlog.RunRecord{
		Domain:           "optimizer",
		Mode:             cfg.Mode.String(),
		MaxScaleAttempts: cfg.MaxScaleAttempts,
		ScaleFactor:      cfg.ScaleFactor,
		Seed:             seed,
	})
	if err != nil {
		log.Fatalf("begin run: %v", err)
	}

	results, final := harness.Run(host, envelope.OptState{}, proposals)

	current := envelope.OptState{}
	for i, r := range results {
		err := store.LogDecision(decisionlog.DecisionEntry{
			RunID:         run.RunID,
			Turn:          r.Turn,
			Proposed:      formatFloat(envelope.L2Norm(r.Proposed)),
			Effective:     formatFloat(envelope.L2Norm(r.Effective)),
			StateNorm:     envelope.L2Norm(current.Theta),
			ProposedNorm:  envelope.L2Norm(r.Proposed),
			EffectiveNorm: envelope.L2Norm(r.Effective),
			Outcome:       string(r.Outcome),
			AuditOK:       r.AuditOK,
		})
		if err != nil {
			log.Fatalf("log decision %d: %v", i, err)
		}
		current = env.Apply(current, r.Effective)
	}

	printSummary(run, cfg, seed, harness.Summarize(results))
	fmt.Printf("  final theta norm=%v step=%d\n", envelope.L2Norm(final.Theta), final.Step)
}

// #endregion optimizer-run

// #region helpers

func printSummary(run decisionlog.RunRecord, cfg ase.Config, seed int64, s harness.Summary) {
	fmt.Printf("run %s (%s %s, seed %d)\n", run.RunID, run.Domain, cfg.Mode, seed)
	fmt.Printf("  turns=%d pass=%d adjusted=%d neutral=%d audit_failures=%d\n",
		s.TotalTurns, s.Passes, s.Adjusted, s.Neutralized, s.AuditFailures)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// #endregion helpers
