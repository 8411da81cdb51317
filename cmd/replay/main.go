package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/MaryanBog/ASE-SDK/internal/decisionlog"
	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/internal/harness"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "path to the decision database (DB mode)")
	runID := flag.String("run", "", "run id to replay (DB mode)")
	flag.Parse()

	fixtureMode := *fixturePath != ""
	dbMode := *dbPath != ""
	if fixtureMode == dbMode {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/ase_decisions.db --run <run-id>")
		os.Exit(2)
	}
	if dbMode && *runID == "" {
		fmt.Fprintln(os.Stderr, "DB mode requires --run")
		os.Exit(2)
	}

	var exitCode int
	if fixtureMode {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *runID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	fixture, err := harness.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, final, mismatches := harness.RunFixture(fixture)
	s := harness.Summarize(results)

	fmt.Printf("fixture: %s\n", fixture.Description)
	fmt.Printf("  turns=%d pass=%d adjusted=%d neutral=%d final=%v\n",
		s.TotalTurns, s.Passes, s.Adjusted, s.Neutralized, final)

	if len(fixture.Expected) == 0 {
		fmt.Println("  no expected results in fixture; replay only")
		return 0
	}
	if len(mismatches) == 0 {
		fmt.Println("  all expected results match")
		return 0
	}
	for _, m := range mismatches {
		fmt.Printf("  MISMATCH turn %d: want effective=%v outcome=%s, got effective=%v outcome=%s\n",
			m.Turn, m.WantEffective, m.WantOutcome, m.GotEffective, m.GotOutcome)
	}
	return 1
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-enforces a recorded scalar run with a fresh engine and checks
// that every effective step comes back bit-identical.
func runDBMode(dbPath, runID string) int {
	store, err := decisionlog.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get run: %v\n", err)
		return 2
	}
	if run.Domain != "scalar" {
		fmt.Fprintf(os.Stderr, "run %s has domain %q; only scalar runs replay from the DB\n", runID, run.Domain)
		return 2
	}

	mode, ok := ase.ParseMode(run.Mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "run %s has unknown mode %q\n", runID, run.Mode)
		return 2
	}

	start, err := strconv.ParseFloat(run.StartState, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse start state: %v\n", err)
		return 2
	}

	entries, err := store.ListDecisions(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list decisions: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "run %s has no decisions\n", runID)
		return 2
	}

	proposals := make([]float64, len(entries))
	for i, e := range entries {
		p, err := strconv.ParseFloat(e.Proposed, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn %d: parse proposed %q: %v\n", e.Turn, e.Proposed, err)
			return 2
		}
		proposals[i] = p
	}

	env := envelope.DefaultScalar()
	host := harness.Host[float64, float64]{
		Engine: ase.NewEngine(ase.Config{
			Mode:             mode,
			MaxScaleAttempts: run.MaxScaleAttempts,
			ScaleFactor:      run.ScaleFactor,
		}, env.Hooks()),
		Apply:   env.Apply,
		Neutral: env.NeutralStep(),
	}

	results, final := harness.Run(host, start, proposals)

	divergences := 0
	for i, r := range results {
		want := entries[i]
		gotEffective := strconv.FormatFloat(r.Effective, 'g', -1, 64)
		if gotEffective != want.Effective || string(r.Outcome) != want.Outcome {
			divergences++
			fmt.Printf("DIVERGED turn %d: recorded effective=%s outcome=%s, replayed effective=%s outcome=%s\n",
				want.Turn, want.Effective, want.Outcome, gotEffective, r.Outcome)
		}
	}

	fmt.Printf("run %s: %d turns replayed, %d divergences, final=%v\n",
		runID, len(results), divergences, final)
	if divergences > 0 {
		return 1
	}
	return 0
}

// #endregion db-mode
