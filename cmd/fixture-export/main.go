package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/MaryanBog/ASE-SDK/internal/decisionlog"
	"github.com/MaryanBog/ASE-SDK/internal/harness"
)

// #region main

// fixture-export turns a recorded scalar run into a standalone replay
// fixture, with the recorded effective steps as expected results.
func main() {
	dbPath := flag.String("db", "", "path to the decision database")
	runID := flag.String("run", "", "run id to export")
	outPath := flag.String("out", "fixture.json", "output fixture path")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/ase_decisions.db --run <run-id> [--out fixture.json]")
		os.Exit(2)
	}

	if err := export(*dbPath, *runID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

// #endregion main

// #region export

func export(dbPath, runID, outPath string) error {
	store, err := decisionlog.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run.Domain != "scalar" {
		return fmt.Errorf("run %s has domain %q; only scalar runs export to fixtures", runID, run.Domain)
	}

	start, err := strconv.ParseFloat(run.StartState, 64)
	if err != nil {
		return fmt.Errorf("parse start state: %w", err)
	}

	entries, err := store.ListDecisions(runID)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("run %s has no decisions", runID)
	}

	fixture := harness.Fixture{
		Description: fmt.Sprintf("exported from run %s (%s, seed %d)", run.RunID, run.Mode, run.Seed),
		StartState:  harness.Float(start),
		Limit:       1.0,
		Config: harness.FixtureConfig{
			Mode:             run.Mode,
			MaxScaleAttempts: run.MaxScaleAttempts,
			ScaleFactor:      run.ScaleFactor,
		},
	}

	for _, e := range entries {
		proposed, err := strconv.ParseFloat(e.Proposed, 64)
		if err != nil {
			return fmt.Errorf("turn %d: parse proposed %q: %w", e.Turn, e.Proposed, err)
		}
		effective, err := strconv.ParseFloat(e.Effective, 64)
		if err != nil {
			return fmt.Errorf("turn %d: parse effective %q: %w", e.Turn, e.Effective, err)
		}
		fixture.Proposals = append(fixture.Proposals, harness.Float(proposed))
		fixture.Expected = append(fixture.Expected, harness.FixtureExpect{
			Effective: harness.Float(effective),
			Outcome:   e.Outcome,
		})
	}

	if err := harness.SaveFixture(outPath, fixture); err != nil {
		return err
	}
	return nil
}

// #endregion export
