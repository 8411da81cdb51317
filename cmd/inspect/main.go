package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/MaryanBog/ASE-SDK/internal/decisionlog"
	"github.com/MaryanBog/ASE-SDK/internal/harness"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the decision database")
	runID := flag.String("run", "", "show decisions of a single run")
	last := flag.Int("last", 20, "show N most recent runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/ase_decisions.db [--run id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := decisionlog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type runRow struct {
	RunID     string  `json:"run_id"`
	Domain    string  `json:"domain"`
	Mode      string  `json:"mode"`
	Attempts  int     `json:"max_scale_attempts"`
	Factor    float64 `json:"scale_factor"`
	Seed      int64   `json:"seed"`
	CreatedAt string  `json:"created_at"`
}

func runListMode(store *decisionlog.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}

	rows := make([]runRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, runRow{
			RunID:     r.RunID,
			Domain:    r.Domain,
			Mode:      r.Mode,
			Attempts:  r.MaxScaleAttempts,
			Factor:    r.ScaleFactor,
			Seed:      r.Seed,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-36s  %-9s  %-7s  %8s  %6s  %6s  %s\n",
		"RUN", "DOMAIN", "MODE", "ATTEMPTS", "FACTOR", "SEED", "CREATED")
	for _, r := range rows {
		fmt.Printf("%-36s  %-9s  %-7s  %8d  %6.3f  %6d  %s\n",
			r.RunID, r.Domain, r.Mode, r.Attempts, r.Factor, r.Seed, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

// Norm fields use harness.Float so NaN norms (recorded for non-finite
// proposals) survive JSON encoding.
type decisionRow struct {
	Turn          int           `json:"turn"`
	Proposed      string        `json:"proposed"`
	Effective     string        `json:"effective"`
	StateNorm     harness.Float `json:"state_norm"`
	ProposedNorm  harness.Float `json:"proposed_norm"`
	EffectiveNorm harness.Float `json:"effective_norm"`
	Outcome       string        `json:"outcome"`
	AuditOK       bool          `json:"audit_ok"`
}

func runDetailMode(store *decisionlog.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	entries, err := store.ListDecisions(runID)
	if err != nil {
		return err
	}

	rows := make([]decisionRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, decisionRow{
			Turn:          e.Turn,
			Proposed:      e.Proposed,
			Effective:     e.Effective,
			StateNorm:     harness.Float(e.StateNorm),
			ProposedNorm:  harness.Float(e.ProposedNorm),
			EffectiveNorm: harness.Float(e.EffectiveNorm),
			Outcome:       e.Outcome,
			AuditOK:       e.AuditOK,
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("run %s: domain=%s mode=%s attempts=%d factor=%g seed=%d\n",
		run.RunID, run.Domain, run.Mode, run.MaxScaleAttempts, run.ScaleFactor, run.Seed)

	counts, err := outcomeCounts(store, runID)
	if err != nil {
		return err
	}
	fmt.Printf("  pass=%d adjusted=%d neutral=%d\n",
		counts["pass"], counts["adjusted"], counts["neutral"])

	fmt.Printf("%5s  %-22s  %-22s  %-8s  %s\n", "TURN", "PROPOSED", "EFFECTIVE", "OUTCOME", "AUDIT")
	for _, r := range rows {
		audit := "ok"
		if !r.AuditOK {
			audit = "FAIL"
		}
		fmt.Printf("%5d  %-22s  %-22s  %-8s  %s\n", r.Turn, r.Proposed, r.Effective, r.Outcome, audit)
	}
	return nil
}

// outcomeCounts aggregates decision outcomes with an ad-hoc query on the
// underlying database.
func outcomeCounts(store *decisionlog.Store, runID string) (map[string]int, error) {
	rows, err := store.DB().Query(
		`SELECT outcome, COUNT(*) FROM decisions WHERE run_id = ? GROUP BY outcome`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// #endregion detail-mode
