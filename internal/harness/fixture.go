package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region float

// Float is a float64 that survives JSON round trips for non-finite values:
// NaN and infinities are encoded as quoted strings, finite values as numbers.
type Float float64

// MarshalJSON encodes non-finite values as strings.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	if math.IsInf(v, 1) {
		return []byte(`"+Inf"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts numbers or the quoted forms produced by MarshalJSON.
func (f *Float) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = Float(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("float literal %s: %w", data, err)
	}
	switch s {
	case "NaN":
		*f = Float(math.NaN())
	case "+Inf", "Inf":
		*f = Float(math.Inf(1))
	case "-Inf":
		*f = Float(math.Inf(-1))
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("float literal %q: %w", s, err)
		}
		*f = Float(v)
	}
	return nil
}

// #endregion float

// #region fixture-types

// Fixture is the top-level JSON structure for a scalar replay fixture:
// a starting state, an engine configuration, the proposal stream and the
// expected effective steps.
type Fixture struct {
	Description string          `json:"description"`
	StartState  Float           `json:"start_state"`
	Limit       float64         `json:"limit"`
	Config      FixtureConfig   `json:"config"`
	Proposals   []Float         `json:"proposals"`
	Expected    []FixtureExpect `json:"expected,omitempty"`
}

// FixtureConfig is the JSON-serializable engine configuration.
type FixtureConfig struct {
	Mode             string  `json:"mode"`
	MaxScaleAttempts int     `json:"max_scale_attempts"`
	ScaleFactor      float64 `json:"scale_factor"`
}

// FixtureExpect is the expected outcome of one turn.
type FixtureExpect struct {
	Effective Float  `json:"effective"`
	Outcome   string `json:"outcome"`
}

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if _, ok := ase.ParseMode(f.Config.Mode); !ok {
		return Fixture{}, fmt.Errorf("fixture mode %q is not a known mode", f.Config.Mode)
	}
	if len(f.Expected) > 0 && len(f.Expected) != len(f.Proposals) {
		return Fixture{}, fmt.Errorf("fixture has %d proposals but %d expected results",
			len(f.Proposals), len(f.Expected))
	}
	return f, nil
}

// SaveFixture writes a fixture file with indentation for hand editing.
func SaveFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion fixture-io

// #region fixture-run

// Mismatch describes one turn whose replayed result differed from the
// fixture's expectation.
type Mismatch struct {
	Turn          int
	WantEffective float64
	GotEffective  float64
	WantOutcome   string
	GotOutcome    string
}

// RunFixture replays the fixture through a fresh scalar engine and, when the
// fixture carries expected results, verifies them bit-for-bit. It returns the
// per-turn results, the final state and any mismatches.
func RunFixture(f Fixture) ([]TurnResult[float64], float64, []Mismatch) {
	mode, _ := ase.ParseMode(f.Config.Mode)
	cfg := ase.Config{
		Mode:             mode,
		MaxScaleAttempts: f.Config.MaxScaleAttempts,
		ScaleFactor:      f.Config.ScaleFactor,
	}

	limit := f.Limit
	if limit == 0 {
		limit = 1.0
	}
	env := envelope.Scalar{Limit: limit}

	host := Host[float64, float64]{
		Engine:     ase.NewEngine(cfg, env.Hooks()),
		Apply:      env.Apply,
		Neutral:    env.NeutralStep(),
		StateValid: func(s float64) bool { return env.IsAdmissible(s, 0.0) },
	}

	proposals := make([]float64, len(f.Proposals))
	for i, p := range f.Proposals {
		proposals[i] = float64(p)
	}

	results, final := Run(host, float64(f.StartState), proposals)

	var mismatches []Mismatch
	for i, exp := range f.Expected {
		got := results[i]
		if got.Effective != float64(exp.Effective) || string(got.Outcome) != exp.Outcome {
			mismatches = append(mismatches, Mismatch{
				Turn:          i,
				WantEffective: float64(exp.Effective),
				GotEffective:  got.Effective,
				WantOutcome:   exp.Outcome,
				GotOutcome:    string(got.Outcome),
			})
		}
	}

	return results, final, mismatches
}

// #endregion fixture-run
