package harness

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
)

func sampleFixture() Fixture {
	return Fixture{
		Description: "scale mode reference walk",
		StartState:  0.9,
		Limit:       1.0,
		Config: FixtureConfig{
			Mode:             "scale",
			MaxScaleAttempts: 16,
			ScaleFactor:      0.5,
		},
		Proposals: []Float{0.5, Float(math.NaN()), -0.2},
		Expected: []FixtureExpect{
			{Effective: 0.0625, Outcome: "adjusted"},
			{Effective: 0.0, Outcome: "neutral"},
			{Effective: -0.2, Outcome: "pass"},
		},
	}
}

func TestFixtureSaveLoadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")

	if err := SaveFixture(path, sampleFixture()); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !math.IsNaN(float64(loaded.Proposals[1])) {
		t.Fatalf("NaN proposal did not survive the round trip: %v", loaded.Proposals[1])
	}

	results, final, mismatches := RunFixture(loaded)
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %+v", mismatches)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// 0.9 + 0.0625 + 0 - 0.2 = 0.7625
	if math.Abs(final-0.7625) > 1e-12 {
		t.Fatalf("expected final 0.7625, got %v", final)
	}
}

func TestFixtureDetectsMismatch(t *testing.T) {
	f := sampleFixture()
	f.Expected[0].Effective = 0.125 // wrong on purpose

	_, _, mismatches := RunFixture(f)
	if len(mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %d", len(mismatches))
	}
	if mismatches[0].Turn != 0 {
		t.Fatalf("expected mismatch on turn 0, got %d", mismatches[0].Turn)
	}
}

func TestFixtureRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	f := sampleFixture()
	f.Config.Mode = "bisect"
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected unknown mode to be rejected")
	}
}

func TestFixtureRejectsLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	f := sampleFixture()
	f.Expected = f.Expected[:1]
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected expected/proposal length mismatch to be rejected")
	}
}

func TestFloatJSONForms(t *testing.T) {
	var f Float
	if err := json.Unmarshal([]byte(`"+Inf"`), &f); err != nil {
		t.Fatalf("unmarshal +Inf: %v", err)
	}
	if !math.IsInf(float64(f), 1) {
		t.Fatalf("expected +Inf, got %v", f)
	}
	if err := json.Unmarshal([]byte(`0.25`), &f); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if f != 0.25 {
		t.Fatalf("expected 0.25, got %v", f)
	}
	if err := json.Unmarshal([]byte(`"pear"`), &f); err == nil {
		t.Fatal("expected garbage string to fail")
	}
}
