package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region main

// scalar-demo enforces a single proposed transition on the scalar envelope
// |S + dS| <= limit and prints the canonical integration form:
// S_next = S + enforce(S, dS).
func main() {
	mode := flag.String("mode", "scale", "enforcement mode: reject | scale | project")
	state := flag.Float64("state", 0.9, "current state S")
	proposed := flag.Float64("proposed", 0.5, "proposed step dS")
	limit := flag.Float64("limit", 1.0, "envelope limit on |S + dS|")
	attempts := flag.Int("attempts", 16, "max scale attempts")
	factor := flag.Float64("factor", 0.5, "scale factor per attempt")
	flag.Parse()

	m, ok := ase.ParseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	env := envelope.Scalar{Limit: *limit}
	engine := ase.NewEngine(ase.Config{
		Mode:             m,
		MaxScaleAttempts: *attempts,
		ScaleFactor:      *factor,
	}, env.Hooks())

	effective := engine.Enforce(*state, *proposed)
	next := env.Apply(*state, effective)

	fmt.Printf("S=%v proposed=%v effective=%v next=%v\n", *state, *proposed, effective, next)
}

// #endregion main
