package ase

// #region hooks
// Hooks is the capability set the host injects into an Engine. It is the only
// way the engine touches domain semantics: State and Step stay opaque here.
// Every hook must be deterministic, pure and side-effect free; the hook set
// must not be mutated after the Engine is constructed.
type Hooks[State, Step any] struct {
	// IsAdmissible reports whether applying the step to the state keeps the
	// next state inside the host's admissible domain. Required in every mode.
	// A panic raised here is caught at the enforcement boundary and treated
	// as an evaluation failure (neutral), distinct from a clean false.
	IsAdmissible func(state State, step Step) bool

	// NeutralStep produces the host's "do nothing" step. It is trusted
	// unconditionally — the engine never re-verifies it — so it must be safe
	// to apply from any reachable state. Required in every mode.
	NeutralStep func() Step

	// ScaleStep scales a step by factor k, reporting ok=false instead of
	// producing a non-finite or otherwise invalid result. Required only in
	// Scale mode.
	ScaleStep func(step Step, k float64) (scaled Step, ok bool)

	// ProjectStep maps a proposed step to one whose resulting next state the
	// host believes lies in the admissible domain. Invoked at most once per
	// Enforce call; any internal search (bisection, clamping) is the host's
	// business. Required only in Project mode.
	ProjectStep func(state State, step Step) (projected Step, ok bool)
}

// #endregion hooks
