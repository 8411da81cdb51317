// Package ase implements admissible step enforcement: a stateless,
// fail-closed admission gate for state-transition proposals. Given a current
// state and a proposed step, Enforce returns an effective step that keeps the
// next state inside the host-defined admissible domain, or the host's neutral
// step when no admissible alternative can be produced within the configured
// bounds. The engine never applies steps, performs no I/O, and touches domain
// semantics only through the injected capability set.
package ase

// #region engine
// Engine is the admission-control gate for state-transition proposals. It is
// stateless per call, holds only its Config and Hooks, and is safe for
// concurrent use: Enforce never mutates the Engine and the hooks are required
// to be pure.
type Engine[State, Step any] struct {
	cfg   Config
	hooks Hooks[State, Step]
}

// NewEngine builds an engine from a configuration and a capability set.
// Neither is validated beyond what Enforce checks per call: a missing
// required hook is a fail-closed path, not a construction error.
func NewEngine[State, Step any](cfg Config, hooks Hooks[State, Step]) *Engine[State, Step] {
	return &Engine[State, Step]{cfg: cfg, hooks: hooks}
}

// Config returns the configuration the engine was built with.
func (e *Engine[State, Step]) Config() Config {
	return e.cfg
}

// #endregion engine

// #region enforce
// Enforce returns an effective step the host may apply unconditionally:
// the proposal itself when admissible, a scaled or projected variant in
// Scale/Project mode, or the neutral step on every path that cannot
// positively establish admissibility. It never panics and never blocks;
// the admissibility hook runs at most 1+MaxScaleAttempts times.
func (e *Engine[State, Step]) Enforce(state State, proposed Step) Step {
	if e.hooks.IsAdmissible == nil || e.hooks.NeutralStep == nil {
		return e.neutral()
	}

	admissible, ok := e.safeIsAdmissible(state, proposed)
	if !ok {
		// Evaluation failure, not a clean "inadmissible" verdict.
		return e.neutral()
	}
	if admissible {
		// Pass-through: an admissible proposal is never altered.
		return proposed
	}

	switch e.cfg.Mode {
	case ModeReject:
		return e.neutral()
	case ModeScale:
		return e.enforceScale(state, proposed)
	case ModeProject:
		return e.enforceProject(state, proposed)
	}

	// Unreachable with a closed Mode set; fail closed anyway.
	return e.neutral()
}

// #endregion enforce

// #region scale
// enforceScale searches for a multiplier k <= 1 making k*proposed admissible,
// shrinking geometrically. First success wins; a single transform or
// evaluation failure aborts the whole search.
func (e *Engine[State, Step]) enforceScale(state State, proposed Step) Step {
	if e.hooks.ScaleStep == nil {
		return e.neutral()
	}

	k := 1.0
	for i := 0; i < e.cfg.MaxScaleAttempts; i++ {
		scaled, ok := e.safeScaleStep(proposed, k)
		if !ok {
			return e.neutral()
		}

		admissible, ok := e.safeIsAdmissible(state, scaled)
		if !ok {
			return e.neutral()
		}
		if admissible {
			return scaled
		}

		k *= e.cfg.ScaleFactor
	}

	// Attempt budget exhausted.
	return e.neutral()
}

// #endregion scale

// #region project
// enforceProject invokes the host projection at most once and verifies the
// result before trusting it.
func (e *Engine[State, Step]) enforceProject(state State, proposed Step) Step {
	if e.hooks.ProjectStep == nil {
		return e.neutral()
	}

	projected, ok := e.safeProjectStep(state, proposed)
	if !ok {
		return e.neutral()
	}

	admissible, ok := e.safeIsAdmissible(state, projected)
	if !ok || !admissible {
		return e.neutral()
	}
	return projected
}

// #endregion project

// #region boundary
// safeIsAdmissible evaluates the admissibility hook behind a recover
// boundary. ok=false means the evaluation itself failed; no panic escapes.
func (e *Engine[State, Step]) safeIsAdmissible(state State, step Step) (admissible, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			admissible, ok = false, false
		}
	}()
	return e.hooks.IsAdmissible(state, step), true
}

// safeScaleStep invokes the scale hook behind a recover boundary.
func (e *Engine[State, Step]) safeScaleStep(step Step, k float64) (scaled Step, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero Step
			scaled, ok = zero, false
		}
	}()
	return e.hooks.ScaleStep(step, k)
}

// safeProjectStep invokes the projection hook behind a recover boundary.
func (e *Engine[State, Step]) safeProjectStep(state State, step Step) (projected Step, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero Step
			projected, ok = zero, false
		}
	}()
	return e.hooks.ProjectStep(state, step)
}

// neutral returns the host's neutral step, falling back to the Step zero
// value when the provider is absent or itself fails.
func (e *Engine[State, Step]) neutral() (step Step) {
	if e.hooks.NeutralStep == nil {
		return step
	}
	defer func() {
		if r := recover(); r != nil {
			var zero Step
			step = zero
		}
	}()
	return e.hooks.NeutralStep()
}

// #endregion boundary
