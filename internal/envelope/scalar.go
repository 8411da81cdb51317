package envelope

import (
	"math"

	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region scalar
// Scalar is the reference one-dimensional admissible domain:
// a next state is admissible when |S + dS| <= Limit and everything involved
// is finite. Neutral is 0, the additive no-op.
type Scalar struct {
	Limit float64
}

// DefaultScalar returns the domain used by the demos: |next| <= 1.0.
func DefaultScalar() Scalar {
	return Scalar{Limit: 1.0}
}

// IsAdmissible reports whether applying dS to s stays inside the envelope.
// Non-finite inputs are inadmissible.
func (e Scalar) IsAdmissible(s, ds float64) bool {
	if !isFinite(s) || !isFinite(ds) {
		return false
	}
	next := s + ds
	if !isFinite(next) {
		return false
	}
	return math.Abs(next) <= e.Limit
}

// NeutralStep returns the additive no-op.
func (e Scalar) NeutralStep() float64 {
	return 0.0
}

// ScaleStep multiplies the step by k, failing on non-finite results.
func (e Scalar) ScaleStep(in, k float64) (float64, bool) {
	if !isFinite(in) || !isFinite(k) {
		return 0, false
	}
	out := in * k
	if !isFinite(out) {
		return 0, false
	}
	return out, true
}

// ProjectStep clamps the next state onto [-Limit, Limit] and returns the
// step that reaches the clamped state.
func (e Scalar) ProjectStep(s, ds float64) (float64, bool) {
	if !isFinite(s) || !isFinite(ds) {
		return 0, false
	}
	next := s + ds
	if !isFinite(next) {
		return 0, false
	}
	if next > e.Limit {
		next = e.Limit
	} else if next < -e.Limit {
		next = -e.Limit
	}
	return next - s, true
}

// Apply is the host transition operator: S' = S + dS. The engine never
// calls this; loop drivers do.
func (e Scalar) Apply(s, ds float64) float64 {
	return s + ds
}

// Hooks bundles the domain into an engine capability set.
func (e Scalar) Hooks() ase.Hooks[float64, float64] {
	return ase.Hooks[float64, float64]{
		IsAdmissible: e.IsAdmissible,
		NeutralStep:  e.NeutralStep,
		ScaleStep:    e.ScaleStep,
		ProjectStep:  e.ProjectStep,
	}
}

// #endregion scalar

// #region helpers
func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// #endregion helpers
