package envelope

import (
	"math"

	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region vec
// Dim is the dimensionality of the reference vector domain.
const Dim = 128

// Vec is a fixed-size parameter vector. Value semantics keep the engine's
// purity contract trivial: steps and states are copied, never aliased.
type Vec [Dim]float64

// L2Norm computes the Euclidean norm of v.
func L2Norm(v Vec) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Add returns a + b element-wise.
func Add(a, b Vec) Vec {
	var r Vec
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

// Sub returns a - b element-wise.
func Sub(a, b Vec) Vec {
	var r Vec
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

// Mul returns a * k element-wise.
func Mul(a Vec, k float64) Vec {
	var r Vec
	for i := range r {
		r[i] = a[i] * k
	}
	return r
}

// AllFinite reports whether every component of v is finite.
func AllFinite(v Vec) bool {
	for _, x := range v {
		if !isFinite(x) {
			return false
		}
	}
	return true
}

// #endregion vec

// #region vector-envelope
// Vector is an L2-ball admissible domain over Vec with a sign-preserved
// prefix: the first SignPreserveK components of any admissible state must be
// non-negative (within Eps), and the whole state must satisfy ||S||2 <= Radius.
type Vector struct {
	Radius        float64
	SignPreserveK int
	Eps           float64
}

// DefaultVector returns the envelope used by the loop demo and tests.
func DefaultVector() Vector {
	return Vector{
		Radius:        5.0,
		SignPreserveK: 8,
		Eps:           1e-12,
	}
}

// StateValid reports whether a state (not a transition) lies in the envelope.
func (e Vector) StateValid(s Vec) bool {
	if !AllFinite(s) {
		return false
	}
	n := L2Norm(s)
	if !isFinite(n) || n > e.Radius+e.Eps {
		return false
	}
	for i := 0; i < e.SignPreserveK && i < Dim; i++ {
		if s[i] < -e.Eps {
			return false
		}
	}
	return true
}

// IsAdmissible reports whether s + ds stays inside the envelope. A state
// already outside the envelope admits nothing.
func (e Vector) IsAdmissible(s Vec, ds Vec) bool {
	if !e.StateValid(s) {
		return false
	}
	if !AllFinite(ds) {
		return false
	}
	return e.StateValid(Add(s, ds))
}

// NeutralStep returns the zero vector.
func (e Vector) NeutralStep() Vec {
	return Vec{}
}

// ScaleStep multiplies every component by k, failing on any non-finite result.
func (e Vector) ScaleStep(in Vec, k float64) (Vec, bool) {
	if !isFinite(k) {
		return Vec{}, false
	}
	var out Vec
	for i, x := range in {
		v := x * k
		if !isFinite(v) {
			return Vec{}, false
		}
		out[i] = v
	}
	return out, true
}

// ProjectStep clamps the sign-preserved prefix of the next state to zero
// and radially shrinks it onto the L2 ball, returning the step that reaches
// the projected state.
func (e Vector) ProjectStep(s Vec, in Vec) (Vec, bool) {
	if !e.StateValid(s) || !AllFinite(in) {
		return Vec{}, false
	}

	next := Add(s, in)
	for i := 0; i < e.SignPreserveK && i < Dim; i++ {
		if !isFinite(next[i]) {
			return Vec{}, false
		}
		if next[i] < 0.0 {
			next[i] = 0.0
		}
	}
	if !AllFinite(next) {
		return Vec{}, false
	}

	n := L2Norm(next)
	if !isFinite(n) {
		return Vec{}, false
	}
	if n > e.Radius && n > 0.0 {
		next = Mul(next, e.Radius/n)
	}

	return Sub(next, s), true
}

// Apply is the host transition operator for the plain vector domain.
func (e Vector) Apply(s Vec, ds Vec) Vec {
	return Add(s, ds)
}

// Hooks bundles the domain into an engine capability set.
func (e Vector) Hooks() ase.Hooks[Vec, Vec] {
	return ase.Hooks[Vec, Vec]{
		IsAdmissible: e.IsAdmissible,
		NeutralStep:  e.NeutralStep,
		ScaleStep:    e.ScaleStep,
		ProjectStep:  e.ProjectStep,
	}
}

// #endregion vector-envelope
