package envelope

import (
	"math"

	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region opt-state
// OptState couples parameters with optimizer bookkeeping. The gated proposal
// is a parameter step dTheta; m/v/ema/step are derived deterministically from
// (S, dThetaEff) by the transition operator, which makes the zero step a true
// fail-closed no-op for the parameters while the filters keep ticking.
type OptState struct {
	Theta Vec
	M     Vec
	V     Vec
	EMA   Vec
	Step  uint64
}

// #endregion opt-state

// #region optimizer-envelope
// Optimizer bounds the NEXT optimizer state reachable from (S, dTheta):
// radii on theta/m/v/ema, a cap on the ema-theta gap, an infinity-norm cap on
// the effective step itself, and the sign-preserved prefix on theta.
type Optimizer struct {
	RTheta float64
	RM     float64
	RV     float64
	REMA   float64
	RGap   float64 // ||ema' - theta'||2
	RDInf  float64 // ||dTheta||inf

	SignPreserveK int
	Eps           float64

	// Filter coefficients for the derived transition.
	B1   float64
	B2   float64
	Beta float64
}

// DefaultOptimizer returns the bounds and filters used by the loop demo.
func DefaultOptimizer() Optimizer {
	return Optimizer{
		RTheta:        5.0,
		RM:            10.0,
		RV:            10.0,
		REMA:          5.0,
		RGap:          2.0,
		RDInf:         0.25,
		SignPreserveK: 8,
		Eps:           1e-12,
		B1:            0.9,
		B2:            0.999,
		Beta:          0.99,
	}
}

// Apply is the host transition operator:
//
//	theta' = theta + d
//	m'     = b1*m + (1-b1)*d
//	v'     = b2*v + (1-b2)*d^2
//	ema'   = beta*ema + (1-beta)*theta'
//	step'  = step + 1
func (e Optimizer) Apply(s OptState, d Vec) OptState {
	var next OptState
	for i := 0; i < Dim; i++ {
		next.Theta[i] = s.Theta[i] + d[i]
		next.M[i] = e.B1*s.M[i] + (1.0-e.B1)*d[i]
		next.V[i] = e.B2*s.V[i] + (1.0-e.B2)*d[i]*d[i]
		next.EMA[i] = e.Beta*s.EMA[i] + (1.0-e.Beta)*next.Theta[i]
	}
	next.Step = s.Step + 1
	return next
}

// StateValid checks the bounds that apply to a standalone state.
func (e Optimizer) StateValid(s OptState) bool {
	for _, v := range []Vec{s.Theta, s.M, s.V, s.EMA} {
		if !AllFinite(v) {
			return false
		}
	}
	if L2Norm(s.Theta) > e.RTheta+e.Eps {
		return false
	}
	if L2Norm(s.M) > e.RM+e.Eps {
		return false
	}
	if L2Norm(s.V) > e.RV+e.Eps {
		return false
	}
	if L2Norm(s.EMA) > e.REMA+e.Eps {
		return false
	}
	if L2Norm(Sub(s.EMA, s.Theta)) > e.RGap+e.Eps {
		return false
	}
	for i := 0; i < e.SignPreserveK && i < Dim; i++ {
		if s.Theta[i] < -e.Eps {
			return false
		}
	}
	return true
}

// IsAdmissible bounds the step itself and the full derived next state.
func (e Optimizer) IsAdmissible(s OptState, d Vec) bool {
	if !e.StateValid(s) {
		return false
	}
	if !AllFinite(d) {
		return false
	}
	for _, x := range d {
		if math.Abs(x) > e.RDInf+e.Eps {
			return false
		}
	}
	return e.StateValid(e.Apply(s, d))
}

// NeutralStep returns the zero parameter step.
func (e Optimizer) NeutralStep() Vec {
	return Vec{}
}

// ScaleStep multiplies the parameter step by k.
func (e Optimizer) ScaleStep(in Vec, k float64) (Vec, bool) {
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

// ProjectStep clamps the step to the infinity-norm cap, then clamps the next
// theta's sign-preserved prefix and radially shrinks next theta onto its
// ball, returning the resulting step. The remaining bounds (m/v/ema/gap) are
// left to the engine's verification pass; projections that still violate
// them resolve to neutral there.
func (e Optimizer) ProjectStep(s OptState, in Vec) (Vec, bool) {
	if !e.StateValid(s) || !AllFinite(in) {
		return Vec{}, false
	}

	d := in
	for i, x := range d {
		if x > e.RDInf {
			d[i] = e.RDInf
		} else if x < -e.RDInf {
			d[i] = -e.RDInf
		}
	}

	next := Add(s.Theta, d)
	for i := 0; i < e.SignPreserveK && i < Dim; i++ {
		if next[i] < 0.0 {
			next[i] = 0.0
		}
	}
	n := L2Norm(next)
	if !isFinite(n) {
		return Vec{}, false
	}
	if n > e.RTheta && n > 0.0 {
		next = Mul(next, e.RTheta/n)
	}

	return Sub(next, s.Theta), true
}

// Hooks bundles the domain into an engine capability set.
func (e Optimizer) Hooks() ase.Hooks[OptState, Vec] {
	return ase.Hooks[OptState, Vec]{
		IsAdmissible: e.IsAdmissible,
		NeutralStep:  e.NeutralStep,
		ScaleStep:    e.ScaleStep,
		ProjectStep:  e.ProjectStep,
	}
}

// #endregion optimizer-envelope
