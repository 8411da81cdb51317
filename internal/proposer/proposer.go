// Package proposer generates deterministic streams of proposed steps for
// demos, fixtures and replay. Identical seed and config produce an identical
// proposal stream, which is what makes recorded runs bit-replayable.
package proposer

import (
	"math"
	"math/rand"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
)

// #region config

// Config holds tuning knobs for proposal generation.
type Config struct {
	Eta       float64 // contraction rate toward zero
	NoiseStd  float64 // gaussian noise added per component
	SpikeProb float64 // probability of a large adversarial spike per turn
	SpikeMag  float64 // spike magnitude multiplier
	NaNProb   float64 // probability of injecting a NaN component per turn
	Seed      int64
}

// DefaultConfig returns the knobs used by the loop demo.
func DefaultConfig() Config {
	return Config{
		Eta:       0.1,
		NoiseStd:  0.02,
		SpikeProb: 0.05,
		SpikeMag:  50.0,
		NaNProb:   0.02,
		Seed:      1,
	}
}

// #endregion config

// #region proposer

// Proposer emits proposed steps from a seeded generator. Not safe for
// concurrent use; each loop owns its own Proposer.
type Proposer struct {
	config Config
	rng    *rand.Rand
}

// New creates a Proposer with its own deterministic source.
func New(config Config) *Proposer {
	return &Proposer{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// #endregion proposer

// #region propose

// ProposeVec emits a contraction-plus-noise step toward zero from the current
// state, with occasional spikes and NaN injections per the config. The step
// is a raw proposal: nothing here guarantees admissibility.
func (p *Proposer) ProposeVec(state envelope.Vec) envelope.Vec {
	var d envelope.Vec
	for i := range d {
		d[i] = -p.config.Eta*state[i] + p.rng.NormFloat64()*p.config.NoiseStd
	}

	if p.rng.Float64() < p.config.SpikeProb {
		idx := p.rng.Intn(envelope.Dim)
		d[idx] += p.config.SpikeMag * p.config.NoiseStd * signOf(p.rng.Float64()-0.5)
	}

	if p.rng.Float64() < p.config.NaNProb {
		idx := p.rng.Intn(envelope.Dim)
		d[idx] = math.NaN()
	}

	return d
}

// ProposeScalar emits a contraction-plus-noise scalar step with the same
// spike and NaN behavior as ProposeVec.
func (p *Proposer) ProposeScalar(state float64) float64 {
	d := -p.config.Eta*state + p.rng.NormFloat64()*p.config.NoiseStd

	if p.rng.Float64() < p.config.SpikeProb {
		d += p.config.SpikeMag * p.config.NoiseStd * signOf(p.rng.Float64()-0.5)
	}

	if p.rng.Float64() < p.config.NaNProb {
		d = math.NaN()
	}

	return d
}

// #endregion propose

// #region helpers

func signOf(x float64) float64 {
	if x < 0 {
		return -1.0
	}
	return 1.0
}

// #endregion helpers
