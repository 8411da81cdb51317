package ase

// #region mode
// Mode selects the enforcement strategy applied when a proposed step is
// inadmissible. Pass-through of admissible proposals happens in every mode.
type Mode uint8

const (
	// ModeReject returns the neutral step for any inadmissible proposal.
	ModeReject Mode = iota
	// ModeScale searches for an admissible k*proposed by geometric shrinkage.
	ModeScale
	// ModeProject asks the host to project the proposal once, then verifies.
	ModeProject
)

// String returns the mode name for logs and provenance rows.
func (m Mode) String() string {
	switch m {
	case ModeReject:
		return "reject"
	case ModeScale:
		return "scale"
	case ModeProject:
		return "project"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name back to its Mode value.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "reject":
		return ModeReject, true
	case "scale":
		return ModeScale, true
	case "project":
		return ModeProject, true
	default:
		return ModeReject, false
	}
}

// #endregion mode

// #region config
// Config fixes the enforcement strategy and the Scale-mode bounds for the
// lifetime of an Engine. MaxScaleAttempts is a hard upper bound on work:
// Scale mode performs at most that many scale/admissibility rounds.
// ScaleFactor is meaningful only in Scale mode and is expected in (0, 1);
// values outside that range are not rejected here — they degrade to
// attempts exhaustion, never to non-termination.
type Config struct {
	Mode             Mode
	MaxScaleAttempts int
	ScaleFactor      float64
}

// DefaultConfig returns the reference defaults: Reject mode with the
// Scale-mode bounds preset to 16 attempts at factor 0.5.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeReject,
		MaxScaleAttempts: 16,
		ScaleFactor:      0.5,
	}
}

// #endregion config
