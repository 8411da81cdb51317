package decisionlog

import "time"

// #region run-record
// RunRecord describes one recorded enforcement run: which domain and engine
// configuration produced the decision stream, and the seed that makes the
// proposal stream reproducible.
type RunRecord struct {
	RunID            string
	Domain           string // "scalar" | "vector" | "optimizer"
	Mode             string
	MaxScaleAttempts int
	ScaleFactor      float64
	Seed             int64
	StartState       string // exact scalar start state, empty for vector runs
	CreatedAt        time.Time
}

// #endregion run-record

// #region decision-entry
// DecisionEntry is a single row in the decisions table. Proposed and
// Effective hold exact textual float encodings so scalar runs replay
// bit-identically; the norm columns exist for inspection queries.
type DecisionEntry struct {
	RunID         string
	Turn          int
	State         string // exact scalar state before the turn, empty for vector runs
	Proposed      string
	Effective     string
	StateNorm     float64
	ProposedNorm  float64
	EffectiveNorm float64
	Outcome       string // "pass" | "adjusted" | "neutral"
	AuditOK       bool
	CreatedAt     time.Time
}

// #endregion decision-entry
