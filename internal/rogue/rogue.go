// Package rogue implements the rogue detector and quarantine action (spec
// §4.13): a multi-indicator rogue score per agent, a three-tier action
// classifier, and the quarantine state transition.
//
// Grounded on internal/escalation/severity.go's weighted-sum-then-
// threshold-table shape, reused here with the indicator set spec §4.13
// names instead of the teacher's anomaly/quorum/integrity/pressure inputs.
package rogue

import (
	"github.com/aethermoore/scbe/internal/agent"
	"github.com/aethermoore/scbe/internal/hyperbolic"
)

// Indicator weights (spec §4.13).
const (
	WeightLowCoherence      = 0.30
	WeightFarFromCentroid   = 0.25
	WeightPositionDeviation = 0.20
	WeightDegraded          = 0.15
	WeightQuarantined       = 0.40
	WeightBelowHalfMean     = 0.10
)

// Indicator thresholds not otherwise given numeric values by spec §4.13.
const (
	// LowCoherenceThreshold is the coherence level below which the
	// "low coherence" indicator fires.
	LowCoherenceThreshold = 0.5

	// CentroidDistanceThreshold is the hyperbolic distance from the swarm
	// centroid beyond which the "far from centroid" indicator fires.
	CentroidDistanceThreshold = 2.0

	// PositionDeviationThreshold is the hyperbolic distance from an
	// agent's expected (formation) position beyond which the "deviated
	// from expected position" indicator fires.
	PositionDeviationThreshold = 0.15
)

// Recommendation classifier thresholds (spec §4.13).
const (
	TerminateThreshold  = 0.9
	QuarantineThreshold = 0.8
	MonitorThreshold    = 0.4
)

// Recommendation is the rogue detector's recommended action.
type Recommendation string

const (
	RecommendNone       Recommendation = "none"
	RecommendMonitor    Recommendation = "monitor"
	RecommendQuarantine Recommendation = "quarantine"
	RecommendTerminate  Recommendation = "terminate"
)

// Indicators is the boolean readout of every rogue indicator for one
// agent, in one evaluation.
type Indicators struct {
	LowCoherence        bool
	FarFromCentroid     bool
	PositionDeviated    bool
	Degraded            bool
	Quarantined         bool
	BelowHalfSwarmMean  bool
}

// Score sums the weighted indicators and clamps the result to [0, 1].
func Score(ind Indicators) float64 {
	var s float64
	if ind.LowCoherence {
		s += WeightLowCoherence
	}
	if ind.FarFromCentroid {
		s += WeightFarFromCentroid
	}
	if ind.PositionDeviated {
		s += WeightPositionDeviation
	}
	if ind.Degraded {
		s += WeightDegraded
	}
	if ind.Quarantined {
		s += WeightQuarantined
	}
	if ind.BelowHalfSwarmMean {
		s += WeightBelowHalfMean
	}
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

// Classify maps a rogue score to its recommended action.
func Classify(score float64) Recommendation {
	switch {
	case score >= TerminateThreshold:
		return RecommendTerminate
	case score >= QuarantineThreshold:
		return RecommendQuarantine
	case score >= MonitorThreshold:
		return RecommendMonitor
	default:
		return RecommendNone
	}
}

// EvaluateIndicators derives the indicator set for a from its own state
// plus the swarm-level context: the current centroid, its formation's
// expected position, and the swarm's mean coherence.
func EvaluateIndicators(a *agent.Agent, centroid, expectedPosition hyperbolic.Point, swarmMeanCoherence float64) Indicators {
	return Indicators{
		LowCoherence:       a.Coherence < LowCoherenceThreshold,
		FarFromCentroid:    hyperbolic.HyperbolicDistance(a.Position, centroid) > CentroidDistanceThreshold,
		PositionDeviated:   hyperbolic.HyperbolicDistance(a.Position, expectedPosition) > PositionDeviationThreshold,
		Degraded:           a.Status == agent.StatusDegraded,
		Quarantined:        a.Status == agent.StatusQuarantine,
		BelowHalfSwarmMean: a.Coherence < swarmMeanCoherence/2,
	}
}

// Evaluate scores a and returns its recommended action alongside the
// indicator readout that produced it.
func Evaluate(a *agent.Agent, centroid, expectedPosition hyperbolic.Point, swarmMeanCoherence float64) (float64, Recommendation, Indicators) {
	ind := EvaluateIndicators(a, centroid, expectedPosition, swarmMeanCoherence)
	score := Score(ind)
	return score, Classify(score), ind
}

// Quarantine applies the quarantine state transition to a: status becomes
// quarantine, coherence drops to 0, position resets to the origin.
// Idempotent — applying it twice is the same as applying it once.
func Quarantine(a *agent.Agent) {
	a.Quarantine()
}
