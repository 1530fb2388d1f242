// Package swarm implements the mixed-geometry agent model and fused trust
// scoring (spec §4.7): three independent scores per (anchor, candidate)
// pair fused into a trust decision, a repulsion-force swarm dynamic, and
// per-neighbor suspicion accounting that can quarantine an agent.
//
// Grounded on escalation/severity.go's weighted-sum fusion + threshold
// classifier shape, and internal/gossip/quorum.go's TTL-windowed per-key
// observation counting, reused here as per-neighbor suspicion counting.
package swarm

import "github.com/aethermoore/scbe/internal/hyperbolic"

// Phase is a tagged variant: an agent's phase is either Known (carrying an
// angle in degrees) or Unknown.
type Phase struct {
	Known        bool
	AngleDegrees float64
}

// KnownPhase constructs a Phase with the given angle.
func KnownPhase(angleDegrees float64) Phase {
	return Phase{Known: true, AngleDegrees: angleDegrees}
}

// UnknownPhase is the zero-information phase variant.
var UnknownPhase = Phase{Known: false}

// MixedAgent is one participant in the swarm: its position in the
// Poincaré ball, its phase, its own uncertainty (sigma), its coherence,
// and the suspicion each neighbor currently reports against it.
type MixedAgent struct {
	ID        string
	Position  hyperbolic.Point
	Phase     Phase
	Sigma     float64
	Coherence float64
	Quarantined bool

	// QuarantineCandidate is set when a swarm step observes this agent
	// holding a non-finite (NaN/Inf) position. It does not by itself
	// quarantine the agent (see rogue.Evaluate/Classify for that
	// decision) but records that this agent's geometry was corrupt and
	// its force contribution was skipped for that step.
	QuarantineCandidate bool

	// SuspicionFromNeighbor maps a reporting neighbor's ID to the
	// suspicion count that neighbor currently reports against this agent.
	SuspicionFromNeighbor map[string]float64
}

// NewMixedAgent returns an agent with an initialized suspicion map.
func NewMixedAgent(id string, position hyperbolic.Point, phase Phase) *MixedAgent {
	return &MixedAgent{
		ID:                    id,
		Position:              position,
		Phase:                 phase,
		Coherence:             1.0,
		SuspicionFromNeighbor: make(map[string]float64),
	}
}

// Default fused-trust weights (spec §4.7).
const (
	DefaultWeightH = 0.4
	DefaultWeightS = 0.35
	DefaultWeightG = 0.25
)

// Action is the outcome of the fused trust classifier.
type Action string

const (
	ActionAllow      Action = "ALLOW"
	ActionQuarantine Action = "QUARANTINE"
	ActionDeny       Action = "DENY"
)

// Scores is the three independent (anchor, candidate) scores and their
// fused trust value.
type Scores struct {
	SH      float64
	SS      float64
	SG      float64
	Trust   float64
	Anomaly bool
	Action  Action
}

// PhaseDeviation returns the normalized phase deviation of target relative
// to source, in [0, 1]. An unknown target phase is maximum deviation (1).
func PhaseDeviation(source, target Phase) float64 {
	if !target.Known {
		return 1.0
	}
	diff := source.AngleDegrees - target.AngleDegrees
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	if diff < 0 {
		diff = -diff
	}
	return diff / 180.0
}

// ScoreCandidate computes the three independent scores (sH, sS, sG), fuses
// them into a trust value using weights (defaulting to DefaultWeight* when
// all three are zero), classifies the resulting action, and sets the
// anomaly flag.
func ScoreCandidate(anchor, candidate MixedAgent, weightH, weightS, weightG float64) Scores {
	if weightH == 0 && weightS == 0 && weightG == 0 {
		weightH, weightS, weightG = DefaultWeightH, DefaultWeightS, DefaultWeightG
	}

	distance := hyperbolic.HyperbolicDistance(anchor.Position, candidate.Position)
	sH := 1.0 / (1.0 + distance)

	deviation := PhaseDeviation(anchor.Phase, candidate.Phase)
	sS := 1.0 - deviation

	sG := 1.0 / (1.0 + candidate.Sigma)

	trust := weightH*sH + weightS*sS + weightG*sG
	anomaly := sS < 0.5 || sG < 0.5

	var action Action
	switch {
	case trust >= 0.7:
		action = ActionAllow
	case trust >= 0.3:
		action = ActionQuarantine
	default:
		action = ActionDeny
	}

	return Scores{SH: sH, SS: sS, SG: sG, Trust: trust, Anomaly: anomaly, Action: action}
}
