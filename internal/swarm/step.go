package swarm

import "github.com/aethermoore/scbe/internal/hyperbolic"

// TrustDenominator scales total incoming suspicion down into the [0, 1]
// trust range used by TrustScore. Calibrated so that an agent flagged by
// several neighbors at once (the quarantine threshold of 3 neighbors at
// suspicion >= 3, i.e. total suspicion ~9) already has a trust score near
// zero.
const TrustDenominator = 10.0

// SigmaIncrement and SigmaDecay bound how quickly an agent's own
// uncertainty reacts to being flagged by its neighbors.
const (
	SigmaIncrement       = 0.05
	SigmaDecay           = 0.02
	FlaggingCountThreshold = 3
)

// SuspicionIncrement and SuspicionDecay bound how quickly one neighbor's
// reported suspicion against another agent moves.
const (
	SuspicionIncrement = 1.0
	SuspicionDecay     = 1.0

	// QuarantineSuspicionThreshold is the per-neighbor suspicion level that
	// counts as "flagging" an agent for quarantine purposes.
	QuarantineSuspicionThreshold = 3.0

	// QuarantineNeighborCount is how many distinct neighbors must each
	// report at least QuarantineSuspicionThreshold before an agent is
	// quarantined.
	QuarantineNeighborCount = 3
)

// UpdateSuspicion re-evaluates the suspicion every other agent in agents
// reports against subject: an anomaly observed from a neighbor's
// perspective (the neighbor as anchor, subject as candidate) increments
// that neighbor's reported suspicion; a calm observation decays it.
func UpdateSuspicion(subject *MixedAgent, neighbors []*MixedAgent) {
	for _, neighbor := range neighbors {
		if neighbor.ID == subject.ID {
			continue
		}
		scores := ScoreCandidate(*neighbor, *subject, 0, 0, 0)
		current := subject.SuspicionFromNeighbor[neighbor.ID]
		if scores.Anomaly {
			subject.SuspicionFromNeighbor[neighbor.ID] = current + SuspicionIncrement
		} else {
			next := current - SuspicionDecay
			if next < 0 {
				next = 0
			}
			subject.SuspicionFromNeighbor[neighbor.ID] = next
		}
	}
}

// TotalIncomingSuspicion sums every neighbor's currently reported
// suspicion against agent.
func TotalIncomingSuspicion(agent *MixedAgent) float64 {
	var total float64
	for _, v := range agent.SuspicionFromNeighbor {
		total += v
	}
	return total
}

// FlaggingNeighborCount counts how many neighbors currently report
// suspicion against agent at or above QuarantineSuspicionThreshold.
func FlaggingNeighborCount(agent *MixedAgent) int {
	count := 0
	for _, v := range agent.SuspicionFromNeighbor {
		if v >= QuarantineSuspicionThreshold {
			count++
		}
	}
	return count
}

// TrustScore is max(0, 1 - totalIncomingSuspicion/TrustDenominator).
func TrustScore(agent *MixedAgent) float64 {
	score := 1.0 - TotalIncomingSuspicion(agent)/TrustDenominator
	if score < 0 {
		return 0
	}
	return score
}

// SwarmStep advances every agent in agents by one tick: each agent sums
// repulsion forces from all others, integrates the result scaled by
// driftRate, reclamps into the ball, updates its own sigma based on how
// often its neighbors are currently flagging it, and is quarantined once
// enough neighbors each report enough suspicion against it.
func SwarmStep(agents []*MixedAgent, driftRate, repulsionStrength float64) {
	for _, subject := range agents {
		UpdateSuspicion(subject, agents)
	}

	// An agent whose position has gone non-finite (NaN/Inf) is flagged as
	// a quarantine candidate and excluded as a force source this step:
	// its corrupt geometry must not be laundered into a valid-looking
	// position via ClampToBall, nor propagated into its neighbors' forces.
	for _, a := range agents {
		if !hyperbolic.IsValid(a.Position) {
			a.QuarantineCandidate = true
		}
	}

	forces := make([]hyperbolic.Point, len(agents))
	for i, a := range agents {
		var sum hyperbolic.Point
		for _, b := range agents {
			if b.ID == a.ID || b.QuarantineCandidate {
				continue
			}
			f := RepulsionForce(*a, *b, repulsionStrength)
			for d := range sum {
				sum[d] += f[d]
			}
		}
		forces[i] = sum
	}

	for i, a := range agents {
		if a.QuarantineCandidate {
			// Skip integration for a corrupt agent: its own position is
			// not trustworthy input to clamp back into the ball.
			continue
		}

		var next hyperbolic.Point
		for d := range next {
			next[d] = a.Position[d] + driftRate*forces[i][d]
		}
		a.Position = hyperbolic.ClampToBall(next)

		if FlaggingNeighborCount(a) > FlaggingCountThreshold {
			a.Sigma += SigmaIncrement
		} else {
			a.Sigma -= SigmaDecay
			if a.Sigma < 0 {
				a.Sigma = 0
			}
		}

		if FlaggingNeighborCount(a) >= QuarantineNeighborCount {
			a.Quarantined = true
		}
	}
}
