package swarm

import "github.com/aethermoore/scbe/internal/hyperbolic"

const (
	// repulsionEpsilon keeps the (d_H + eps) denominator from dividing by
	// zero when two agents coincide.
	repulsionEpsilon = 1e-6

	// nearDistanceThreshold is how close (in hyperbolic distance) a target
	// must be for the "near and large phase deviation" v1 rule to apply.
	nearDistanceThreshold = 0.3

	// largePhaseDeviationThreshold is the deviation above which a nearby
	// target is considered to have a "large" phase deviation.
	largePhaseDeviationThreshold = 0.5
)

// v1Amplification computes the phase-rule amplification for a repulsion
// from source away from target: an unknown target phase is the strongest
// signal (2.0x); a nearby target with a large phase deviation gets 1.5+dev;
// otherwise no amplification (1.0). A quarantined target always multiplies
// whatever base amplification applies by 1.5.
func v1Amplification(distance float64, source, target Phase, targetQuarantined bool) float64 {
	base := 1.0
	switch {
	case !target.Known:
		base = 2.0
	default:
		deviation := PhaseDeviation(source, target)
		if distance < nearDistanceThreshold && deviation > largePhaseDeviationThreshold {
			base = 1.5 + deviation
		}
	}
	if targetQuarantined {
		base *= 1.5
	}
	return base
}

// v2Additions computes the additive uncertainty-rule contribution: a
// target with sigma > 0.5 adds +0.5, and a fused anomaly observed from a
// valid-phase source adds +0.25.
func v2Additions(targetSigma float64, sourceHasValidPhase, fusedAnomaly bool) float64 {
	var add float64
	if targetSigma > 0.5 {
		add += 0.5
	}
	if sourceHasValidPhase && fusedAnomaly {
		add += 0.25
	}
	return add
}

// RepulsionForce computes the force exerted on source by target: direction
// (source.pos - target.pos), scaled by strength/(d_H + eps), amplified by
// the combined v1 phase rules and v2 uncertainty rules.
func RepulsionForce(source, target MixedAgent, strength float64) hyperbolic.Point {
	distance := hyperbolic.HyperbolicDistance(source.Position, target.Position)

	scores := ScoreCandidate(source, target, 0, 0, 0)
	amplification := v1Amplification(distance, source.Phase, target.Phase, target.Quarantined) +
		v2Additions(target.Sigma, source.Phase.Known, scores.Anomaly)

	magnitude := strength / (distance + repulsionEpsilon)

	var direction hyperbolic.Point
	for i := range direction {
		direction[i] = source.Position[i] - target.Position[i]
	}

	var force hyperbolic.Point
	for i := range force {
		force[i] = direction[i] * magnitude * amplification
	}
	return force
}
