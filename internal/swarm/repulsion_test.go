package swarm_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/swarm"
)

func TestRepulsionForcePointsAwayFromTarget(t *testing.T) {
	source := swarm.MixedAgent{Position: hyperbolic.Point{0.1, 0, 0}, Phase: swarm.KnownPhase(0)}
	target := swarm.MixedAgent{Position: hyperbolic.Point{-0.1, 0, 0}, Phase: swarm.KnownPhase(0)}

	force := swarm.RepulsionForce(source, target, 1.0)
	if force[0] <= 0 {
		t.Fatalf("expected a positive x-force pushing source away from target, got %v", force)
	}
}

func TestRepulsionForceAmplifiedByUnknownPhase(t *testing.T) {
	source := swarm.MixedAgent{Position: hyperbolic.Point{0.1, 0, 0}, Phase: swarm.KnownPhase(0)}
	knownTarget := swarm.MixedAgent{Position: hyperbolic.Point{-0.1, 0, 0}, Phase: swarm.KnownPhase(0)}
	unknownTarget := swarm.MixedAgent{Position: hyperbolic.Point{-0.1, 0, 0}, Phase: swarm.UnknownPhase}

	knownForce := swarm.RepulsionForce(source, knownTarget, 1.0)
	unknownForce := swarm.RepulsionForce(source, unknownTarget, 1.0)
	if unknownForce[0] <= knownForce[0] {
		t.Fatalf("expected an unknown-phase target to produce a stronger repulsion: known=%v unknown=%v", knownForce[0], unknownForce[0])
	}
}

func TestRepulsionForceAmplifiedByQuarantinedTarget(t *testing.T) {
	source := swarm.MixedAgent{Position: hyperbolic.Point{0.1, 0, 0}, Phase: swarm.KnownPhase(0)}
	normalTarget := swarm.MixedAgent{Position: hyperbolic.Point{-0.1, 0, 0}, Phase: swarm.KnownPhase(0)}
	quarantinedTarget := normalTarget
	quarantinedTarget.Quarantined = true

	normalForce := swarm.RepulsionForce(source, normalTarget, 1.0)
	quarantinedForce := swarm.RepulsionForce(source, quarantinedTarget, 1.0)
	if quarantinedForce[0] <= normalForce[0] {
		t.Fatalf("expected a quarantined target to produce a stronger repulsion: normal=%v quarantined=%v", normalForce[0], quarantinedForce[0])
	}
}
