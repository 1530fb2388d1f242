package swarm_test

import (
	"math"
	"testing"

	"github.com/aethermoore/scbe/internal/aetherlex"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/swarm"
)

func TestTrustScoreDecreasesWithSuspicion(t *testing.T) {
	agent := swarm.NewMixedAgent("a1", hyperbolic.Point{}, swarm.KnownPhase(0))
	if got := swarm.TrustScore(agent); got != 1.0 {
		t.Fatalf("expected trust 1.0 with no suspicion, got %v", got)
	}

	agent.SuspicionFromNeighbor["n1"] = 5
	agent.SuspicionFromNeighbor["n2"] = 5
	if got := swarm.TrustScore(agent); got >= 1.0 {
		t.Fatalf("expected trust to drop below 1.0 with reported suspicion, got %v", got)
	}
}

func TestUpdateSuspicionIncrementsOnAnomalyAndDecaysOnCalm(t *testing.T) {
	subject := swarm.NewMixedAgent("subject", hyperbolic.Point{0.2, 0, 0}, swarm.UnknownPhase)
	neighbor := swarm.NewMixedAgent("neighbor", hyperbolic.Point{0, 0, 0}, swarm.KnownPhase(0))

	swarm.UpdateSuspicion(subject, []*swarm.MixedAgent{neighbor})
	if subject.SuspicionFromNeighbor["neighbor"] <= 0 {
		t.Fatal("expected suspicion to increment for an anomalous (unknown-phase) subject")
	}

	subject.Phase = swarm.KnownPhase(0)
	before := subject.SuspicionFromNeighbor["neighbor"]
	swarm.UpdateSuspicion(subject, []*swarm.MixedAgent{neighbor})
	if subject.SuspicionFromNeighbor["neighbor"] >= before {
		t.Fatalf("expected suspicion to decay once the subject is calm: before=%v after=%v", before, subject.SuspicionFromNeighbor["neighbor"])
	}
}

// TestSwarmStepQuarantinesRogueAgent mirrors the S8 scenario: a ring of
// six agents, one per tongue, with a rogue agent injected near the
// centroid with an unknown phase and high sigma. After enough swarm steps
// the rogue agent is quarantined and pushed toward the ball boundary.
func TestSwarmStepQuarantinesRogueAgent(t *testing.T) {
	offsets := make([]float64, len(aetherlex.TongueOrder))
	for i, tongue := range aetherlex.TongueOrder {
		offsets[i] = aetherlex.PhaseOffsetDegrees(tongue)
	}
	positions := hyperbolic.Ring(offsets)

	agents := make([]*swarm.MixedAgent, 0, len(positions)+1)
	for i, pos := range positions {
		agents = append(agents, swarm.NewMixedAgent(
			string(aetherlex.TongueOrder[i]),
			pos,
			swarm.KnownPhase(offsets[i]),
		))
	}

	rogue := swarm.NewMixedAgent("rogue", hyperbolic.Point{0.01, 0.01, 0}, swarm.UnknownPhase)
	rogue.Sigma = 1.2
	rogue.Coherence = 0.1
	agents = append(agents, rogue)

	for step := 0; step < 20; step++ {
		swarm.SwarmStep(agents, 0.05, 1.0)
	}

	if !rogue.Quarantined {
		t.Fatal("expected the rogue agent to be quarantined after 20 swarm steps")
	}
	if got := hyperbolic.Norm(rogue.Position); got < 0.3 {
		t.Fatalf("expected the rogue agent's position norm to approach the clamp bound, got %v", got)
	}
}

// TestSwarmStepIsolatesNaNPosition covers the documented NaN failure
// semantic: an agent whose position has gone non-finite is flagged as a
// quarantine candidate, its own position is left untouched (never
// laundered back into the ball by ClampToBall), and its force
// contribution is excluded from every other agent's integration this step.
func TestSwarmStepIsolatesNaNPosition(t *testing.T) {
	healthy := swarm.NewMixedAgent("healthy", hyperbolic.Point{0.4, 0, 0}, swarm.KnownPhase(0))
	corrupt := swarm.NewMixedAgent("corrupt", hyperbolic.Point{math.NaN(), 0, 0}, swarm.KnownPhase(180))

	agents := []*swarm.MixedAgent{healthy, corrupt}
	swarm.SwarmStep(agents, 0.05, 1.0)

	if !corrupt.QuarantineCandidate {
		t.Fatal("expected the NaN-positioned agent to be flagged as a quarantine candidate")
	}
	if hyperbolic.IsValid(corrupt.Position) {
		t.Fatal("expected the corrupt agent's NaN position to be left as-is, not reclamped")
	}
	if !hyperbolic.IsValid(healthy.Position) {
		t.Fatal("expected the healthy agent's position to remain finite")
	}
	if math.IsNaN(healthy.Position[0]) {
		t.Fatal("expected the corrupt agent's force contribution to be excluded, not NaN-poison the healthy agent")
	}
}
