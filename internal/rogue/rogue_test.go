package rogue

import (
	"testing"

	"github.com/aethermoore/scbe/internal/agent"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/swarm"
)

func newAgent(t *testing.T, coherence float64, status agent.Status, pos hyperbolic.Point) *agent.Agent {
	t.Helper()
	mixed := swarm.NewMixedAgent("rogue-1", pos, swarm.UnknownPhase)
	mixed.Coherence = coherence
	return &agent.Agent{MixedAgent: mixed, Status: status}
}

func TestScoreClampedAndWeighted(t *testing.T) {
	all := Indicators{
		LowCoherence: true, FarFromCentroid: true, PositionDeviated: true,
		Degraded: true, Quarantined: true, BelowHalfSwarmMean: true,
	}
	// 0.30+0.25+0.20+0.15+0.40+0.10 = 1.40, clamped to 1.0.
	if got := Score(all); got != 1.0 {
		t.Fatalf("Score(all) = %v, want 1.0", got)
	}

	none := Indicators{}
	if got := Score(none); got != 0 {
		t.Fatalf("Score(none) = %v, want 0", got)
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Recommendation
	}{
		{0.95, RecommendTerminate},
		{0.9, RecommendTerminate},
		{0.85, RecommendQuarantine},
		{0.8, RecommendQuarantine},
		{0.5, RecommendMonitor},
		{0.4, RecommendMonitor},
		{0.1, RecommendNone},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Errorf("Classify(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestEvaluateS8Scenario(t *testing.T) {
	// An injected agent with unknown phase, high sigma, low coherence near
	// the centroid fires all four indicators: 0.30+0.20+0.15+0.10 = 0.75,
	// which falls in the monitor band (>= 0.4, < 0.8).
	centroid := hyperbolic.Point{0, 0, 0}
	expected := hyperbolic.Point{0.5, 0, 0}
	a := newAgent(t, 0.1, agent.StatusDegraded, hyperbolic.Point{0.05, 0.05, 0})

	score, rec, ind := Evaluate(a, centroid, expected, 0.8)
	if !ind.LowCoherence {
		t.Fatal("expected LowCoherence indicator to fire")
	}
	if !ind.Degraded {
		t.Fatal("expected Degraded indicator to fire")
	}
	if !ind.BelowHalfSwarmMean {
		t.Fatal("expected BelowHalfSwarmMean indicator to fire (0.1 < 0.4)")
	}
	if !ind.PositionDeviated {
		t.Fatal("expected PositionDeviated indicator to fire (far from ring slot)")
	}
	wantScore := WeightLowCoherence + WeightPositionDeviation + WeightDegraded + WeightBelowHalfMean
	if score != wantScore {
		t.Fatalf("score = %v, want %v", score, wantScore)
	}
	if rec != RecommendMonitor {
		t.Fatalf("recommendation = %v, want %v for score %v", rec, RecommendMonitor, score)
	}
}

func TestQuarantineIdempotent(t *testing.T) {
	a := newAgent(t, 0.9, agent.StatusActive, hyperbolic.Point{0.3, 0.1, 0})
	Quarantine(a)
	first := *a.MixedAgent
	firstStatus := a.Status
	Quarantine(a)

	if a.Status != firstStatus {
		t.Fatalf("status changed on second quarantine: %v vs %v", a.Status, firstStatus)
	}
	if a.Position != first.Position || a.Coherence != first.Coherence {
		t.Fatalf("quarantine is not idempotent: %+v vs %+v", a.MixedAgent, first)
	}
}
