package agent

import (
	"testing"

	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/swarm"
)

func newTestMixedAgent(t *testing.T) *swarm.MixedAgent {
	t.Helper()
	return swarm.NewMixedAgent("agent-1", hyperbolic.Point{0.1, 0.2, 0.1}, swarm.KnownPhase(60))
}

func TestQuarantineInvariants(t *testing.T) {
	a := &Agent{MixedAgent: newTestMixedAgent(t)}
	a.Coherence = 0.77
	a.Quarantine()

	if a.Status != StatusQuarantine {
		t.Fatalf("Status = %v, want StatusQuarantine", a.Status)
	}
	if a.Coherence != 0 {
		t.Fatalf("Coherence = %v, want 0", a.Coherence)
	}
	if norm := hyperbolicNorm(a.Position); norm != 0 {
		t.Fatalf("Position norm = %v, want 0", norm)
	}

	// Idempotent.
	a.Quarantine()
	if a.Coherence != 0 || a.Status != StatusQuarantine {
		t.Fatalf("second Quarantine() changed state: %+v", a)
	}
}

func TestHeartbeatMonotone(t *testing.T) {
	a := &Agent{MixedAgent: newTestMixedAgent(t)}
	a.Heartbeat(100)
	a.Heartbeat(50) // must not move backwards
	if a.LastHeartbeatMono != 100 {
		t.Fatalf("LastHeartbeatMono = %d, want 100", a.LastHeartbeatMono)
	}
	a.Heartbeat(150)
	if a.LastHeartbeatMono != 150 {
		t.Fatalf("LastHeartbeatMono = %d, want 150", a.LastHeartbeatMono)
	}
}

func TestNonceSetRejectsReplay(t *testing.T) {
	n := NewNonceSet(4)
	if !n.Consume("a") {
		t.Fatal("first consume of a new nonce should succeed")
	}
	if n.Consume("a") {
		t.Fatal("second consume of the same nonce must be rejected")
	}
}

func TestNonceSetPrunesOldest(t *testing.T) {
	n := NewNonceSet(2)
	n.Consume("a")
	n.Consume("b")
	n.Consume("c") // evicts "a"

	if !n.Consume("a") {
		t.Fatal("evicted nonce 'a' should be consumable again")
	}
	if n.Len() > 2 {
		t.Fatalf("Len() = %d, want <= 2", n.Len())
	}
}

func TestMonitorMarksOffline(t *testing.T) {
	a := &Agent{MixedAgent: newTestMixedAgent(t), Status: StatusActive, LastHeartbeatMono: 0}
	mon := NewMonitor(100)
	mon.Watch(a)

	var notified string
	mon.Sweep(50, func(id string) { notified = id })
	if a.Status != StatusActive {
		t.Fatalf("agent marked offline too early: %v", a.Status)
	}

	mon.Sweep(200, func(id string) { notified = id })
	if a.Status != StatusOffline {
		t.Fatalf("Status = %v, want StatusOffline", a.Status)
	}
	if notified != a.ID {
		t.Fatalf("callback invoked with %q, want %q", notified, a.ID)
	}
}

func hyperbolicNorm(p [3]float64) float64 {
	var sum float64
	for _, c := range p {
		sum += c * c
	}
	if sum == 0 {
		return 0
	}
	return sum // any nonzero marks a non-origin position for this test
}
