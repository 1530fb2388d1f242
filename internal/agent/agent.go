// Package agent implements the mixed-geometry agent's full lifecycle
// (spec §4.14): init -> active (heartbeat + coherence decay) -> shutdown,
// plus the peer monitor that marks silent agents offline. The geometric
// and fused-trust state (spec §4.7) is owned by internal/swarm; this
// package wraps it with the identity, key material, status machine, and
// timers spec §3's MixedAgent entity additionally carries.
//
// Grounded on internal/kernel/events.go's ticker-driven goroutine with
// ctx-cancellation shape (its BPF-reading half is dropped, see DESIGN.md;
// the ticker/shutdown-token shape is kept), and
// internal/escalation/pressure.go's accumulator-with-Reset() shape for
// coherence decay.
package agent

import (
	"time"

	"github.com/aethermoore/scbe/internal/aetherlex"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/swarm"
)

// Status is one of the five lifecycle states a MixedAgent entity can be in.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusActive       Status = "active"
	StatusDegraded     Status = "degraded"
	StatusOffline      Status = "offline"
	StatusQuarantine   Status = "quarantine"
)

// Default timing parameters (spec §6 "Environment / configuration").
const (
	DefaultHeartbeatInterval  = 5 * time.Second
	DefaultAgentTimeout       = 15 * time.Second
	DefaultCoherenceDecayRate = 0.001 // per second
)

// KeyPair is the PQC public/secret key pair an agent owns exclusively.
type KeyPair struct {
	Algorithm string
	PublicKey []byte
	SecretKey []byte
}

// Agent is one participant in the swarm: its geometric/fused-trust state
// (embedded from swarm.MixedAgent), its tongue identity and derived
// golden-ratio weight, its lifecycle status, its exclusively-owned key
// pair and nonce set, and the bookkeeping the monitor needs.
type Agent struct {
	*swarm.MixedAgent

	Tongue    aetherlex.Tongue
	Weight    float64
	Status    Status
	Keys      KeyPair
	Nonces    *NonceSet
	CreatedAt time.Time

	// LastHeartbeatMono is monotone non-decreasing for this agent (spec
	// §3): Heartbeat refuses to move it backwards.
	LastHeartbeatMono uint64
}

// Heartbeat records a liveness signal at nowMono, a monotonic nanosecond
// timestamp. A nowMono at or before the current value is a no-op: the
// field never moves backwards.
func (a *Agent) Heartbeat(nowMono uint64) {
	if nowMono > a.LastHeartbeatMono {
		a.LastHeartbeatMono = nowMono
	}
}

// DecayCoherence reduces Coherence by rate*elapsedSeconds, clamped at 0.
// Quarantined agents do not decay further: their coherence is already
// pinned at 0 by the quarantine invariant.
func (a *Agent) DecayCoherence(rate float64, elapsed time.Duration) {
	if a.Status == StatusQuarantine {
		a.Coherence = 0
		return
	}
	a.Coherence -= rate * elapsed.Seconds()
	if a.Coherence < 0 {
		a.Coherence = 0
	}
}

// RefreshCoherence restores full coherence after a successful operation,
// per the glossary's "refreshed on successful operations."
func (a *Agent) RefreshCoherence() {
	if a.Status != StatusQuarantine {
		a.Coherence = 1.0
	}
}

// Quarantine enforces the invariant from spec §3: a quarantined agent has
// coherence = 0 and position = origin. Idempotent.
func (a *Agent) Quarantine() {
	a.Status = StatusQuarantine
	a.Coherence = 0
	a.Quarantined = true
	a.Position = hyperbolic.Point{}
}
