package agent

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aethermoore/scbe/internal/aetherlex"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/pqc"
	"github.com/aethermoore/scbe/internal/swarm"
)

// Announcer publishes a lifecycle event (join/leave) for an agent. Bound
// at wiring time to internal/eventbus so this package never imports it
// directly.
type Announcer interface {
	Announce(agentID string, event string) error
}

// Registrar records a newly-initialized agent's public key with the
// process-wide governance secret store. Optional: Initialize proceeds
// without one.
type Registrar interface {
	Register(agentID string, publicKey []byte) error
}

// ShutdownHook runs arbitrary cleanup during Shutdown, bounded by the
// caller's timeout.
type ShutdownHook func(ctx context.Context) error

// Config parameterizes Initialize.
type Config struct {
	ID               string
	Tongue           aetherlex.Tongue
	SignatureAlgorithm string // e.g. "ML-DSA-65"

	HeartbeatInterval  time.Duration // default DefaultHeartbeatInterval
	CoherenceDecayRate float64       // default DefaultCoherenceDecayRate

	Announcer Announcer
	Registrar Registrar

	// Clock returns the current monotonic nanosecond timestamp. Defaults
	// to time.Now().UnixNano(). Tests inject a deterministic clock.
	Clock func() uint64
}

func (c Config) heartbeatInterval() time.Duration {
	if c.HeartbeatInterval > 0 {
		return c.HeartbeatInterval
	}
	return DefaultHeartbeatInterval
}

func (c Config) coherenceDecayRate() float64 {
	if c.CoherenceDecayRate > 0 {
		return c.CoherenceDecayRate
	}
	return DefaultCoherenceDecayRate
}

func (c Config) clock() func() uint64 {
	if c.Clock != nil {
		return c.Clock
	}
	return func() uint64 { return uint64(time.Now().UnixNano()) }
}

// Lifecycle owns a running Agent's timers and shutdown token.
type Lifecycle struct {
	Agent *Agent

	cfg    Config
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// Initialize generates a PQC keypair, registers with the governance
// secret store if provided, computes the agent's phase/weight/initial
// position from its tongue, announces "joined", and returns a Lifecycle
// ready to Start its timers.
func Initialize(cfg Config) (*Lifecycle, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("agent: Config.ID is required")
	}
	algorithm := cfg.SignatureAlgorithm
	if algorithm == "" {
		algorithm = "ML-DSA-65"
	}

	sig, err := pqc.GetSignature(algorithm)
	if err != nil {
		return nil, fmt.Errorf("agent: get signature backend: %w", err)
	}
	pub, sec, err := sig.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("agent: generate keypair: %w", err)
	}

	phaseDeg := aetherlex.PhaseOffsetDegrees(cfg.Tongue)
	weight := aetherlex.TongueWeight(cfg.Tongue)
	position, err := initialPosition(phaseDeg)
	if err != nil {
		return nil, fmt.Errorf("agent: initial position: %w", err)
	}

	mixed := swarm.NewMixedAgent(cfg.ID, position, swarm.KnownPhase(phaseDeg))
	a := &Agent{
		MixedAgent: mixed,
		Tongue:     cfg.Tongue,
		Weight:     weight,
		Status:     StatusInitializing,
		Keys:       KeyPair{Algorithm: algorithm, PublicKey: pub, SecretKey: sec},
		Nonces:     NewNonceSet(MaxTrackedNonces),
		CreatedAt:  time.Now(),
	}

	if cfg.Registrar != nil {
		if err := cfg.Registrar.Register(a.ID, pub); err != nil {
			return nil, fmt.Errorf("agent: register with governance store: %w", err)
		}
	}

	a.LastHeartbeatMono = cfg.clock()()
	a.Status = StatusActive

	if cfg.Announcer != nil {
		if err := cfg.Announcer.Announce(a.ID, "joined"); err != nil {
			return nil, fmt.Errorf("agent: announce joined: %w", err)
		}
	}

	return &Lifecycle{Agent: a, cfg: cfg}, nil
}

// initialPosition places a fresh agent in a random shell of radius
// 0.3-0.6 aligned to its tongue's phase (spec §4.14).
func initialPosition(phaseDegrees float64) (hyperbolic.Point, error) {
	rad := phaseDegrees * math.Pi / 180

	shell, err := hyperbolic.Convergent(1, 1) // reuse the CSPRNG source
	if err != nil {
		return hyperbolic.Point{}, err
	}
	// Map the convergent sample's magnitude into [0.3, 0.6] rather than
	// using its raw direction, since the position must align to phase.
	radius := 0.3 + 0.3*hyperbolic.Norm(shell[0])
	if radius > 0.6 {
		radius = 0.6
	}
	return hyperbolic.Point{radius * math.Cos(rad), radius * math.Sin(rad), 0}, nil
}

// Start launches the heartbeat and coherence-decay timers. They run until
// ctx is cancelled or Shutdown is called.
func (l *Lifecycle) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.done.Add(2)
	go l.runHeartbeat(runCtx)
	go l.runCoherenceDecay(runCtx)
}

func (l *Lifecycle) runHeartbeat(ctx context.Context) {
	defer l.done.Done()
	ticker := time.NewTicker(l.cfg.heartbeatInterval())
	defer ticker.Stop()
	clock := l.cfg.clock()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Agent.Heartbeat(clock())
		}
	}
}

func (l *Lifecycle) runCoherenceDecay(ctx context.Context) {
	defer l.done.Done()
	const tick = time.Second // 1 Hz, per spec §4.14
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	rate := l.cfg.coherenceDecayRate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Agent.DecayCoherence(rate, tick)
		}
	}
}

// Shutdown stops the timers, announces "leaving", runs hook (if any)
// bounded by timeout, and marks the agent offline.
func (l *Lifecycle) Shutdown(ctx context.Context, timeout time.Duration, hook ShutdownHook) error {
	if l.cancel != nil {
		l.cancel()
	}
	l.done.Wait()

	if l.cfg.Announcer != nil {
		if err := l.cfg.Announcer.Announce(l.Agent.ID, "leaving"); err != nil {
			return fmt.Errorf("agent: announce leaving: %w", err)
		}
	}

	if hook != nil {
		hookCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := hook(hookCtx); err != nil {
			return fmt.Errorf("agent: shutdown hook: %w", err)
		}
	}

	l.Agent.Status = StatusOffline
	return nil
}
