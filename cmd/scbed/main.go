// Package main — cmd/scbed/main.go
//
// Governance kernel node entrypoint.
//
// Startup sequence:
//  1. Load and validate config from /etc/scbe/config.yaml.
//  2. Initialise structured logger (zap, JSON format).
//  3. Open BoltDB storage.
//  4. Prune expired replay-guard entries.
//  5. Register the real PQC backends (ML-KEM-768, ML-DSA-65).
//  6. Generate (or load) this node's PQC signing identity.
//  7. Construct the immutable laws and load/bootstrap the flux manifest.
//  8. Start the Prometheus metrics server (127.0.0.1:9091).
//  9. Start the replay guard.
// 10. Start the event bus (websocket or in-process mock).
// 11. Initialise this node's local agent (lifecycle + peer monitor).
// 12. Start the rogue-detector self-check loop.
// 13. Start the consensus vote-tally loop.
// 14. Start the DECIDE request loop.
// 15. Start the disconnected-sync loop (if enabled).
// 16. Register SIGHUP handler for config hot-reload.
// 17. Block on SIGINT/SIGTERM for graceful shutdown.
//
// Shutdown sequence (on SIGINT/SIGTERM):
//  1. Cancel root context (propagates to all goroutines).
//  2. Shut down the local agent lifecycle (bounded timeout).
//  3. Close the event bus.
//  4. Close BoltDB.
//  5. Flush logger.
//  6. Exit 0.
//
// On storage open failure or config validation failure: exit 1 immediately.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aethermoore/scbe/internal/aetherlex"
	"github.com/aethermoore/scbe/internal/agent"
	"github.com/aethermoore/scbe/internal/config"
	"github.com/aethermoore/scbe/internal/consensus"
	"github.com/aethermoore/scbe/internal/eventbus"
	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/kernel"
	"github.com/aethermoore/scbe/internal/ledger"
	"github.com/aethermoore/scbe/internal/observability"
	"github.com/aethermoore/scbe/internal/pqc"
	"github.com/aethermoore/scbe/internal/replay"
	"github.com/aethermoore/scbe/internal/rogue"
	"github.com/aethermoore/scbe/internal/storage"
	"github.com/aethermoore/scbe/internal/swarm"
	"github.com/aethermoore/scbe/internal/syncengine"
)

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────────
	configPath := flag.String("config", "/etc/scbe/config.yaml", "Path to config.yaml")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("scbe %s (commit=%s built=%s)\n",
			config.Version, config.GitCommit, config.BuildTime)
		os.Exit(0)
	}

	// ── Step 1: Load config ───────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config load failed: %v\n", err)
		os.Exit(1)
	}

	// ── Step 2: Initialise logger ─────────────────────────────────────────────
	log, err := buildLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("scbe kernel starting",
		zap.String("version", config.Version),
		zap.String("commit", config.GitCommit),
		zap.String("built", config.BuildTime),
		zap.String("node_id", cfg.NodeID),
		zap.String("tongue", cfg.Tongue),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Step 3: Open BoltDB ───────────────────────────────────────────────────
	db, err := storage.Open(cfg.Storage.DBPath, cfg.Storage.RetentionDays)
	if err != nil {
		log.Fatal("BoltDB open failed", zap.Error(err), zap.String("path", cfg.Storage.DBPath))
	}
	defer db.Close() //nolint:errcheck
	log.Info("BoltDB opened", zap.String("path", cfg.Storage.DBPath))

	// ── Step 4: Prune expired replay-guard entries ────────────────────────────
	if n, err := db.PruneExpiredReplay(time.Now()); err != nil {
		log.Warn("replay prune failed", zap.Error(err))
	} else {
		log.Info("replay guard pruned", zap.Int("deleted", n))
	}

	// ── Step 5: Register real PQC backends ────────────────────────────────────
	// Without this, GetKEM/GetSignature auto-materialize fail-closed stubs
	// (registry.go) whose Verify always returns ErrStubVerify — the node
	// would sign its own manifest with a key nothing can ever verify.
	if err := pqc.RegisterKEM("ML-KEM-768", pqc.MLKEM768{}); err != nil {
		log.Fatal("pqc: register ML-KEM-768 failed", zap.Error(err))
	}
	if err := pqc.RegisterSignature("ML-DSA-65", pqc.MLDSA65{}); err != nil {
		log.Fatal("pqc: register ML-DSA-65 failed", zap.Error(err))
	}
	log.Info("pqc backends registered", zap.Strings("algorithms", pqc.ListRegistered()))

	// ── Step 6: Node signing identity ─────────────────────────────────────────
	nodeSig, err := pqc.GetSignature(cfg.Agent.SignatureAlgorithm)
	if err != nil {
		log.Fatal("pqc signature backend unavailable", zap.Error(err),
			zap.String("algorithm", cfg.Agent.SignatureAlgorithm))
	}
	nodePub, nodeSec, err := nodeSig.GenerateKeyPair()
	if err != nil {
		log.Fatal("node keypair generation failed", zap.Error(err))
	}
	signer := &keySigner{sig: nodeSig, secretKey: nodeSec}
	verifier := &keyVerifier{sig: nodeSig, publicKey: nodePub}

	// ── Step 7: Laws and manifest ──────────────────────────────────────────────
	tongues := make([]string, len(aetherlex.TongueOrder))
	for i, t := range aetherlex.TongueOrder {
		tongues[i] = string(t)
	}
	laws := governance.CreateImmutableLaws(
		"scbe-mmx-v1", "poincare-ball", tongues,
		map[string]string{"default": "enforce"},
	)

	manifest, err := loadOrBootstrapManifest(db, signer)
	if err != nil {
		log.Fatal("manifest bootstrap failed", zap.Error(err))
	}
	log.Info("manifest in force", zap.String("manifest_id", manifest.ManifestID), zap.Uint64("epoch", manifest.EpochID))

	// ── Step 8: Prometheus metrics ────────────────────────────────────────────
	metrics := observability.NewMetrics()
	go func() {
		if err := metrics.ServeMetrics(ctx, cfg.Observability.MetricsAddr); err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
	log.Info("metrics server started", zap.String("addr", cfg.Observability.MetricsAddr))

	// ── Step 9: Replay guard ───────────────────────────────────────────────────
	var replayStore replay.Store = db
	if cfg.Replay.StoreKind == "memory" {
		replayStore = replay.NewMemoryStore(replay.MemoryStoreConfig{MaxSize: cfg.Replay.MaxTracked, PruneInterval: time.Minute})
	}
	replayGuard := replay.NewGuard(replayStore, cfg.Replay.TTL, log)

	// ── Step 10: Event bus ──────────────────────────────────────────────────────
	tongue := aetherlex.Tongue(cfg.Tongue)
	bus, busCloser := startEventBus(ctx, cfg, tongue, log)
	defer busCloser()

	// ── Step 11: Local agent ──────────────────────────────────────────────────
	lifecycle, err := agent.Initialize(agent.Config{
		ID:                 cfg.NodeID,
		Tongue:             tongue,
		SignatureAlgorithm: cfg.Agent.SignatureAlgorithm,
		HeartbeatInterval:  cfg.Agent.HeartbeatInterval,
		CoherenceDecayRate: cfg.Agent.CoherenceDecayRate,
		Announcer:          busAnnouncer{bus: bus, tongue: tongue, agentID: cfg.NodeID},
	})
	if err != nil {
		log.Fatal("agent initialization failed", zap.Error(err))
	}
	lifecycle.Start(ctx)
	metrics.AgentsActive.Set(1)
	log.Info("local agent active", zap.String("agent_id", lifecycle.Agent.ID))

	monitor := agent.NewMonitor(uint64(cfg.Agent.Timeout.Nanoseconds()))
	monitor.Watch(lifecycle.Agent)
	go runPeerMonitorLoop(ctx, monitor, cfg.Agent.HeartbeatInterval, metrics, log)

	// ── Step 12: Rogue-detector self-check loop ───────────────────────────────
	go runRogueLoop(ctx, lifecycle.Agent, cfg.Agent.HeartbeatInterval, metrics, log)

	// ── Step 13: Consensus vote-tally loop ────────────────────────────────────
	votesCh, voteSub := bus.Subscribe(eventbus.TierWildcard(eventbus.TierPublic))
	defer voteSub.Unsubscribe()
	go runConsensusLoop(ctx, votesCh, consensus.Config{
		TotalAgents: cfg.Consensus.TotalAgents,
		TimeoutMs:   cfg.Consensus.TimeoutMs,
	}, cfg.Consensus.Weighted, metrics, log)

	// ── Step 14: DECIDE request loop ──────────────────────────────────────────
	kernelLedger := ledger.New(db, signer)
	runtimeFactory := func() kernel.Runtime {
		length, _, err := kernelLedger.Snapshot()
		if err != nil {
			log.Warn("ledger snapshot failed; treating ledger as empty", zap.Error(err))
			length = 0
		}
		return kernel.Runtime{
			Laws:             laws,
			Manifest:         *manifest,
			ManifestPresent:  true,
			ManifestVerifier: verifier,
			KeysValid:        true,
			TimeTrusted:      true,
			IntegrityOK:      true,
			Ledger:           kernelLedger,
			LedgerVerifier:   verifier,
			LedgerHasEvents:  length > 0,
			VoxelRoot:        []byte(cfg.NodeID),
			NowMono:          uint64(time.Now().UnixNano()),
			ComputeMMX:       computeScalars(lifecycle.Agent),
			Signer:           signer,
		}
	}
	decideCh, decideSub := bus.Subscribe(eventbus.Topic(eventbus.TierPrivate, tongue, "enforcement_request"))
	defer decideSub.Unsubscribe()
	go runDecideLoop(ctx, bus, decideCh, runtimeFactory, tongue, cfg.NodeID, metrics, log)

	// ── Step 15: Disconnected sync loop ───────────────────────────────────────
	if cfg.SyncEngine.Enabled {
		graph := syncengine.NewContactGraph()
		go runSyncLoop(ctx, graph, db, manifest, verifier, cfg.SyncEngine.ContactCheckInterval, metrics, log)
	} else {
		log.Info("sync engine disabled (standalone mode)")
	}

	// ── Step 16: SIGHUP hot-reload ─────────────────────────────────────────────
	replayStoreKind := cfg.Replay.StoreKind
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			log.Info("SIGHUP received — reloading config...")
			newCfg, err := config.Load(*configPath)
			if err != nil {
				log.Error("config hot-reload failed — retaining old config", zap.Error(err))
				continue
			}
			log.Info("config hot-reload successful",
				zap.Float64("new_weight_hyperbolic", newCfg.Fusion.WeightHyperbolic))
			_ = replayGuard // thresholds/weights are re-read from the manifest, not this snapshot

			status := kernel.Status(runtimeFactory(), replayStoreKind)
			log.Info("status after reload",
				zap.Strings("algorithms_available", status.AlgorithmsAvailable),
				zap.Bool("laws_ok", status.LawsOK),
				zap.String("manifest_state", string(status.ManifestState)),
				zap.Uint64("ledger_length", status.LedgerLength),
				zap.String("ledger_head_hash", status.LedgerHeadHash),
				zap.String("replay_store_kind", status.ReplayStoreKind))
		}
	}()

	// ── Step 17: Wait for shutdown signal ─────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := lifecycle.Shutdown(shutdownCtx, 5*time.Second, nil); err != nil {
		log.Warn("agent shutdown did not complete cleanly", zap.Error(err))
	}

	log.Info("scbe kernel shutdown complete")
}

// computeScalars closes over a's live swarm state to build the C11 MMX
// scoring function: coherence and conflict read directly off the fused
// trust model, drift and wall-cost off the agent's hyperbolic position.
func computeScalars(a *agent.Agent) func(kernel.EnforcementRequest) governance.Scalars {
	return func(kernel.EnforcementRequest) governance.Scalars {
		coherence := swarm.TrustScore(a.MixedAgent)
		conflict := swarm.TotalIncomingSuspicion(a.MixedAgent) / 10
		if conflict > 1 {
			conflict = 1
		}
		drift := hyperbolic.HyperbolicDistance(a.Position, hyperbolic.Point{})
		phaseDeviation := 0.0
		if a.Phase.Known {
			phaseDeviation = swarm.PhaseDeviation(a.Phase, a.Phase)
		}
		wallCost := hyperbolic.HarmonicWallCost(drift, phaseDeviation)
		return governance.Scalars{
			Coherence: coherence,
			Conflict:  conflict,
			Drift:     drift,
			WallCost:  wallCost,
		}
	}
}

// runPeerMonitorLoop periodically sweeps the peer monitor for silent agents.
func runPeerMonitorLoop(ctx context.Context, monitor *agent.Monitor, interval time.Duration, metrics *observability.Metrics, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitor.Sweep(uint64(time.Now().UnixNano()), func(agentID string) {
				metrics.AgentsOfflineTotal.Inc()
				log.Warn("agent marked offline", zap.String("agent_id", agentID))
			})
		}
	}
}

// runRogueLoop periodically evaluates a's rogue indicators against its own
// formation baseline (the only peer state a standalone node has until the
// swarm package's neighbor feed is wired to real peer positions).
func runRogueLoop(ctx context.Context, a *agent.Agent, interval time.Duration, metrics *observability.Metrics, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			score, action, _ := rogue.Evaluate(a, a.Position, a.Position, a.Coherence)
			metrics.RogueScoreHistogram.Observe(score)
			metrics.RogueActionsTotal.WithLabelValues(string(action)).Inc()
			if action == rogue.RecommendQuarantine || action == rogue.RecommendTerminate {
				rogue.Quarantine(a)
				log.Warn("rogue detector acted",
					zap.String("agent_id", a.ID), zap.Float64("score", score), zap.String("action", string(action)))
			}
		}
	}
}

// voteFromMessage parses the consensus.Vote fields a peer agent carries in
// a public-tier vote envelope: the decision class in msg.Value, and the
// voting agent's tongue/confidence in msg.Headers (set by whatever agent
// published the vote). AgentID/Timestamp/Signature come straight off the
// envelope itself.
func voteFromMessage(msg eventbus.Message) (consensus.Vote, error) {
	decision := consensus.Decision(msg.Value)
	switch decision {
	case consensus.Allow, consensus.Deny, consensus.Quarantine:
	default:
		return consensus.Vote{}, fmt.Errorf("vote: unrecognized decision %q", msg.Value)
	}
	tongue, ok := msg.Headers["tongue"]
	if !ok || tongue == "" {
		return consensus.Vote{}, fmt.Errorf("vote: missing tongue header")
	}
	confidence := 1.0
	if raw, ok := msg.Headers["confidence"]; ok {
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return consensus.Vote{}, fmt.Errorf("vote: invalid confidence header %q: %w", raw, err)
		}
		confidence = c
	}
	return consensus.Vote{
		AgentID:    msg.Key,
		Tongue:     aetherlex.Tongue(tongue),
		Decision:   decision,
		Confidence: confidence,
		Timestamp:  msg.Timestamp,
		Signature:  msg.Signature,
	}, nil
}

// runConsensusLoop accumulates fresh votes observed on the event bus and
// periodically tallies them.
func runConsensusLoop(ctx context.Context, votes <-chan eventbus.Message, cfg consensus.Config, weighted bool, metrics *observability.Metrics, log *zap.Logger) {
	var pending []consensus.Vote
	ticker := time.NewTicker(time.Duration(cfg.TimeoutMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-votes:
			if !ok {
				return
			}
			vote, err := voteFromMessage(msg)
			if err != nil {
				log.Warn("discarding malformed vote envelope", zap.Error(err), zap.String("topic", msg.Topic))
				continue
			}
			pending = append(pending, vote)
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			var decision consensus.Decision
			now := time.Now()
			if weighted {
				decision = consensus.TallyWeighted(pending, cfg, now)
			} else {
				decision = consensus.TallyUnweighted(pending, cfg, now)
			}
			metrics.ConsensusRoundsTotal.WithLabelValues(string(decision)).Inc()
			log.Info("consensus round tallied", zap.String("decision", string(decision)), zap.Int("votes", len(pending)))
			pending = nil
		}
	}
}

// runDecideLoop answers enforcement_request envelopes on the event bus by
// running them through kernel.Decide and publishing the result.
func runDecideLoop(ctx context.Context, bus eventbus.Bus, requests <-chan eventbus.Message, runtimeFactory func() kernel.Runtime, tongue aetherlex.Tongue, nodeID string, metrics *observability.Metrics, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-requests:
			if !ok {
				return
			}
			start := time.Now()
			req := kernel.EnforcementRequest{Action: string(msg.Value), Subject: msg.Key}
			result, err := kernel.Decide(req, runtimeFactory())
			metrics.DecisionLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				log.Error("DECIDE failed", zap.Error(err))
				continue
			}
			metrics.DecisionsTotal.WithLabelValues(string(result.Decision)).Inc()
			resp := eventbus.Message{
				Topic:     eventbus.Topic(eventbus.TierPrivate, tongue, "decision"),
				Key:       msg.Key,
				Value:     []byte(result.Decision),
				Timestamp: time.Now(),
			}
			if err := bus.Publish(resp); err != nil {
				log.Error("publish decision failed", zap.Error(err))
			}
		}
	}
}

// runSyncLoop periodically checks for an active contact window and, when
// one exists, builds and would transmit a sync payload to the best peer.
func runSyncLoop(ctx context.Context, graph *syncengine.ContactGraph, db *storage.DB, manifest *governance.FluxManifest, verifier governance.Verifier, interval time.Duration, metrics *observability.Metrics, log *zap.Logger) {
	var lastSyncIndex uint64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			graph.Prune(now)
			peer, ok := graph.BestPeer(now)
			if !ok {
				continue
			}
			payload, err := syncengine.BuildPayload(db, lastSyncIndex, nil, *manifest, 0)
			if err != nil {
				log.Error("sync payload build failed", zap.Error(err), zap.String("peer", peer))
				continue
			}
			lastSyncIndex += uint64(len(payload.Events))
			metrics.SyncRoundsTotal.Inc()
			log.Info("sync round prepared", zap.String("peer", peer), zap.Int("events", len(payload.Events)))
		}
	}
}

// startEventBus constructs the configured event-bus backend and, for the
// websocket backend, starts its HTTP listener and dials configured peers.
func startEventBus(ctx context.Context, cfg *config.Config, tongue aetherlex.Tongue, log *zap.Logger) (eventbus.Bus, func()) {
	if cfg.EventBus.Backend == "mock" {
		bus := eventbus.NewMockBus()
		return bus, func() { _ = bus.Close() }
	}

	// Trusted peer public keys are provisioned out-of-band (governance
	// secret store); none are preloaded here, and the websocket bus takes its
	// trusted peers only at construction, so inbound peer envelopes fail
	// peer-trust verification.
	bus := eventbus.NewWebSocketBus(cfg.NodeID, tongue, nil, cfg.EventBus.EnvelopeTTL, log)

	srv := &http.Server{Addr: cfg.EventBus.ListenAddr, Handler: http.HandlerFunc(bus.ServeHTTP)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("eventbus listener error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	for _, addr := range cfg.EventBus.Peers {
		if err := bus.Dial(ctx, addr); err != nil {
			log.Warn("eventbus peer dial failed", zap.String("addr", addr), zap.Error(err))
		}
	}

	return bus, func() { _ = bus.Close() }
}

// busAnnouncer adapts eventbus.Bus to agent.Announcer: a joined/left
// lifecycle event is published as a message on the agent's own tongue
// topic.
type busAnnouncer struct {
	bus     eventbus.Bus
	tongue  aetherlex.Tongue
	agentID string
}

func (a busAnnouncer) Announce(agentID string, event string) error {
	return a.bus.Publish(eventbus.Message{
		Topic:     eventbus.Topic(eventbus.TierPublic, a.tongue, "lifecycle"),
		Key:       agentID,
		Value:     []byte(event),
		Timestamp: time.Now(),
	})
}

// keySigner adapts a registered pqc.Signature bound to a fixed secret key
// to ledger.Signer.
type keySigner struct {
	sig       pqc.Signature
	secretKey []byte
}

func (s *keySigner) Sign(message []byte) ([]byte, error) {
	return s.sig.Sign(s.secretKey, message)
}

// keyVerifier adapts a registered pqc.Signature bound to a fixed public
// key to ledger.Verifier and governance.Verifier (identical method sets).
type keyVerifier struct {
	sig       pqc.Signature
	publicKey []byte
}

func (v *keyVerifier) Verify(message, signature []byte) (bool, error) {
	return v.sig.Verify(v.publicKey, message, signature)
}

// loadOrBootstrapManifest loads the persisted flux manifest, or constructs
// and persists a fresh epoch-0 manifest signed by signer if none exists.
func loadOrBootstrapManifest(db *storage.DB, signer *keySigner) (*governance.FluxManifest, error) {
	existing, err := db.GetManifest()
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	thresholds := governance.DefaultThresholds()
	m := governance.FluxManifest{
		ManifestID:      "bootstrap",
		EpochID:         0,
		ValidFrom:       0,
		ValidUntil:      ^uint64(0),
		PolicyWeights:   map[string]float64{"hyperbolic": 0.4, "swarm": 0.35, "geometric": 0.25},
		Thresholds:      &thresholds,
		CurvatureParams: map[string]float64{"curvature": -1.0},
	}
	sig, err := signer.Sign(governance.SigningBytes(m))
	if err != nil {
		return nil, fmt.Errorf("sign bootstrap manifest: %w", err)
	}
	m.Signature = sig

	if err := db.PutManifest(m); err != nil {
		return nil, fmt.Errorf("persist bootstrap manifest: %w", err)
	}
	return &m, nil
}

// buildLogger constructs a zap.Logger with the given level and format.
func buildLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}
