// Package observability — metrics.go
//
// Prometheus metrics for the governance kernel.
//
// Endpoint: GET /metrics on 127.0.0.1:9091 (configurable).
// Format: Prometheus text exposition format (OpenMetrics compatible).
// Bind: loopback only — no external exposure.
//
// Metric naming convention: scbe_<subsystem>_<name>_<unit>
//
// All metrics are registered on a dedicated prometheus.Registry (not the
// default global registry) to avoid collisions with other instrumented
// libraries in the same process.
//
// Cardinality control:
//   - Decision/outcome labels use fixed, small string sets.
//   - Agent ID is NOT used as a label (unbounded cardinality); per-agent
//     state is aggregated before recording.

package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric descriptors for the governance kernel.
type Metrics struct {
	registry *prometheus.Registry

	// ─── Kernel decisions ─────────────────────────────────────────────────────

	// DecisionsTotal counts DECIDE invocations, by outcome.
	// Labels: decision (ALLOW, DENY, QUARANTINE, DEFER)
	DecisionsTotal *prometheus.CounterVec

	// DecisionLatency records DECIDE's end-to-end evaluation latency.
	DecisionLatency prometheus.Histogram

	// TrustStateGauge is the current trust lattice state (0=T0 .. 4=T4).
	TrustStateGauge prometheus.Gauge

	// ─── Consensus ────────────────────────────────────────────────────────────

	// ConsensusRoundsTotal counts consensus tallies, by outcome.
	// Labels: decision (ALLOW, DENY, QUARANTINE, NO_QUORUM)
	ConsensusRoundsTotal *prometheus.CounterVec

	// ─── Rogue detector ───────────────────────────────────────────────────────

	// RogueScoreHistogram records the distribution of rogue scores.
	RogueScoreHistogram prometheus.Histogram

	// RogueActionsTotal counts rogue-detector recommendations, by action.
	// Labels: action (none, monitor, quarantine, terminate)
	RogueActionsTotal *prometheus.CounterVec

	// ─── Agents ───────────────────────────────────────────────────────────────

	// AgentsActive is the current number of agents in the active state.
	AgentsActive prometheus.Gauge

	// AgentsOfflineTotal counts agents marked offline by the peer monitor.
	AgentsOfflineTotal prometheus.Counter

	// NonceReplaysRejectedTotal counts rejected agent nonce replays.
	NonceReplaysRejectedTotal prometheus.Counter

	// ─── Replay guard ─────────────────────────────────────────────────────────

	// ReplayChecksTotal counts replay-guard checks, by outcome.
	// Labels: outcome (accepted, rejected, store_error)
	ReplayChecksTotal *prometheus.CounterVec

	// ─── Event bus ────────────────────────────────────────────────────────────

	// EventBusEnvelopesReceivedTotal counts received event-bus envelopes.
	// Labels: accepted (true, false)
	EventBusEnvelopesReceivedTotal *prometheus.CounterVec

	// EventBusEnvelopesPublishedTotal counts messages published locally.
	EventBusEnvelopesPublishedTotal prometheus.Counter

	// ─── Sync engine ──────────────────────────────────────────────────────────

	// SyncRoundsTotal counts completed disconnected-sync rounds.
	SyncRoundsTotal prometheus.Counter

	// SyncEventsAppliedTotal counts ledger events applied from sync payloads.
	SyncEventsAppliedTotal prometheus.Counter

	// SyncForkRejectionsTotal counts sync payloads rejected as forks.
	SyncForkRejectionsTotal prometheus.Counter

	// ─── Storage ──────────────────────────────────────────────────────────────

	// StorageWriteLatency records BoltDB write transaction latency.
	StorageWriteLatency prometheus.Histogram

	// StorageLedgerEntries is the current number of ledger entries.
	StorageLedgerEntries prometheus.Gauge

	// ─── Process ──────────────────────────────────────────────────────────────

	// UptimeSeconds is the number of seconds since the process started.
	UptimeSeconds prometheus.Gauge

	// startTime records when the process started (for uptime calculation).
	startTime time.Time
}

// NewMetrics creates and registers all governance-kernel Prometheus metrics.
// Returns a *Metrics with all descriptors initialised.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "kernel",
			Name:      "decisions_total",
			Help:      "Total DECIDE invocations, by decision outcome.",
		}, []string{"decision"}),

		DecisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scbe",
			Subsystem: "kernel",
			Name:      "decision_latency_seconds",
			Help:      "End-to-end DECIDE evaluation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),

		TrustStateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scbe",
			Subsystem: "kernel",
			Name:      "trust_state",
			Help:      "Current trust lattice state (0=T0 trusted .. 4=T4 integrity degraded).",
		}),

		ConsensusRoundsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "consensus",
			Name:      "rounds_total",
			Help:      "Total consensus tallies, by outcome.",
		}, []string{"decision"}),

		RogueScoreHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scbe",
			Subsystem: "rogue",
			Name:      "score",
			Help:      "Distribution of rogue-detector scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),

		RogueActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "rogue",
			Name:      "actions_total",
			Help:      "Total rogue-detector recommendations, by action.",
		}, []string{"action"}),

		AgentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scbe",
			Subsystem: "agent",
			Name:      "active",
			Help:      "Current number of agents in the active state.",
		}),

		AgentsOfflineTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "agent",
			Name:      "offline_total",
			Help:      "Total agents marked offline by the peer monitor.",
		}),

		NonceReplaysRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "agent",
			Name:      "nonce_replays_rejected_total",
			Help:      "Total agent nonce replay attempts rejected.",
		}),

		ReplayChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "replay",
			Name:      "checks_total",
			Help:      "Total replay-guard checks, by outcome.",
		}, []string{"outcome"}),

		EventBusEnvelopesReceivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "eventbus",
			Name:      "envelopes_received_total",
			Help:      "Total event-bus envelopes received, by acceptance status.",
		}, []string{"accepted"}),

		EventBusEnvelopesPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "eventbus",
			Name:      "envelopes_published_total",
			Help:      "Total messages published to the local event bus.",
		}),

		SyncRoundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "syncengine",
			Name:      "rounds_total",
			Help:      "Total disconnected-sync rounds completed.",
		}),

		SyncEventsAppliedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "syncengine",
			Name:      "events_applied_total",
			Help:      "Total ledger events applied from sync payloads.",
		}),

		SyncForkRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scbe",
			Subsystem: "syncengine",
			Name:      "fork_rejections_total",
			Help:      "Total sync payloads rejected due to ledger fork detection.",
		}),

		StorageWriteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scbe",
			Subsystem: "storage",
			Name:      "write_latency_seconds",
			Help:      "BoltDB write transaction latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),

		StorageLedgerEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scbe",
			Subsystem: "storage",
			Name:      "ledger_entries",
			Help:      "Current number of audit ledger entries in BoltDB.",
		}),

		UptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scbe",
			Subsystem: "process",
			Name:      "uptime_seconds",
			Help:      "Number of seconds since the process started.",
		}),
	}

	// Register all metrics with the dedicated registry.
	reg.MustRegister(
		m.DecisionsTotal,
		m.DecisionLatency,
		m.TrustStateGauge,
		m.ConsensusRoundsTotal,
		m.RogueScoreHistogram,
		m.RogueActionsTotal,
		m.AgentsActive,
		m.AgentsOfflineTotal,
		m.NonceReplaysRejectedTotal,
		m.ReplayChecksTotal,
		m.EventBusEnvelopesReceivedTotal,
		m.EventBusEnvelopesPublishedTotal,
		m.SyncRoundsTotal,
		m.SyncEventsAppliedTotal,
		m.SyncForkRejectionsTotal,
		m.StorageWriteLatency,
		m.StorageLedgerEntries,
		m.UptimeSeconds,
		// Standard Go runtime metrics.
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// ServeMetrics starts the Prometheus HTTP metrics server on the given address.
// Blocks until ctx is cancelled or the server fails.
// The server binds to addr (e.g., "127.0.0.1:9091") and serves GET /metrics.
// Returns an error only if the server fails to start or encounters a fatal error.
func (m *Metrics) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start uptime updater goroutine.
	go m.updateUptime(ctx)

	// Shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}

// updateUptime periodically updates the UptimeSeconds gauge.
func (m *Metrics) updateUptime(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.UptimeSeconds.Set(time.Since(m.startTime).Seconds())
		case <-ctx.Done():
			return
		}
	}
}
