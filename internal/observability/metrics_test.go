package observability_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/observability"
)

func TestNewMetricsRegistersWithoutPanic(t *testing.T) {
	m := observability.NewMetrics()
	if m == nil {
		t.Fatal("expected a non-nil Metrics")
	}
}

func TestMetricsCountersAreUsable(t *testing.T) {
	m := observability.NewMetrics()

	m.DecisionsTotal.WithLabelValues("ALLOW").Inc()
	m.ConsensusRoundsTotal.WithLabelValues("ALLOW").Inc()
	m.RogueActionsTotal.WithLabelValues("quarantine").Inc()
	m.ReplayChecksTotal.WithLabelValues("accepted").Inc()
	m.EventBusEnvelopesReceivedTotal.WithLabelValues("true").Inc()
	m.AgentsOfflineTotal.Inc()
	m.NonceReplaysRejectedTotal.Inc()
	m.EventBusEnvelopesPublishedTotal.Inc()
	m.SyncRoundsTotal.Inc()
	m.SyncEventsAppliedTotal.Inc()
	m.SyncForkRejectionsTotal.Inc()

	m.TrustStateGauge.Set(2)
	m.AgentsActive.Set(5)
	m.StorageLedgerEntries.Set(100)
	m.DecisionLatency.Observe(0.01)
	m.RogueScoreHistogram.Observe(0.4)
	m.StorageWriteLatency.Observe(0.002)
}

// Calling NewMetrics twice must not panic from colliding with the default
// global Prometheus registry — each instance registers on its own registry.
func TestNewMetricsIsIsolatedPerInstance(t *testing.T) {
	first := observability.NewMetrics()
	second := observability.NewMetrics()
	if first == second {
		t.Fatal("expected distinct Metrics instances")
	}
	first.DecisionsTotal.WithLabelValues("DENY").Inc()
	second.DecisionsTotal.WithLabelValues("DENY").Inc()
}
