package consensus

import (
	"testing"
	"time"

	"github.com/aethermoore/scbe/internal/aetherlex"
)

func vote(id string, tongue aetherlex.Tongue, decision Decision, confidence float64, ts time.Time) Vote {
	return Vote{AgentID: id, Tongue: tongue, Decision: decision, Confidence: confidence, Timestamp: ts}
}

func TestConfigQuorumAndMaxFaulty(t *testing.T) {
	cfg := Config{TotalAgents: 7}
	if got := cfg.MaxFaulty(); got != 2 {
		t.Fatalf("MaxFaulty() = %d, want 2", got)
	}
	if got := cfg.Quorum(); got != 5 {
		t.Fatalf("Quorum() = %d, want 5", got)
	}
}

func TestTallyUnweighted_S7Scenario(t *testing.T) {
	cfg := Config{TotalAgents: 7, TimeoutMs: 5000}
	now := time.Now()

	allow5Deny2 := []Vote{
		vote("a1", aetherlex.TongueKO, Allow, 1, now),
		vote("a2", aetherlex.TongueAV, Allow, 1, now),
		vote("a3", aetherlex.TongueRU, Allow, 1, now),
		vote("a4", aetherlex.TongueCA, Allow, 1, now),
		vote("a5", aetherlex.TongueUM, Allow, 1, now),
		vote("a6", aetherlex.TongueDR, Deny, 1, now),
		vote("a7", aetherlex.TongueKO, Deny, 1, now),
	}
	if got := TallyUnweighted(allow5Deny2, cfg, now); got != Allow {
		t.Fatalf("5 ALLOW + 2 DENY = %s, want ALLOW", got)
	}

	allow4Quarantine3 := []Vote{
		vote("a1", aetherlex.TongueKO, Allow, 1, now),
		vote("a2", aetherlex.TongueAV, Allow, 1, now),
		vote("a3", aetherlex.TongueRU, Allow, 1, now),
		vote("a4", aetherlex.TongueCA, Allow, 1, now),
		vote("a5", aetherlex.TongueUM, Quarantine, 1, now),
		vote("a6", aetherlex.TongueDR, Quarantine, 1, now),
		vote("a7", aetherlex.TongueKO, Quarantine, 1, now),
	}
	if got := TallyUnweighted(allow4Quarantine3, cfg, now); got != NoQuorum {
		t.Fatalf("4 ALLOW + 3 QUARANTINE = %s, want NO_QUORUM", got)
	}
}

func TestTallyWeighted_PhiWeighting(t *testing.T) {
	cfg := Config{TotalAgents: 7, TimeoutMs: 5000}
	now := time.Now()

	// 3 ALLOW from tongues {0,1,2} (weights 1, phi, phi^2) vs 2 DENY from
	// {4,5} (phi^4 + phi^5). phi^4+phi^5 > 1+phi+phi^2, so DENY wins.
	votes := []Vote{
		vote("a1", aetherlex.TongueKO, Allow, 1, now),
		vote("a2", aetherlex.TongueAV, Allow, 1, now),
		vote("a3", aetherlex.TongueRU, Allow, 1, now),
		vote("a4", aetherlex.TongueUM, Deny, 1, now),
		vote("a5", aetherlex.TongueDR, Deny, 1, now),
	}
	if got := TallyWeighted(votes, cfg, now); got != Deny {
		t.Fatalf("weighted tally = %s, want DENY", got)
	}
}

func TestTallyDropsStaleVotes(t *testing.T) {
	cfg := Config{TotalAgents: 4, TimeoutMs: 1000}
	now := time.Now()
	stale := now.Add(-2 * time.Second)

	votes := []Vote{
		vote("a1", aetherlex.TongueKO, Allow, 1, stale),
		vote("a2", aetherlex.TongueAV, Allow, 1, stale),
		vote("a3", aetherlex.TongueRU, Allow, 1, stale),
	}
	if got := TallyUnweighted(votes, cfg, now); got != NoQuorum {
		t.Fatalf("all-stale votes = %s, want NO_QUORUM", got)
	}
}

func TestTallyWeightedNoVotesIsNoQuorum(t *testing.T) {
	cfg := Config{TotalAgents: 4, TimeoutMs: 1000}
	if got := TallyWeighted(nil, cfg, time.Now()); got != NoQuorum {
		t.Fatalf("empty votes = %s, want NO_QUORUM", got)
	}
}

func TestTallyWeightedExactTieIsNoQuorum(t *testing.T) {
	// Equal weight split between ALLOW and DENY can't both exceed 50%;
	// confirms neither wins when exactly tied.
	cfg := Config{TotalAgents: 4, TimeoutMs: 1000}
	now := time.Now()
	votes := []Vote{
		vote("a1", aetherlex.TongueKO, Allow, 1, now),
		vote("a2", aetherlex.TongueKO, Deny, 1, now),
	}
	if got := TallyWeighted(votes, cfg, now); got != NoQuorum {
		t.Fatalf("exact tie = %s, want NO_QUORUM", got)
	}
}
