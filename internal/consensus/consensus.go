// Package consensus implements weighted and unweighted BFT vote tallying
// for the governance kernel's agent fleet (spec §4.12): drop stale votes,
// then decide ALLOW/DENY/QUARANTINE by either a first-to-quorum count or a
// tongue-weighted majority, with a fixed ALLOW -> DENY -> QUARANTINE
// tiebreak order.
//
// Grounded on internal/gossip/quorum.go's TTL-windowed unique-reporter
// counting, generalized from a single anomaly signal to a three-class
// weighted tally.
package consensus

import (
	"time"

	"github.com/aethermoore/scbe/internal/aetherlex"
)

// Decision is one of the three classes a vote can cast.
type Decision string

const (
	Allow      Decision = "ALLOW"
	Deny       Decision = "DENY"
	Quarantine Decision = "QUARANTINE"

	// NoQuorum is returned when no class reaches quorum (unweighted) or a
	// strict majority of weight (weighted).
	NoQuorum Decision = "NO_QUORUM"
)

// classOrder is the fixed deterministic tiebreak order: the first class in
// this order whose tally clears its bar wins.
var classOrder = []Decision{Allow, Deny, Quarantine}

// Vote is one agent's cast ballot.
type Vote struct {
	AgentID    string
	Tongue     aetherlex.Tongue
	Decision   Decision
	Confidence float64
	Timestamp  time.Time
	Signature  []byte
}

// Config parameterizes a consensus round.
type Config struct {
	TotalAgents int
	TimeoutMs   int64
}

// MaxFaulty returns floor((n-1)/3), the number of Byzantine agents this
// configuration tolerates.
func (c Config) MaxFaulty() int {
	if c.TotalAgents <= 0 {
		return 0
	}
	return (c.TotalAgents - 1) / 3
}

// Quorum returns 2*maxFaulty + 1, the minimum unweighted vote count needed
// for a class to win.
func (c Config) Quorum() int {
	return 2*c.MaxFaulty() + 1
}

// freshVotes drops any vote older than cfg.TimeoutMs relative to now.
func freshVotes(votes []Vote, now time.Time, timeoutMs int64) []Vote {
	if timeoutMs <= 0 {
		return votes
	}
	timeout := time.Duration(timeoutMs) * time.Millisecond
	fresh := make([]Vote, 0, len(votes))
	for _, v := range votes {
		if now.Sub(v.Timestamp) <= timeout {
			fresh = append(fresh, v)
		}
	}
	return fresh
}

// TallyUnweighted drops stale votes, counts votes per class, and returns
// the first class (in ALLOW -> DENY -> QUARANTINE order) whose count
// reaches cfg.Quorum(); NoQuorum if none does.
func TallyUnweighted(votes []Vote, cfg Config, now time.Time) Decision {
	fresh := freshVotes(votes, now, cfg.TimeoutMs)

	counts := map[Decision]int{}
	for _, v := range fresh {
		counts[v.Decision]++
	}

	quorum := cfg.Quorum()
	for _, class := range classOrder {
		if counts[class] >= quorum {
			return class
		}
	}
	return NoQuorum
}

// TallyWeighted drops stale votes, weighs each by phi^tongueIndex *
// confidence, and returns the first class (in tiebreak order) whose total
// weight strictly exceeds 50% of the total weight cast; NoQuorum if no
// class clears that bar, and when there is no weight at all.
func TallyWeighted(votes []Vote, cfg Config, now time.Time) Decision {
	fresh := freshVotes(votes, now, cfg.TimeoutMs)

	weights := map[Decision]float64{}
	var total float64
	for _, v := range fresh {
		w := aetherlex.TongueWeight(v.Tongue) * v.Confidence
		weights[v.Decision] += w
		total += w
	}
	if total <= 0 {
		return NoQuorum
	}

	for _, class := range classOrder {
		if weights[class] > total/2 {
			return class
		}
	}
	return NoQuorum
}
