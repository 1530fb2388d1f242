// Package eventbus implements the governance kernel's topic-addressed
// pub/sub abstraction (spec §4.15): fixed topic naming, publish/subscribe
// over exact topics or tier wildcards, an in-memory mock matching the
// contract exactly, and a signed real backend for agent-originated
// messages.
//
// Grounded on internal/gossip/server.go's envelope verification shape
// (freshness check, signature check, peer-trust check) — with one
// substitution the DESIGN.md ledger records: the teacher's transport is
// gRPC against a generated stub package that was not present in the
// retrieved corpus; github.com/gorilla/websocket (present in the corpus)
// carries the identical signed-envelope contract over a real, non-
// fabricated transport instead.
package eventbus

import (
	"fmt"
	"strings"

	"github.com/aethermoore/scbe/internal/aetherlex"
)

// Tier is one of the three topic visibility tiers.
type Tier string

const (
	TierPublic  Tier = "public"
	TierPrivate Tier = "private"
	TierHidden  Tier = "hidden"
)

// Topic formats the canonical topic string scbe.<tier>.<tongue>.<event>.
func Topic(tier Tier, tongue aetherlex.Tongue, eventSuffix string) string {
	return fmt.Sprintf("scbe.%s.%s.%s", tier, tongue, eventSuffix)
}

// TierWildcard formats the tier-wide subscription pattern scbe.<tier>.*.
func TierWildcard(tier Tier) string {
	return fmt.Sprintf("scbe.%s.*", tier)
}

// Matches reports whether topic satisfies pattern: either an exact string
// match, or pattern is a tier wildcard (scbe.<tier>.*) and topic shares
// that tier prefix.
func Matches(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := pattern[:len(pattern)-1] // keep the trailing dot
		return strings.HasPrefix(topic, prefix)
	}
	return false
}
