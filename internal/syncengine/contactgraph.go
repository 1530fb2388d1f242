// Package syncengine implements the offline/disconnected sync protocol
// (spec §4.16): delayed-tolerant delta exchange over predictable contact
// windows between agents that are not continuously connected.
//
// Grounded on internal/gossip/federated_baseline.go's periodic,
// eligibility-filtered exchange round (there: baselines gated by
// min_samples and shared on a fixed interval; here: ledger events and
// manifest state gated by contact-window availability) and reusing
// internal/governance/manifest.go's ResolveConflict for the manifest half
// of a sync round instead of reimplementing conflict resolution.
package syncengine

import (
	"sync"
	"time"
)

// ContactWindow is one predicted opportunity to exchange data with a peer.
type ContactWindow struct {
	Peer          string
	Start         time.Time
	End           time.Time
	Latency       time.Duration
	CapacityBytes int
	Confidence    float64 // 0-1, how reliable this prediction is
}

// active reports whether now falls within the window.
func (w ContactWindow) active(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// expired reports whether the window has fully elapsed as of now.
func (w ContactWindow) expired(now time.Time) bool {
	return now.After(w.End)
}

// ContactGraph tracks predicted contact windows to every known peer and
// answers routing questions about which peer is reachable right now.
type ContactGraph struct {
	mu      sync.RWMutex
	windows map[string][]ContactWindow
}

// NewContactGraph returns an empty ContactGraph.
func NewContactGraph() *ContactGraph {
	return &ContactGraph{windows: make(map[string][]ContactWindow)}
}

// AddWindow records a predicted contact window with a peer.
func (g *ContactGraph) AddWindow(w ContactWindow) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.windows[w.Peer] = append(g.windows[w.Peer], w)
}

// ActiveWindows returns every window to peer that is active at now.
func (g *ContactGraph) ActiveWindows(peer string, now time.Time) []ContactWindow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var active []ContactWindow
	for _, w := range g.windows[peer] {
		if w.active(now) {
			active = append(active, w)
		}
	}
	return active
}

// Prune discards every window that has fully elapsed as of now, across
// every peer.
func (g *ContactGraph) Prune(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for peer, ws := range g.windows {
		kept := ws[:0]
		for _, w := range ws {
			if !w.expired(now) {
				kept = append(kept, w)
			}
		}
		if len(kept) == 0 {
			delete(g.windows, peer)
		} else {
			g.windows[peer] = kept
		}
	}
}

// BestPeer returns the peer with the highest-confidence window active at
// now, preferring greater capacity to break confidence ties.
func (g *ContactGraph) BestPeer(now time.Time) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var bestPeer string
	var bestWindow ContactWindow
	found := false
	for peer, ws := range g.windows {
		for _, w := range ws {
			if !w.active(now) {
				continue
			}
			if !found || w.Confidence > bestWindow.Confidence ||
				(w.Confidence == bestWindow.Confidence && w.CapacityBytes > bestWindow.CapacityBytes) {
				bestPeer, bestWindow, found = peer, w, true
			}
		}
	}
	return bestPeer, found
}
