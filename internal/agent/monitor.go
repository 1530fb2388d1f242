package agent

import "sync"

// OfflineCallback is invoked once per agent the monitor marks offline.
type OfflineCallback func(agentID string)

// Monitor observes a set of peers by ID and marks any whose last
// heartbeat is older than its configured timeout as offline (spec §4.14:
// "the monitor observes peers and marks silent agents offline after a
// bounded interval").
type Monitor struct {
	mu      sync.Mutex
	timeout uint64 // nanoseconds
	peers   map[string]*Agent
}

// NewMonitor returns a Monitor with the given timeout (nanoseconds).
func NewMonitor(timeoutNanos uint64) *Monitor {
	if timeoutNanos == 0 {
		timeoutNanos = uint64(DefaultAgentTimeout.Nanoseconds())
	}
	return &Monitor{timeout: timeoutNanos, peers: make(map[string]*Agent)}
}

// Watch registers a *Agent for monitoring.
func (m *Monitor) Watch(a *Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[a.ID] = a
}

// Forget stops monitoring the agent with the given ID.
func (m *Monitor) Forget(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.peers, agentID)
}

// Sweep marks every watched agent whose (nowMono - LastHeartbeatMono)
// exceeds the configured timeout as offline, invoking cb (if non-nil) for
// each one newly marked. Already-offline or quarantined agents are left
// alone: the monitor only demotes live agents.
func (m *Monitor) Sweep(nowMono uint64, cb OfflineCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, a := range m.peers {
		if a.Status == StatusOffline || a.Status == StatusQuarantine {
			continue
		}
		if nowMono < a.LastHeartbeatMono {
			continue
		}
		if nowMono-a.LastHeartbeatMono > m.timeout {
			a.Status = StatusOffline
			if cb != nil {
				cb(id)
			}
		}
	}
}
