// Package config provides configuration loading, validation, and hot-reload
// for the governance kernel.
//
// Configuration file: /etc/scbe/config.yaml (default)
// Schema version: 1
//
// Hot-reload:
//   - The process listens for SIGHUP.
//   - On SIGHUP: re-read and re-validate config.yaml, and log the outcome.
//   - The reloaded values are not applied: running components keep the
//     configuration they were started with until the process restarts.
//   - If the new config is invalid, an error is logged and the process keeps
//     running. The process does NOT crash on invalid hot-reload config.
//
// Validation:
//   - All required fields must be present.
//   - Numeric ranges enforced (fusion weights sum to 1, rates in [0,1]).
//   - File paths must be absolute.
//   - Invalid config on startup: the process refuses to start (fatal error).
//   - Invalid config on hot-reload: logged, old config retained.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Version, GitCommit, BuildTime are injected at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Config is the root configuration structure for the governance kernel.
// All fields have defaults; see Defaults() for values.
type Config struct {
	// SchemaVersion must be "1". Future versions will trigger migration.
	SchemaVersion string `yaml:"schema_version"`

	// NodeID is a unique identifier for this kernel instance. Used in
	// event-bus envelopes and ledger entries.
	// Default: hostname.
	NodeID string `yaml:"node_id"`

	// Tongue is this node's AetherLex tongue (one of KO/AV/RU/CA/UM/DR),
	// fixing its phase offset and golden-ratio vote weight.
	Tongue string `yaml:"tongue"`

	Agent         AgentConfig         `yaml:"agent"`
	Fusion        FusionConfig        `yaml:"fusion"`
	Swarm         SwarmConfig         `yaml:"swarm"`
	Replay        ReplayConfig        `yaml:"replay"`
	Consensus     ConsensusConfig     `yaml:"consensus"`
	Storage       StorageConfig       `yaml:"storage"`
	EventBus      EventBusConfig      `yaml:"eventbus"`
	SyncEngine    SyncEngineConfig    `yaml:"syncengine"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AgentConfig holds per-agent lifecycle parameters (spec §4.14).
type AgentConfig struct {
	// HeartbeatInterval is how often an active agent emits a heartbeat.
	// Default: 5s.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// Timeout is how long a peer may go silent before the monitor marks it
	// offline. Default: 15s.
	Timeout time.Duration `yaml:"timeout"`

	// CoherenceDecayRate is the per-second coherence decay applied between
	// heartbeats. Default: 0.001.
	CoherenceDecayRate float64 `yaml:"coherence_decay_rate"`

	// MaxTrackedNonces is the configured bound for the per-agent
	// replay-protection nonce set. Default: 10000. It is validated here but
	// not read by the agent package, which uses its own MaxTrackedNonces
	// constant.
	MaxTrackedNonces int `yaml:"max_tracked_nonces"`

	// SignatureAlgorithm names the pqc catalog entry used for per-agent
	// keypairs. Default: ML-DSA-65.
	SignatureAlgorithm string `yaml:"signature_algorithm"`
}

// FusionConfig holds the fused-trust scoring weights (spec §4.7).
// WeightHyperbolic, WeightSwarm, and WeightGeometric must sum to 1.0.
type FusionConfig struct {
	WeightHyperbolic float64 `yaml:"weight_hyperbolic"`
	WeightSwarm      float64 `yaml:"weight_swarm"`
	WeightGeometric  float64 `yaml:"weight_geometric"`
}

// SwarmConfig holds swarm-dynamics and quarantine-consensus parameters
// (spec §4.7). Both fields are validated here but not read by the swarm
// package, which applies its own QuarantineNeighborCount and
// QuarantineSuspicionThreshold constants.
type SwarmConfig struct {
	// QuarantineNeighborCount is the number of distinct neighbors whose
	// suspicion must clear QuarantineSuspicionThreshold before an agent is
	// quarantined by its peers. Default: 3.
	QuarantineNeighborCount int `yaml:"quarantine_neighbor_count"`

	// QuarantineSuspicionThreshold is the per-neighbor suspicion level that
	// counts toward QuarantineNeighborCount. Default: 3.0.
	QuarantineSuspicionThreshold float64 `yaml:"quarantine_suspicion_threshold"`
}

// ReplayConfig holds replay-guard parameters (spec §4.8).
type ReplayConfig struct {
	// TTL bounds how long a (provider_id, request_id) pair is remembered.
	// Default: 5m.
	TTL time.Duration `yaml:"ttl"`

	// StoreKind selects the replay Store backend: "memory" or "bolt".
	// Default: bolt.
	StoreKind string `yaml:"store_kind"`

	// MaxTracked bounds the in-memory store's entry count. Default: 100000.
	MaxTracked int `yaml:"max_tracked"`
}

// ConsensusConfig holds BFT vote-tallying parameters (spec §4.12).
type ConsensusConfig struct {
	// TotalAgents is the swarm size consensus rounds are sized against.
	TotalAgents int `yaml:"total_agents"`

	// TimeoutMs bounds how old a vote may be before it is dropped as stale.
	// Default: 30000.
	TimeoutMs int64 `yaml:"timeout_ms"`

	// Weighted selects weighted (golden-ratio tongue weight x confidence)
	// tallying over raw majority counting. Default: true.
	Weighted bool `yaml:"weighted"`
}

// StorageConfig holds BoltDB parameters.
type StorageConfig struct {
	// DBPath is the absolute path to the BoltDB file.
	// Default: /var/lib/scbe/scbe.db.
	DBPath string `yaml:"db_path"`

	// RetentionDays is the ledger retention period. Default: 30.
	RetentionDays int `yaml:"retention_days"`
}

// EventBusConfig holds the topic-addressed pub/sub backend parameters
// (spec §4.15).
type EventBusConfig struct {
	// Backend selects "mock" (in-process, tests) or "websocket" (real).
	// Default: websocket.
	Backend string `yaml:"backend"`

	// ListenAddr is the websocket listen address. Default: 0.0.0.0:9443.
	ListenAddr string `yaml:"listen_addr"`

	// Peers is the static list of peer websocket URLs to dial outbound.
	Peers []string `yaml:"peers"`

	// EnvelopeTTL is the maximum age of an inbound envelope before
	// rejection. Default: 30s.
	EnvelopeTTL time.Duration `yaml:"envelope_ttl"`
}

// SyncEngineConfig holds disconnected-sync parameters (spec §4.16).
type SyncEngineConfig struct {
	// Enabled gates the sync engine. Default: false (standalone mode).
	Enabled bool `yaml:"enabled"`

	// ContactCheckInterval is how often the contact graph is polled for a
	// newly active window to a peer. Default: 10s.
	ContactCheckInterval time.Duration `yaml:"contact_check_interval"`
}

// ObservabilityConfig holds metrics and logging parameters.
type ObservabilityConfig struct {
	// MetricsAddr is the Prometheus metrics HTTP bind address.
	// Default: 127.0.0.1:9091.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls the minimum log level (debug, info, warn, error).
	// Default: info.
	LogLevel string `yaml:"log_level"`

	// LogFormat controls the log output format (json, console).
	// Default: json.
	LogFormat string `yaml:"log_format"`
}

// DefaultDBPath mirrors the storage package constant for use in config defaults.
const DefaultDBPath = "/var/lib/scbe/scbe.db"

// Defaults returns a Config populated with all default values.
func Defaults() Config {
	hostname, _ := os.Hostname()
	return Config{
		SchemaVersion: "1",
		NodeID:        hostname,
		Tongue:        "KO",
		Agent: AgentConfig{
			HeartbeatInterval:  5 * time.Second,
			Timeout:            15 * time.Second,
			CoherenceDecayRate: 0.001,
			MaxTrackedNonces:   10000,
			SignatureAlgorithm: "ML-DSA-65",
		},
		Fusion: FusionConfig{
			WeightHyperbolic: 0.4,
			WeightSwarm:      0.35,
			WeightGeometric:  0.25,
		},
		Swarm: SwarmConfig{
			QuarantineNeighborCount:      3,
			QuarantineSuspicionThreshold: 3.0,
		},
		Replay: ReplayConfig{
			TTL:        5 * time.Minute,
			StoreKind:  "bolt",
			MaxTracked: 100000,
		},
		Consensus: ConsensusConfig{
			TotalAgents: 7,
			TimeoutMs:   30000,
			Weighted:    true,
		},
		Storage: StorageConfig{
			DBPath:        DefaultDBPath,
			RetentionDays: 30,
		},
		EventBus: EventBusConfig{
			Backend:     "websocket",
			ListenAddr:  "0.0.0.0:9443",
			EnvelopeTTL: 30 * time.Second,
		},
		SyncEngine: SyncEngineConfig{
			Enabled:              false,
			ContactCheckInterval: 10 * time.Second,
		},
		Observability: ObservabilityConfig{
			MetricsAddr: "127.0.0.1:9091",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}

// Load reads and validates a config file from the given path.
// Returns the merged config (defaults overridden by file values).
// Returns an error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: validation failed: %w", err)
	}

	return &cfg, nil
}

// fusionWeightEpsilon tolerates floating-point rounding in a YAML-authored
// weight triple that is meant to sum to 1.0.
const fusionWeightEpsilon = 1e-6

var validTongues = map[string]bool{"KO": true, "AV": true, "RU": true, "CA": true, "UM": true, "DR": true}

// Validate checks all config fields for correctness.
// Returns a descriptive error listing all violations found.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.SchemaVersion != "1" {
		errs = append(errs, fmt.Sprintf("schema_version must be \"1\", got %q", cfg.SchemaVersion))
	}
	if cfg.NodeID == "" {
		errs = append(errs, "node_id must not be empty")
	}
	if !validTongues[cfg.Tongue] {
		errs = append(errs, fmt.Sprintf("tongue must be one of KO/AV/RU/CA/UM/DR, got %q", cfg.Tongue))
	}
	if cfg.Agent.HeartbeatInterval <= 0 {
		errs = append(errs, "agent.heartbeat_interval must be > 0")
	}
	if cfg.Agent.Timeout <= cfg.Agent.HeartbeatInterval {
		errs = append(errs, "agent.timeout must be greater than agent.heartbeat_interval")
	}
	if cfg.Agent.CoherenceDecayRate < 0 || cfg.Agent.CoherenceDecayRate > 1 {
		errs = append(errs, fmt.Sprintf("agent.coherence_decay_rate must be in [0, 1], got %f", cfg.Agent.CoherenceDecayRate))
	}
	if cfg.Agent.MaxTrackedNonces < 1 {
		errs = append(errs, "agent.max_tracked_nonces must be >= 1")
	}

	weightSum := cfg.Fusion.WeightHyperbolic + cfg.Fusion.WeightSwarm + cfg.Fusion.WeightGeometric
	if cfg.Fusion.WeightHyperbolic < 0 || cfg.Fusion.WeightSwarm < 0 || cfg.Fusion.WeightGeometric < 0 {
		errs = append(errs, "all fusion weights must be >= 0")
	}
	if math.Abs(weightSum-1.0) > fusionWeightEpsilon {
		errs = append(errs, fmt.Sprintf("fusion weights must sum to 1.0, got %f", weightSum))
	}

	if cfg.Swarm.QuarantineNeighborCount < 1 {
		errs = append(errs, "swarm.quarantine_neighbor_count must be >= 1")
	}
	if cfg.Swarm.QuarantineSuspicionThreshold <= 0 {
		errs = append(errs, "swarm.quarantine_suspicion_threshold must be > 0")
	}

	if cfg.Replay.TTL <= 0 {
		errs = append(errs, "replay.ttl must be > 0")
	}
	if cfg.Replay.StoreKind != "memory" && cfg.Replay.StoreKind != "bolt" {
		errs = append(errs, fmt.Sprintf("replay.store_kind must be \"memory\" or \"bolt\", got %q", cfg.Replay.StoreKind))
	}
	if cfg.Replay.MaxTracked < 1 {
		errs = append(errs, "replay.max_tracked must be >= 1")
	}

	if cfg.Consensus.TotalAgents < 1 {
		errs = append(errs, "consensus.total_agents must be >= 1")
	}
	if cfg.Consensus.TimeoutMs < 1 {
		errs = append(errs, "consensus.timeout_ms must be >= 1")
	}

	if cfg.Storage.DBPath == "" {
		errs = append(errs, "storage.db_path must not be empty")
	} else if !filepath.IsAbs(cfg.Storage.DBPath) {
		errs = append(errs, fmt.Sprintf("storage.db_path must be absolute, got %q", cfg.Storage.DBPath))
	}
	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("storage.retention_days must be >= 1, got %d", cfg.Storage.RetentionDays))
	}

	if cfg.EventBus.Backend != "mock" && cfg.EventBus.Backend != "websocket" {
		errs = append(errs, fmt.Sprintf("eventbus.backend must be \"mock\" or \"websocket\", got %q", cfg.EventBus.Backend))
	}
	if cfg.EventBus.Backend == "websocket" && cfg.EventBus.ListenAddr == "" {
		errs = append(errs, "eventbus.listen_addr is required when eventbus.backend is \"websocket\"")
	}
	if cfg.EventBus.EnvelopeTTL <= 0 {
		errs = append(errs, "eventbus.envelope_ttl must be > 0")
	}

	if cfg.SyncEngine.Enabled && cfg.SyncEngine.ContactCheckInterval <= 0 {
		errs = append(errs, "syncengine.contact_check_interval must be > 0 when syncengine.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s",
			joinStrings(errs, "\n  - "))
	}
	return nil
}

// joinStrings joins a slice of strings with a separator.
func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	result := ss[0]
	for _, s := range ss[1:] {
		result += sep + s
	}
	return result
}
