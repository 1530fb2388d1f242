// Package kernel implements DECIDE (spec §4.11), the single entry point
// every authorization request passes through: a fail-closed gate, trust
// state derivation, deterministic scoring against governance thresholds,
// and a signed capsule appended to the audit ledger in one critical
// section.
//
// Grounded on the teacher's events.go (Processor.Run(ctx) critical section
// shape) and its escalation/state_machine.go + escalation/severity.go for
// the "weighted scalars → sequential thresholds → atomic decision" policy
// pattern Decide adapts from isolation-state escalation to
// ALLOW/DENY/QUARANTINE/DEFER.
package kernel

import "github.com/aethermoore/scbe/internal/governance"

// Decision is one of the four outcomes DECIDE can return.
type Decision string

const (
	Allow      Decision = "ALLOW"
	Deny       Decision = "DENY"
	Quarantine Decision = "QUARANTINE"
	Defer      Decision = "DEFER"
)

// Gate failure and policy reason codes.
const (
	ReasonLawsMissingOrCorrupt = "LAWS_MISSING_OR_CORRUPT"
	ReasonManifestInvalid      = "MANIFEST_INVALID"
	ReasonKeysMissing          = "KEYS_MISSING"
	ReasonLedgerCorrupt        = "LEDGER_CORRUPT"
	ReasonVoxelRootMissing     = "VOXEL_ROOT_MISSING"
	ReasonIntegrityDegraded   = "INTEGRITY_DEGRADED"
	ReasonKeyRolloverRequired = "KEY_ROLLOVER_REQUIRED"
	ReasonManifestStale       = "MANIFEST_STALE"
)

// safeOps may proceed even when the fail-closed gate trips, since refusing
// them would deny operators the very visibility needed to diagnose why the
// gate tripped in the first place.
var safeOps = map[string]bool{
	"config.read":     true,
	"audit.export":    true,
	"diagnostics.run": true,
}

// EnforcementRequest is DECIDE's input: what is being attempted, by whom,
// against what, and a hash binding the request's payload.
type EnforcementRequest struct {
	Action      string
	Subject     string
	Object      string
	PayloadHash [32]byte
}

// Result is DECIDE's output.
type Result struct {
	Decision           Decision
	ReasonCodes        []string
	GovernanceScalars  Scalars
	Proof              Capsule
}

// Scalars mirrors governance.Scalars; kept as a local alias so callers of
// this package don't need to import governance just to read a result.
type Scalars = governance.Scalars
