package kernel

import (
	"encoding/hex"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/pqc"
)

// ManifestState is the human-readable state of the active manifest in a
// StatusReport.
type ManifestState string

const (
	ManifestAbsent  ManifestState = "absent"
	ManifestStale   ManifestState = "stale"
	ManifestCurrent ManifestState = "current"
)

// StatusReport is the programmatic status surface spec §6 calls for:
// "{ algorithms available, laws ok, manifest state, ledger length, head
// hash, replay store kind }". This is the only status surface the core
// exposes; the operator-facing doctor/status/logs/health commands that
// render it are an external front-end concern.
type StatusReport struct {
	AlgorithmsAvailable []string
	LawsOK              bool
	ManifestState       ManifestState
	LedgerLength        uint64
	LedgerHeadHash      string
	ReplayStoreKind     string
}

// Status assembles a StatusReport from the runtime's current health signals
// and the given replay store's self-reported kind. It never errors: a
// ledger read failure is reflected in LedgerLength/LedgerHeadHash being
// zero-valued, not a returned error, since status reporting must never
// itself become a new fail-closed gate.
func Status(rt Runtime, replayStoreKind string) StatusReport {
	report := StatusReport{
		AlgorithmsAvailable: pqc.ListRegistered(),
		LawsOK:              governance.VerifyImmutableLawsHash(rt.Laws),
		ManifestState:       ManifestAbsent,
		ReplayStoreKind:     replayStoreKind,
	}

	if rt.ManifestPresent {
		if governance.IsManifestStale(rt.Manifest, rt.NowMono) {
			report.ManifestState = ManifestStale
		} else {
			report.ManifestState = ManifestCurrent
		}
	}

	if rt.Ledger != nil {
		if length, head, err := rt.Ledger.Snapshot(); err == nil {
			report.LedgerLength = length
			report.LedgerHeadHash = hex.EncodeToString(head[:])
		}
	}

	return report
}
