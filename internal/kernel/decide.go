package kernel

import (
	"time"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/ledger"
	"github.com/aethermoore/scbe/internal/platform"
)

// CapsuleSigner signs the canonical bytes of a capsule. Typically a pqc
// signature bound to the kernel's own signing key.
type CapsuleSigner interface {
	Sign(message []byte) ([]byte, error)
}

// Runtime is the OfflineRuntime DECIDE is evaluated against: the laws and
// manifest in force, key/ledger/voxel health, the current monotonic clock,
// and the scoring function the geometric/agentic substrate (C6/C7/C12)
// supplies.
type Runtime struct {
	Laws     governance.ImmutableLaws
	Manifest governance.FluxManifest

	ManifestPresent  bool
	ManifestVerifier governance.Verifier

	KeysValid         bool
	TimeTrusted       bool
	KeyRotationNeeded bool
	IntegrityOK       bool

	Ledger         *ledger.Ledger
	LedgerVerifier ledger.Verifier
	LedgerHasEvents bool

	VoxelRoot []byte
	NowMono   uint64

	ComputeMMX func(EnforcementRequest) governance.Scalars

	Signer CapsuleSigner
}

// gateFailure records a tripped fail-closed gate check, if any.
type gateFailure struct {
	reason string
}

// checkGate runs the fail-closed gate (DECIDE step 1): laws present and
// hash-valid, manifest present and signature-valid, keys present, ledger
// intact, voxelRoot non-empty.
func checkGate(rt Runtime) *gateFailure {
	if !governance.VerifyImmutableLawsHash(rt.Laws) {
		return &gateFailure{reason: ReasonLawsMissingOrCorrupt}
	}
	if !rt.ManifestPresent {
		return &gateFailure{reason: ReasonManifestInvalid}
	}
	if rt.ManifestVerifier != nil {
		ok, err := governance.VerifyManifest(rt.Manifest, rt.ManifestVerifier)
		if err != nil || !ok {
			return &gateFailure{reason: ReasonManifestInvalid}
		}
	}
	if !rt.KeysValid {
		return &gateFailure{reason: ReasonKeysMissing}
	}
	if rt.LedgerHasEvents && rt.LedgerVerifier != nil {
		if err := rt.Ledger.Verify(rt.LedgerVerifier); err != nil {
			return &gateFailure{reason: ReasonLedgerCorrupt}
		}
	}
	if len(rt.VoxelRoot) == 0 {
		return &gateFailure{reason: ReasonVoxelRootMissing}
	}
	return nil
}

// trustState derives the TrustState from rt's health signals (DECIDE step
// 2), folding manifest staleness into "manifest current".
func trustState(rt Runtime) governance.TrustState {
	manifestCurrent := rt.ManifestPresent && !governance.IsManifestStale(rt.Manifest, rt.NowMono)
	return governance.DeriveTrustState(governance.TrustInputs{
		KeysValid:         rt.KeysValid,
		TimeTrusted:       rt.TimeTrusted,
		ManifestCurrent:   manifestCurrent,
		KeyRotationNeeded: rt.KeyRotationNeeded,
		IntegrityOK:       rt.IntegrityOK,
	})
}

// decidePolicy applies DECIDE step 6's fixed decision table.
func decidePolicy(state governance.TrustState, violations []string) (Decision, []string) {
	reasons := append([]string(nil), violations...)

	if state == governance.T4IntegrityDegraded {
		return Quarantine, append(reasons, ReasonIntegrityDegraded)
	}
	if state == governance.T3KeyRolloverRequired && len(violations) > 0 {
		return Deny, append(reasons, ReasonKeyRolloverRequired)
	}
	if len(violations) >= 2 {
		return Deny, reasons
	}
	if len(violations) == 1 {
		return Quarantine, reasons
	}
	if state == governance.T2ManifestStale {
		return Defer, append(reasons, ReasonManifestStale)
	}
	return Allow, reasons
}

// stateRoot computes state_root = SHA512(ledger.root ‖ voxelRoot).
func stateRoot(rt Runtime) ([64]byte, error) {
	var head [64]byte
	if rt.LedgerHasEvents {
		events, err := rt.Ledger.EventsSince(0)
		if err != nil {
			return [64]byte{}, err
		}
		if len(events) > 0 {
			head = events[len(events)-1].EventHash
		}
	}
	return platform.Sha512Concat(head[:], rt.VoxelRoot), nil
}

// Decide is the single entry point: DECIDE (spec §4.11). It evaluates the
// fail-closed gate, derives trust state, scores the request, applies the
// decision policy, builds a signed capsule, and appends it to the ledger —
// all before returning.
func Decide(request EnforcementRequest, rt Runtime) (Result, error) {
	if failure := checkGate(rt); failure != nil {
		if safeOps[request.Action] {
			return Result{Decision: Allow}, nil
		}
		return denyOnGateFailure(request, rt, failure.reason)
	}

	state := trustState(rt)
	scalars := rt.ComputeMMX(request)
	thresholds := governance.LookupThresholds(state, &rt.Manifest)
	violations := governance.Violations(scalars, thresholds)

	decision, reasons := decidePolicy(state, violations)

	root, err := stateRoot(rt)
	if err != nil {
		return Result{}, err
	}

	capsule, err := buildAndAppendCapsule(request, rt, decision, reasons, root)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Decision:          decision,
		ReasonCodes:       reasons,
		GovernanceScalars: scalars,
		Proof:             capsule,
	}, nil
}

// denyOnGateFailure builds and appends a capsule recording a gate failure,
// then returns DENY. Best-effort: capsule hashes use whatever laws/manifest
// state is available, since the gate failure may mean one of them is the
// very thing that's corrupt.
func denyOnGateFailure(request EnforcementRequest, rt Runtime, reason string) (Result, error) {
	root, err := stateRoot(rt)
	if err != nil {
		root = [64]byte{}
	}
	capsule, err := buildAndAppendCapsule(request, rt, Deny, []string{reason}, root)
	if err != nil {
		return Result{}, err
	}
	return Result{Decision: Deny, ReasonCodes: []string{reason}, Proof: capsule}, nil
}

func buildAndAppendCapsule(request EnforcementRequest, rt Runtime, decision Decision, reasons []string, root [64]byte) (Capsule, error) {
	manifestHash := platform.Sha512(platform.Canonicalize(rt.Manifest))
	timestamp := rt.NowMono
	if timestamp == 0 {
		timestamp = uint64(time.Now().UnixNano())
	}
	ih := inputsHash(request, "")

	signingBytes := capsuleSigningBytes(ih, rt.Laws.LawsHash, manifestHash, root, decision, reasons, timestamp)

	var signature []byte
	var err error
	if rt.Signer != nil {
		signature, err = rt.Signer.Sign(signingBytes)
		if err != nil {
			return Capsule{}, err
		}
	}

	capsule := Capsule{
		InputsHash:         ih,
		LawsHash:           rt.Laws.LawsHash,
		ManifestHash:       manifestHash,
		StateRoot:          root,
		Decision:           decision,
		ReasonCodes:        reasons,
		TimestampMonotonic: timestamp,
		Signature:          signature,
	}

	if rt.Ledger != nil {
		if _, err := rt.Ledger.Append(platform.Canonicalize(capsule)); err != nil {
			return Capsule{}, err
		}
	}
	return capsule, nil
}
