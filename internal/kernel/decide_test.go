package kernel_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/kernel"
	"github.com/aethermoore/scbe/internal/ledger"
)

type fixedSigner struct{ sig []byte }

func (f fixedSigner) Sign(message []byte) ([]byte, error) { return f.sig, nil }

type fixedVerifier struct{ ok bool }

func (f fixedVerifier) Verify(message, signature []byte) (bool, error) { return f.ok, nil }

func testLaws() governance.ImmutableLaws {
	return governance.CreateImmutableLaws(
		"hyperbolic-mmx-v1",
		"poincare-ball",
		[]string{"KO", "AV", "RU", "CA", "UM", "DR"},
		map[string]string{"L0": "fail-closed"},
	)
}

func testManifest(epoch, validFrom, validUntil uint64) governance.FluxManifest {
	return governance.FluxManifest{
		ManifestID:    "epoch-manifest",
		EpochID:       epoch,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		PolicyWeights: map[string]float64{"default": 1.0},
		Thresholds:    nil,
	}
}

func baseRuntime(t *testing.T) kernel.Runtime {
	t.Helper()
	manifest := testManifest(1, 0, 1000)
	store := ledger.NewMemoryStore()
	led := ledger.New(store, fixedSigner{sig: []byte("ledger-sig")})

	return kernel.Runtime{
		Laws:              testLaws(),
		Manifest:          manifest,
		ManifestPresent:   true,
		ManifestVerifier:  fixedVerifier{ok: true},
		KeysValid:         true,
		TimeTrusted:       true,
		KeyRotationNeeded: false,
		IntegrityOK:       true,
		Ledger:            led,
		LedgerVerifier:    fixedVerifier{ok: true},
		LedgerHasEvents:   false,
		VoxelRoot:         []byte{0x01, 0x02, 0x03},
		NowMono:           500,
		Signer:            fixedSigner{sig: []byte("capsule-sig")},
	}
}

func req(action string) kernel.EnforcementRequest {
	return kernel.EnforcementRequest{Action: action, Subject: "agent-1", Object: "resource-1"}
}

// S1: every scalar comfortably inside the default thresholds allows the
// request and appends exactly one capsule to the ledger.
func TestDecideAllowsWhenScalarsWithinThresholds(t *testing.T) {
	rt := baseRuntime(t)
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		return governance.Scalars{Coherence: 0.9, Conflict: 0.1, Drift: 0.05, WallCost: 0.2}
	}

	result, err := kernel.Decide(req("resource.read"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Allow {
		t.Fatalf("expected ALLOW, got %s (reasons %v)", result.Decision, result.ReasonCodes)
	}
	if len(result.ReasonCodes) != 0 {
		t.Fatalf("expected no reason codes, got %v", result.ReasonCodes)
	}
	if len(result.Proof.Signature) == 0 {
		t.Fatal("expected the capsule to carry a signature")
	}

	length, _, err := rt.Ledger.Snapshot()
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}
	if length != 1 {
		t.Fatalf("expected ledger length 1 after one decision, got %d", length)
	}
}

// S2: two failed scalars deny the request, with reason codes in the fixed
// coherence/conflict/drift/wall_cost order.
func TestDecideDeniesOnTwoViolations(t *testing.T) {
	rt := baseRuntime(t)
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		return governance.Scalars{Coherence: 0.1, Conflict: 0.9, Drift: 0.05, WallCost: 0.2}
	}

	result, err := kernel.Decide(req("resource.write"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Deny {
		t.Fatalf("expected DENY, got %s", result.Decision)
	}
	want := []string{governance.ReasonLowCoherence, governance.ReasonHighConflict}
	if len(result.ReasonCodes) != len(want) {
		t.Fatalf("expected reasons %v, got %v", want, result.ReasonCodes)
	}
	for i, r := range want {
		if result.ReasonCodes[i] != r {
			t.Fatalf("expected reasons %v, got %v", want, result.ReasonCodes)
		}
	}
}

// S3: exactly one failed scalar quarantines rather than denies.
func TestDecideQuarantinesOnSingleViolation(t *testing.T) {
	rt := baseRuntime(t)
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		return governance.Scalars{Coherence: 0.1, Conflict: 0.1, Drift: 0.05, WallCost: 0.2}
	}

	result, err := kernel.Decide(req("resource.write"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Quarantine {
		t.Fatalf("expected QUARANTINE, got %s", result.Decision)
	}
	if len(result.ReasonCodes) != 1 || result.ReasonCodes[0] != governance.ReasonLowCoherence {
		t.Fatalf("expected [LOW_COHERENCE], got %v", result.ReasonCodes)
	}
}

// S4: a stale manifest with otherwise clean scalars defers rather than
// allows. A single violation would quarantine regardless of trust state, so
// this exercises scalars that clear even T2's 1.5x-tightened thresholds.
func TestDecideDefersOnStaleManifest(t *testing.T) {
	rt := baseRuntime(t)
	rt.Manifest = testManifest(1, 0, 100)
	rt.NowMono = 500 // past ValidUntil

	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		// Clears the default thresholds and T2's tightened ones alike.
		return governance.Scalars{Coherence: 0.95, Conflict: 0.1, Drift: 0.05, WallCost: 0.2}
	}

	result, err := kernel.Decide(req("resource.read"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Defer {
		t.Fatalf("expected DEFER, got %s (reasons %v)", result.Decision, result.ReasonCodes)
	}
	if len(result.ReasonCodes) != 1 || result.ReasonCodes[0] != kernel.ReasonManifestStale {
		t.Fatalf("expected [MANIFEST_STALE], got %v", result.ReasonCodes)
	}
}

// S5: corrupted laws trip the fail-closed gate before scoring ever runs,
// and the request is denied regardless of how favorable the scalars are.
func TestDecideFailsClosedOnCorruptLaws(t *testing.T) {
	rt := baseRuntime(t)
	rt.Laws.LawsHash[0] ^= 0xFF // corrupt the recorded hash
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		t.Fatal("scoring must not run when the fail-closed gate has tripped")
		return governance.Scalars{}
	}

	result, err := kernel.Decide(req("resource.write"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Deny {
		t.Fatalf("expected DENY, got %s", result.Decision)
	}
	if len(result.ReasonCodes) != 1 || result.ReasonCodes[0] != kernel.ReasonLawsMissingOrCorrupt {
		t.Fatalf("expected [LAWS_MISSING_OR_CORRUPT], got %v", result.ReasonCodes)
	}
}

// Safe operations (config.read, audit.export, diagnostics.run) proceed even
// when the fail-closed gate trips, so operators retain diagnostic access.
func TestDecideAllowsSafeOpsOnGateFailure(t *testing.T) {
	rt := baseRuntime(t)
	rt.Laws.LawsHash[0] ^= 0xFF
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		t.Fatal("scoring must not run when the fail-closed gate has tripped")
		return governance.Scalars{}
	}

	result, err := kernel.Decide(req("diagnostics.run"), rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != kernel.Allow {
		t.Fatalf("expected safe op to ALLOW despite gate failure, got %s", result.Decision)
	}
}

// Appended capsules chain correctly across repeated decisions: each new
// ledger event folds in the previous one's hash.
func TestDecideAppendsCapsuleChainAcrossCalls(t *testing.T) {
	rt := baseRuntime(t)
	rt.ComputeMMX = func(kernel.EnforcementRequest) governance.Scalars {
		return governance.Scalars{Coherence: 0.9, Conflict: 0.1, Drift: 0.05, WallCost: 0.2}
	}

	for i := 0; i < 3; i++ {
		if _, err := kernel.Decide(req("resource.read"), rt); err != nil {
			t.Fatalf("unexpected error on decision %d: %v", i, err)
		}
	}

	length, _, err := rt.Ledger.Snapshot()
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}
	if length != 3 {
		t.Fatalf("expected ledger length 3, got %d", length)
	}
	if err := rt.Ledger.Verify(fixedVerifier{ok: true}); err != nil {
		t.Fatalf("expected the capsule chain to verify intact, got %v", err)
	}
}
