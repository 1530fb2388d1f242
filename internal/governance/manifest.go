package governance

import (
	"errors"

	"github.com/aethermoore/scbe/internal/platform"
)

// ErrManifestInvalid is returned when a manifest's signature does not
// verify, or when both manifests in a conflict resolution are invalid.
var ErrManifestInvalid = errors.New("governance: flux manifest signature invalid")

// Verifier mirrors ledger's Verifier contract so governance does not import
// the pqc package directly; callers bind a pqc.Signature to the manifest's
// configured signer key.
type Verifier interface {
	Verify(message, signature []byte) (bool, error)
}

// Thresholds is the policy-tunable quadruple C11 checks governance scalars
// against.
type Thresholds struct {
	CoherenceMin float64 `canonical:"coherence_min"`
	ConflictMax  float64 `canonical:"conflict_max"`
	DriftMax     float64 `canonical:"drift_max"`
	WallCostMax  float64 `canonical:"wall_cost_max"`
}

// DefaultThresholds are T0's base values absent a manifest override.
func DefaultThresholds() Thresholds {
	return Thresholds{CoherenceMin: 0.6, ConflictMax: 0.3, DriftMax: 0.2, WallCostMax: 0.8}
}

// FluxManifest is the time-bounded, signed policy document: weights,
// thresholds, and curvature parameters in force for one epoch.
type FluxManifest struct {
	ManifestID      string             `canonical:"manifest_id"`
	EpochID         uint64             `canonical:"epoch_id"`
	ValidFrom       uint64             `canonical:"valid_from"`
	ValidUntil      uint64             `canonical:"valid_until"`
	PolicyWeights   map[string]float64 `canonical:"policy_weights"`
	Thresholds      *Thresholds        `canonical:"thresholds"`
	CurvatureParams map[string]float64 `canonical:"curvature_params"`
	RequiredKeys    []string           `canonical:"required_keys"`
	Signature       []byte             `canonical:"-"`
}

// signingBytes returns the canonical encoding a manifest's signature is
// computed and verified over — everything except the signature itself.
func (m FluxManifest) signingBytes() []byte {
	unsigned := m
	unsigned.Signature = nil
	return platform.Canonicalize(unsigned)
}

// SigningBytes exposes signingBytes to callers outside this package that
// need to produce a manifest's first signature (e.g. a bootstrap path
// constructing epoch 0 before any signature exists to verify).
func SigningBytes(m FluxManifest) []byte {
	return m.signingBytes()
}

// VerifyManifest reports whether m's signature verifies under signerPub and
// whether valid_from < valid_until holds.
func VerifyManifest(m FluxManifest, signerPub Verifier) (bool, error) {
	if m.ValidFrom >= m.ValidUntil {
		return false, nil
	}
	ok, err := signerPub.Verify(m.signingBytes(), m.Signature)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// IsManifestStale reports whether now (monotonic nanoseconds) has passed
// the manifest's valid_until bound.
func IsManifestStale(m FluxManifest, nowMono uint64) bool {
	return nowMono > m.ValidUntil
}

// ResolveConflict picks between two candidate manifests, both already
// signature-checked by the caller. The higher-epoch manifest among the
// verified ones wins; if neither verifies, resolution is fatal — governance
// has no policy to operate under.
func ResolveConflict(aManifest FluxManifest, aValid bool, bManifest FluxManifest, bValid bool) (FluxManifest, error) {
	switch {
	case aValid && bValid:
		if bManifest.EpochID > aManifest.EpochID {
			return bManifest, nil
		}
		return aManifest, nil
	case aValid:
		return aManifest, nil
	case bValid:
		return bManifest, nil
	default:
		return FluxManifest{}, ErrManifestInvalid
	}
}
