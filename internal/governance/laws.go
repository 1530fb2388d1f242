// Package governance implements the immutable laws and flux manifest that
// together form the kernel's "physics" and time-bounded policy (spec
// §4.10): laws are hash-locked at construction and must re-verify
// bit-for-bit; manifests are signed, epoch-ordered, and expire.
//
// Grounded on internal/governance/constitutional.go's ConstitutionalKernel:
// that file's axiom list and ParameterBounds become this package's
// ImmutableLaws and trust-state-scaled thresholds, and its
// ValidateDecision/computeDecisionHash shape carries over to
// VerifyImmutableLawsHash and the capsule hashing the kernel package (C11)
// builds on top of this one.
package governance

import (
	"errors"

	"github.com/aethermoore/scbe/internal/platform"
)

// ErrLawsCorrupt is returned when a law's recomputed hash does not match
// its recorded laws_hash.
var ErrLawsCorrupt = errors.New("governance: immutable laws hash mismatch")

// ImmutableLaws are the process-wide, read-mostly constants every decision
// is checked against: the metric used for scoring, the set of recognized
// tongues, the geometry model in force, and per-layer behavior switches.
type ImmutableLaws struct {
	MetricSignature string            `canonical:"metric_signature"`
	TonguesSet      []string          `canonical:"tongues_set"`
	GeometryModel   string            `canonical:"geometry_model"`
	LayerBehaviors  map[string]string `canonical:"layer_behaviors"`
	LawsHash        [64]byte          `canonical:"-"`
}

// CreateImmutableLaws computes and sets LawsHash over every other field,
// canonicalized. Call this once at process start; the result is meant to
// be held read-only thereafter.
func CreateImmutableLaws(metricSignature, geometryModel string, tonguesSet []string, layerBehaviors map[string]string) ImmutableLaws {
	laws := ImmutableLaws{
		MetricSignature: metricSignature,
		TonguesSet:      append([]string(nil), tonguesSet...),
		GeometryModel:   geometryModel,
		LayerBehaviors:  cloneStringMap(layerBehaviors),
	}
	laws.LawsHash = platform.Sha512(platform.Canonicalize(laws))
	return laws
}

// VerifyImmutableLawsHash reports whether laws.LawsHash matches the hash of
// its other fields — true unless laws have been corrupted or tampered with
// since construction.
func VerifyImmutableLawsHash(laws ImmutableLaws) bool {
	check := laws
	check.LawsHash = [64]byte{}
	want := platform.Sha512(platform.Canonicalize(check))
	return want == laws.LawsHash
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
