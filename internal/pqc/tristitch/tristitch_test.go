package tristitch_test

import (
	"testing"

	"github.com/aethermoore/scbe/internal/pqc"
	"github.com/aethermoore/scbe/internal/pqc/tristitch"
)

func TestStitchRejectsEmptyAndOversizedLists(t *testing.T) {
	if _, err := tristitch.Stitch(nil, nil); err != tristitch.ErrEmptyRequest {
		t.Fatalf("expected ErrEmptyRequest, got %v", err)
	}

	reqs := make([]tristitch.Request, 5)
	for i := range reqs {
		reqs[i] = tristitch.Request{AlgorithmName: "ML-KEM-768", PublicKey: make([]byte, 1184)}
	}
	if _, err := tristitch.Stitch(reqs, nil); err != tristitch.ErrTooManyRequests {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}
}

func TestStitchRoundTripsAndCountsFamilies(t *testing.T) {
	pqc.Clear()

	k1, _ := pqc.GetKEM("ML-KEM-768")
	pub1, _, err := k1.GenerateKeyPair()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2, _ := pqc.GetKEM("Classic-McEliece-460896")
	pub2, _, err := k2.GenerateKeyPair()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := tristitch.Stitch([]tristitch.Request{
		{AlgorithmName: "ML-KEM-768", PublicKey: pub1},
		{AlgorithmName: "Classic-McEliece-460896", PublicKey: pub2},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FamilyCount != 2 {
		t.Fatalf("expected 2 distinct families, got %d", result.FamilyCount)
	}
	if len(result.KEMResults) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(result.KEMResults))
	}
	if len(result.Ciphertexts) != 2 {
		t.Fatalf("expected 2 ciphertexts, got %d", len(result.Ciphertexts))
	}
	if result.ClassicalHybridMixed {
		t.Fatal("expected no classical hybrid mixing without a classical secret")
	}
	var zero [32]byte
	if result.CombinedSecret == zero {
		t.Fatal("combined secret must not be all-zero")
	}
}

func TestStitchSameFamilyCountsOnce(t *testing.T) {
	pqc.Clear()
	k, _ := pqc.GetKEM("ML-KEM-768")
	pubA, _, _ := k.GenerateKeyPair()
	pubB, _, _ := k.GenerateKeyPair()

	result, err := tristitch.Stitch([]tristitch.Request{
		{AlgorithmName: "ML-KEM-768", PublicKey: pubA},
		{AlgorithmName: "ML-KEM-768", PublicKey: pubB},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FamilyCount != 1 {
		t.Fatalf("expected a single family for two ML-KEM-768 contributions, got %d", result.FamilyCount)
	}
}

func TestStitchDiffersAcrossIndependentEncapsulations(t *testing.T) {
	pqc.Clear()
	k, _ := pqc.GetKEM("ML-KEM-768")
	pub, _, _ := k.GenerateKeyPair()

	// Encapsulate is randomized per call, so two stitches against the same
	// public key must produce different combined secrets.
	r1, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-KEM-768", PublicKey: pub}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-KEM-768", PublicKey: pub}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.CombinedSecret == r2.CombinedSecret {
		t.Fatal("expected independent encapsulations to produce different combined secrets")
	}
}

func TestStitchMixesClassicalHybrid(t *testing.T) {
	pqc.Clear()
	k, _ := pqc.GetKEM("ML-KEM-768")
	pub, _, _ := k.GenerateKeyPair()

	withoutClassical, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-KEM-768", PublicKey: pub}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withoutClassical.ClassicalHybridMixed {
		t.Fatal("expected ClassicalHybridMixed to be false with no classical secret")
	}

	withClassical, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-KEM-768", PublicKey: pub}}, []byte("a classical ECDH secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !withClassical.ClassicalHybridMixed {
		t.Fatal("expected ClassicalHybridMixed to be true with a classical secret")
	}
}

func TestStitchRejectsUnknownAlgorithm(t *testing.T) {
	_, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "not-a-real-algorithm", PublicKey: []byte("x")}}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown algorithm")
	}
}

func TestStitchRejectsSignatureDescriptor(t *testing.T) {
	_, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-DSA-65", PublicKey: make([]byte, 1952)}}, nil)
	if err == nil {
		t.Fatal("expected an error when a signature descriptor is used as a KEM")
	}
}

func TestStitchFailsClosedOnBadPublicKeySize(t *testing.T) {
	pqc.Clear()
	_, err := tristitch.Stitch([]tristitch.Request{{AlgorithmName: "ML-KEM-768", PublicKey: []byte("too short")}}, nil)
	if err == nil {
		t.Fatal("expected an error for a malformed public key")
	}
}
