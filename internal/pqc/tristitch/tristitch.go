// Package tristitch implements the TriStitch combiner (spec §4.3): it
// composes 1-4 independent KEM encapsulations into a single 32-byte shared
// secret, with an optional classical-hybrid contribution XOR-mixed in, and
// keeps a full per-algorithm audit trail.
//
// Modeled on the teacher's severity formula shape (escalation/severity.go):
// collect N typed inputs, fold them into one output value, and retain a
// structured breakdown of every input that contributed.
package tristitch

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/hkdf"

	"github.com/aethermoore/scbe/internal/pqc"
)

// domainSeparator is mixed into every stitch to bind the output to this
// specific construction; changing it changes every derived secret.
var domainSeparator = []byte("TriStitch-v1")

// ErrEmptyRequest is returned when Stitch is called with no KEMs.
var ErrEmptyRequest = errors.New("tristitch: at least one KEM is required")

// ErrTooManyRequests is returned when Stitch is called with more than 4 KEMs.
var ErrTooManyRequests = errors.New("tristitch: at most 4 KEMs may be combined")

// Request names one KEM encapsulation to perform as part of the stitch.
type Request struct {
	AlgorithmName string
	PublicKey     []byte
}

// KEMAudit records the public parameters of one KEM contribution, for
// inclusion in the decision capsule's audit trail. It never carries key
// material.
type KEMAudit struct {
	AlgorithmName    string
	Family           pqc.Family
	Level            int
	PublicKeySize    int
	SecretKeySize    int
	CiphertextSize   int
	SharedSecretSize int
}

// Result is the outcome of a TriStitch combination.
type Result struct {
	// CombinedSecret is the final 32-byte shared secret.
	CombinedSecret [32]byte

	// FamilyCount is the number of distinct PQC families present among the
	// combined KEMs.
	FamilyCount int

	// ClassicalHybridMixed is true when a classical secret was XOR-mixed
	// into CombinedSecret.
	ClassicalHybridMixed bool

	// KEMResults is the full per-algorithm audit trail, in request order.
	KEMResults []KEMAudit

	// Ciphertexts are the encapsulated ciphertexts, parallel to the input
	// requests, to be transmitted to the holder of the matching secret keys.
	Ciphertexts [][]byte
}

// Stitch runs each requested KEM's encapsulation against its public key,
// concatenates the resulting shared secrets behind a fixed domain
// separator, hashes the concatenation with SHA-256, and optionally XOR-mixes
// in a classical-hybrid contribution derived from classicalSecret via HKDF
// (extract with the domain separator as salt, then expand). Failure of any underlying KEM is fatal to the whole
// stitch: a partial combination is never returned.
func Stitch(requests []Request, classicalSecret []byte) (Result, error) {
	if len(requests) == 0 {
		return Result{}, ErrEmptyRequest
	}
	if len(requests) > 4 {
		return Result{}, ErrTooManyRequests
	}

	h := sha256.New()
	h.Write(domainSeparator)

	families := make(map[pqc.Family]bool, len(requests))
	audits := make([]KEMAudit, 0, len(requests))
	ciphertexts := make([][]byte, 0, len(requests))

	for _, req := range requests {
		descriptor, ok := pqc.Lookup(req.AlgorithmName)
		if !ok {
			return Result{}, fmt.Errorf("tristitch: %w: %s", pqc.ErrUnknownAlgorithm, req.AlgorithmName)
		}
		if descriptor.Kind != pqc.KindKEM {
			return Result{}, fmt.Errorf("tristitch: %s is not a KEM descriptor", req.AlgorithmName)
		}

		impl, err := pqc.GetKEM(req.AlgorithmName)
		if err != nil {
			return Result{}, fmt.Errorf("tristitch: load %s: %w", req.AlgorithmName, err)
		}

		ciphertext, sharedSecret, err := impl.Encapsulate(req.PublicKey)
		if err != nil {
			return Result{}, fmt.Errorf("tristitch: encapsulate %s: %w", req.AlgorithmName, err)
		}

		h.Write([]byte(req.AlgorithmName))
		h.Write(sharedSecret)

		families[descriptor.Family] = true
		audits = append(audits, KEMAudit{
			AlgorithmName:    descriptor.Name,
			Family:           descriptor.Family,
			Level:            descriptor.Level,
			PublicKeySize:    descriptor.PublicKeySize,
			SecretKeySize:    descriptor.SecretKeySize,
			CiphertextSize:   descriptor.CiphertextSize,
			SharedSecretSize: descriptor.SharedSecretSize,
		})
		ciphertexts = append(ciphertexts, ciphertext)
	}

	var combined [32]byte
	copy(combined[:], h.Sum(nil))

	mixed := false
	if len(classicalSecret) > 0 {
		kdf := hkdf.New(sha256.New, classicalSecret, domainSeparator, []byte("classical-hybrid"))
		contribution := make([]byte, 32)
		if _, err := kdf.Read(contribution); err != nil {
			return Result{}, fmt.Errorf("tristitch: derive classical contribution: %w", err)
		}
		for i := range combined {
			combined[i] ^= contribution[i]
		}
		mixed = true
	}

	return Result{
		CombinedSecret:       combined,
		FamilyCount:          len(families),
		ClassicalHybridMixed: mixed,
		KEMResults:           audits,
		Ciphertexts:          ciphertexts,
	}, nil
}
