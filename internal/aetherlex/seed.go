package aetherlex

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/hkdf"
)

// SeedOptions configures DeriveSeed.
type SeedOptions struct {
	// Tag domain-separates the derivation; different tags from the same
	// phrase produce unrelated seeds.
	Tag string

	// Supplemental is optional additional entropy mixed in alongside the
	// phrase (e.g. a hardware RNG sample); may be nil.
	Supplemental []byte

	// Length is the output seed length in bytes. Defaults to 64 if zero.
	Length int
}

// DeriveSeed derives a seed from phrase: the phrase text (plus any
// supplemental entropy) is used as HKDF input key material, domain-
// separated by opts.Tag, and expanded to opts.Length bytes (64 by default).
func DeriveSeed(phrase string, opts SeedOptions) ([]byte, error) {
	if _, err := ParsePhrase(phrase); err != nil {
		return nil, err
	}

	length := opts.Length
	if length == 0 {
		length = 64
	}

	ikm := make([]byte, 0, len(phrase)+len(opts.Supplemental))
	ikm = append(ikm, []byte(phrase)...)
	ikm = append(ikm, opts.Supplemental...)

	info := []byte("aetherlex-v1:" + opts.Tag)

	kdf := hkdf.New(sha256.New, ikm, nil, info)
	seed := make([]byte, length)
	if _, err := kdf.Read(seed); err != nil {
		return nil, fmt.Errorf("aetherlex: derive seed: %w", err)
	}
	return seed, nil
}

// ErrSeedTooShort is returned when a seed is shorter than the split
// operation requires.
var ErrSeedTooShort = errors.New("aetherlex: seed too short")

// SplitForMLKEM splits a 64-byte seed into the (d, z) pair used to
// deterministically derive an ML-KEM-768 keypair.
func SplitForMLKEM(seed []byte) (d [32]byte, z [32]byte, err error) {
	if len(seed) < 64 {
		return d, z, fmt.Errorf("%w: need 64 bytes, got %d", ErrSeedTooShort, len(seed))
	}
	copy(d[:], seed[:32])
	copy(z[:], seed[32:64])
	return d, z, nil
}

// SplitForMLDSA extracts the 32-byte xi seed used to deterministically
// derive an ML-DSA-65 keypair from a seed of at least 32 bytes.
func SplitForMLDSA(seed []byte) (xi [32]byte, err error) {
	if len(seed) < 32 {
		return xi, fmt.Errorf("%w: need at least 32 bytes, got %d", ErrSeedTooShort, len(seed))
	}
	copy(xi[:], seed[:32])
	return xi, nil
}
