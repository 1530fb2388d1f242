// Package binding implements geometric key binding (spec §4.4): it ties a
// 32-byte secret to a point in the 21-dimensional trust-state space so that
// any change to that point — down to a single bit in one coordinate's
// fixed-precision encoding — invalidates the binding.
//
// Grounded on luxfi-consensus/qzmq/qzmq.go's direct use of
// golang.org/x/crypto/hkdf for session-key expansion; the same library
// construction is reused here for boundKey derivation.
package binding

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/hkdf"
)

// StateDimensions is the fixed width of the geometric state vector this
// package binds keys to.
const StateDimensions = 21

// ErrWrongDimensions is returned when a state vector is not exactly
// StateDimensions long.
var ErrWrongDimensions = fmt.Errorf("binding: state vector must have exactly %d dimensions", StateDimensions)

// State is a 21-dimensional trust-state vector.
type State [StateDimensions]float64

// Options carries the optional contextual fields folded into the HKDF info
// string alongside the geometric fingerprint.
type Options struct {
	Domain string
	Norm   *float64
	Phase  *string
}

// Binding is the outcome of bindKeyToGeometry.
type Binding struct {
	BoundKey        [32]byte
	GeoFingerprint  [32]byte
	KeyID           string // first 8 bytes of SHA-256(boundKey), hex-encoded
	StateNorm       float64
}

// GeometricFingerprint hashes a fixed-precision binary encoding of every
// coordinate in state. Encoding each float64 via its IEEE-754 bit pattern
// (big-endian) means any bit change in any coordinate changes the digest;
// there is no rounding step to absorb a tiny perturbation.
func GeometricFingerprint(state State) [32]byte {
	buf := make([]byte, 8*StateDimensions)
	for i, coord := range state {
		binary.BigEndian.PutUint64(buf[i*8:(i+1)*8], math.Float64bits(coord))
	}
	return sha256.Sum256(buf)
}

// StateNorm returns the Euclidean norm of state, used as optional context
// in BindKeyToGeometry and reported back in Binding.
func StateNorm(state State) float64 {
	var sumSquares float64
	for _, coord := range state {
		sumSquares += coord * coord
	}
	return math.Sqrt(sumSquares)
}

// BindKeyToGeometry derives a 32-byte key bound to secret and state:
//
//	boundKey = HKDF-Expand(secret, info = domain ‖ geoFingerprint ‖ optional{norm, phase}, 32)
//	keyId    = hex(SHA-256(boundKey)[:8])
func BindKeyToGeometry(secret []byte, state State, opts Options) (Binding, error) {
	fingerprint := GeometricFingerprint(state)
	info := buildInfo(opts, fingerprint)

	kdf := hkdf.Expand(sha256.New, secret, info)
	var boundKey [32]byte
	if _, err := kdf.Read(boundKey[:]); err != nil {
		return Binding{}, fmt.Errorf("binding: derive bound key: %w", err)
	}

	digest := sha256.Sum256(boundKey[:])
	keyID := hex.EncodeToString(digest[:8])

	return Binding{
		BoundKey:       boundKey,
		GeoFingerprint: fingerprint,
		KeyID:          keyID,
		StateNorm:      StateNorm(state),
	}, nil
}

// VerifyGeometricBinding recomputes the binding for secret and state and
// compares it against boundKey in constant time. A 1e-15 perturbation in
// any single coordinate of state produces an unrelated fingerprint and
// therefore an unrelated boundKey, so this rejects even minute drift.
func VerifyGeometricBinding(boundKey []byte, secret []byte, state State, opts Options) (bool, error) {
	if len(boundKey) != 32 {
		return false, errors.New("binding: boundKey must be 32 bytes")
	}
	recomputed, err := BindKeyToGeometry(secret, state, opts)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(boundKey, recomputed.BoundKey[:]) == 1, nil
}

func buildInfo(opts Options, fingerprint [32]byte) []byte {
	info := make([]byte, 0, len(opts.Domain)+32+16)
	info = append(info, []byte(opts.Domain)...)
	info = append(info, fingerprint[:]...)
	if opts.Norm != nil {
		var normBytes [8]byte
		binary.BigEndian.PutUint64(normBytes[:], math.Float64bits(*opts.Norm))
		info = append(info, normBytes[:]...)
	}
	if opts.Phase != nil {
		info = append(info, []byte(*opts.Phase)...)
	}
	return info
}
