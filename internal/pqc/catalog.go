// Package pqc implements the catalog and registry of post-quantum
// cryptographic algorithms used by the governance kernel (spec §4.2).
//
// The catalog is a fixed, immutable table of algorithm descriptors. The
// registry maps a descriptor name to an injectable implementation; entries
// with no registered implementation are served by an auto-materialized
// stub that generates correctly-sized artifacts but refuses to verify —
// the kernel must never assume a stub's signature is good.
package pqc

// Family names one of the five post-quantum hardness assumptions a
// descriptor is built on.
type Family string

const (
	FamilyLattice       Family = "lattice"
	FamilyHashBased     Family = "hash-based"
	FamilyCodeBased     Family = "code-based"
	FamilyIsogeny       Family = "isogeny"
	FamilyMultivariate  Family = "multivariate"
)

// Kind distinguishes a KEM descriptor from a signature descriptor.
type Kind string

const (
	KindKEM       Kind = "kem"
	KindSignature Kind = "signature"
)

// Descriptor names an algorithm and its exact on-wire sizes. Sizes are
// normative: any implementation registered under a descriptor's name MUST
// produce artifacts of exactly these lengths. The registry itself does not
// check lengths: the stub implementations reject wrongly-sized keys and
// ciphertexts on encapsulate, decapsulate and sign, and the CIRCL-backed
// implementations reject keys they cannot unmarshal.
type Descriptor struct {
	Name   string
	Family Family
	Level  int // NIST security level, 1-5
	Kind   Kind

	PublicKeySize int
	SecretKeySize int

	// CiphertextSize applies to KEM descriptors; SignatureSize applies to
	// signature descriptors. Exactly one is nonzero for a given Kind.
	CiphertextSize int
	SignatureSize  int

	// SharedSecretSize applies to KEM descriptors only.
	SharedSecretSize int
}

// catalog is the immutable set of algorithm descriptors known to this
// kernel. It is never mutated after package init; Clear/registration only
// ever touch the implementation registry, never this table.
var catalog = map[string]Descriptor{
	"ML-KEM-768": {
		Name: "ML-KEM-768", Family: FamilyLattice, Level: 3, Kind: KindKEM,
		PublicKeySize: 1184, SecretKeySize: 2400, CiphertextSize: 1088, SharedSecretSize: 32,
	},
	"ML-DSA-65": {
		Name: "ML-DSA-65", Family: FamilyLattice, Level: 3, Kind: KindSignature,
		PublicKeySize: 1952, SecretKeySize: 4032, SignatureSize: 3309,
	},
	"FrodoKEM-976-AES": {
		Name: "FrodoKEM-976-AES", Family: FamilyLattice, Level: 3, Kind: KindKEM,
		PublicKeySize: 15632, SecretKeySize: 31296, CiphertextSize: 15744, SharedSecretSize: 24,
	},
	"Classic-McEliece-460896": {
		Name: "Classic-McEliece-460896", Family: FamilyCodeBased, Level: 3, Kind: KindKEM,
		PublicKeySize: 524160, SecretKeySize: 13608, CiphertextSize: 188, SharedSecretSize: 32,
	},
	"SPHINCS+-SHA2-128s": {
		Name: "SPHINCS+-SHA2-128s", Family: FamilyHashBased, Level: 1, Kind: KindSignature,
		PublicKeySize: 32, SecretKeySize: 64, SignatureSize: 7856,
	},
	"Rainbow-I": {
		Name: "Rainbow-I", Family: FamilyMultivariate, Level: 1, Kind: KindSignature,
		PublicKeySize: 161600, SecretKeySize: 103648, SignatureSize: 66,
	},
	"SIKE-like-Isogeny-434": {
		Name: "SIKE-like-Isogeny-434", Family: FamilyIsogeny, Level: 1, Kind: KindKEM,
		PublicKeySize: 330, SecretKeySize: 374, CiphertextSize: 346, SharedSecretSize: 16,
	},
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, bool) {
	d, ok := catalog[name]
	return d, ok
}

// List returns every descriptor name in the catalog, unordered.
func List() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
