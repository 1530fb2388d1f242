package kernel

import "github.com/aethermoore/scbe/internal/platform"

// Capsule is the immutable record DECIDE produces for every authorization:
// four hashes binding the request, laws, manifest and ledger state to the
// decision, signed and appended to the ledger as its next event.
type Capsule struct {
	InputsHash         [64]byte
	LawsHash           [64]byte
	ManifestHash       [64]byte
	StateRoot          [64]byte
	Decision           Decision
	ReasonCodes        []string
	TimestampMonotonic uint64
	Signature          []byte
}

// capsuleSigningBytes returns the canonical bytes a capsule's signature is
// computed and verified over.
func capsuleSigningBytes(inputsHash, lawsHash, manifestHash, stateRoot [64]byte, decision Decision, reasons []string, timestamp uint64) []byte {
	return platform.Canonicalize(struct {
		InputsHash   [64]byte `canonical:"inputs_hash"`
		LawsHash     [64]byte `canonical:"laws_hash"`
		ManifestHash [64]byte `canonical:"manifest_hash"`
		StateRoot    [64]byte `canonical:"state_root"`
		Decision     string   `canonical:"decision"`
		Reasons      []string `canonical:"reasons"`
		Timestamp    uint64   `canonical:"timestamp"`
	}{inputsHash, lawsHash, manifestHash, stateRoot, string(decision), reasons, timestamp})
}

// inputsHash computes inputs_hash = SHA512(canonical({request, context})).
func inputsHash(request EnforcementRequest, contextTag string) [64]byte {
	return platform.Sha512(platform.Canonicalize(struct {
		Request EnforcementRequest `canonical:"request"`
		Context string              `canonical:"context"`
	}{request, contextTag}))
}
