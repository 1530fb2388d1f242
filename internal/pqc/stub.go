package pqc

import "github.com/aethermoore/scbe/internal/platform"

// stubKEM auto-materializes correctly-sized artifacts for a descriptor with
// no registered implementation. The artifacts are random bytes from
// crypto/rand, not zero-filled. It never produces a usable
// shared secret that two independently-instantiated stubs would agree on
// by coincidence (the encapsulated "ciphertext" embeds the random bytes
// used to derive the "shared secret", so Decapsulate can recover it) — but
// it carries no real post-quantum hardness and must never be mistaken for
// one. Callers that need a real KEM must RegisterKEM a real backend.
type stubKEM struct {
	descriptor Descriptor
}

func (s *stubKEM) GenerateKeyPair() (publicKey, secretKey []byte, err error) {
	pub, err := platform.RandomBytes(s.descriptor.PublicKeySize)
	if err != nil {
		return nil, nil, err
	}
	sec, err := platform.RandomBytes(s.descriptor.SecretKeySize)
	if err != nil {
		return nil, nil, err
	}
	return pub, sec, nil
}

func (s *stubKEM) Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	if len(publicKey) != s.descriptor.PublicKeySize {
		return nil, nil, ErrInvalidSize
	}
	seed, err := platform.RandomBytes(s.descriptor.SharedSecretSize)
	if err != nil {
		return nil, nil, err
	}
	ct := make([]byte, s.descriptor.CiphertextSize)
	copy(ct, seed)
	ss := platform.Sha256(seed)
	return ct, ss[:s.descriptor.SharedSecretSize], nil
}

func (s *stubKEM) Decapsulate(secretKey, ciphertext []byte) (sharedSecret []byte, err error) {
	if len(secretKey) != s.descriptor.SecretKeySize {
		return nil, ErrInvalidSize
	}
	if len(ciphertext) != s.descriptor.CiphertextSize {
		return nil, ErrInvalidSize
	}
	seed := ciphertext[:s.descriptor.SharedSecretSize]
	ss := platform.Sha256(seed)
	return ss[:s.descriptor.SharedSecretSize], nil
}

// stubSignature auto-materializes correctly-sized artifacts but MUST fail
// closed on Verify: a stub is a placeholder, not a weaker algorithm, and
// the kernel treats any call to its Verify as a cryptographic failure
// (ErrStubVerify), never as "the signature did not match."
type stubSignature struct {
	descriptor Descriptor
}

func (s *stubSignature) GenerateKeyPair() (publicKey, secretKey []byte, err error) {
	pub, err := platform.RandomBytes(s.descriptor.PublicKeySize)
	if err != nil {
		return nil, nil, err
	}
	sec, err := platform.RandomBytes(s.descriptor.SecretKeySize)
	if err != nil {
		return nil, nil, err
	}
	return pub, sec, nil
}

func (s *stubSignature) Sign(secretKey, message []byte) (signature []byte, err error) {
	if len(secretKey) != s.descriptor.SecretKeySize {
		return nil, ErrInvalidSize
	}
	return platform.RandomBytes(s.descriptor.SignatureSize)
}

func (s *stubSignature) Verify(publicKey, message, signature []byte) (bool, error) {
	return false, ErrStubVerify
}
