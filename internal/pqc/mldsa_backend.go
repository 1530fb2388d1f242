package pqc

import (
	"crypto"
	"fmt"

	circlsign "github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// MLDSA65 is a real signature backend for the "ML-DSA-65" catalog entry,
// implemented on top of CIRCL's ML-DSA-65 scheme. Register it with
// RegisterSignature("ML-DSA-65", pqc.MLDSA65{}) to replace the stub.
type MLDSA65 struct{}

func (MLDSA65) scheme() circlsign.Scheme { return mldsa65.Scheme() }

func (b MLDSA65) GenerateKeyPair() (publicKey, secretKey []byte, err error) {
	pk, sk, err := b.scheme().GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mldsa65 keygen: %w", err)
	}
	pubBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mldsa65 marshal public key: %w", err)
	}
	secBytes, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mldsa65 marshal secret key: %w", err)
	}
	return pubBytes, secBytes, nil
}

func (b MLDSA65) Sign(secretKey, message []byte) (signature []byte, err error) {
	sk, err := b.scheme().UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: mldsa65 secret key: %v", ErrInvalidSize, err)
	}
	sig := b.scheme().Sign(sk, message, crypto.Hash(0))
	return sig, nil
}

func (b MLDSA65) Verify(publicKey, message, signature []byte) (bool, error) {
	pk, err := b.scheme().UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false, fmt.Errorf("%w: mldsa65 public key: %v", ErrInvalidSize, err)
	}
	return b.scheme().Verify(pk, message, signature, crypto.Hash(0)), nil
}
