package pqc

import (
	"fmt"

	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// MLKEM768 is a real KEM backend for the "ML-KEM-768" catalog entry,
// implemented on top of CIRCL's constant-time ML-KEM-768 scheme. Register
// it with RegisterKEM("ML-KEM-768", pqc.MLKEM768{}) to replace the stub.
type MLKEM768 struct{}

func (MLKEM768) scheme() circlkem.Scheme { return mlkem768.Scheme() }

func (b MLKEM768) GenerateKeyPair() (publicKey, secretKey []byte, err error) {
	pk, sk, err := b.scheme().GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mlkem768 keygen: %w", err)
	}
	pubBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mlkem768 marshal public key: %w", err)
	}
	secBytes, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mlkem768 marshal secret key: %w", err)
	}
	return pubBytes, secBytes, nil
}

func (b MLKEM768) Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	pk, err := b.scheme().UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mlkem768 public key: %v", ErrInvalidSize, err)
	}
	ct, ss, err := b.scheme().Encapsulate(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("pqc: mlkem768 encapsulate: %w", err)
	}
	return ct, ss, nil
}

func (b MLKEM768) Decapsulate(secretKey, ciphertext []byte) (sharedSecret []byte, err error) {
	sk, err := b.scheme().UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: mlkem768 secret key: %v", ErrInvalidSize, err)
	}
	ss, err := b.scheme().Decapsulate(sk, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("pqc: mlkem768 decapsulate: %w", err)
	}
	return ss, nil
}
