// registry.go — injectable KEM/signature implementations.
//
// Registration follows the same shape as the teacher's contrib plugin
// registry (a package-level, mutex-guarded map populated by callers,
// usually from an init() function): RegisterKEM/RegisterSignature replace
// whatever is currently bound to a descriptor name — including a stub —
// without any caller of GetKEM/GetSignature needing to change.
package pqc

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAlgorithm is returned when a name is not in the catalog.
var ErrUnknownAlgorithm = errors.New("pqc: unknown algorithm")

// ErrInvalidSize is returned when a key, ciphertext, or signature does not
// match the descriptor's declared size.
var ErrInvalidSize = errors.New("pqc: invalid artifact size")

// ErrStubVerify is returned by a stub signature's Verify method. Per spec,
// calling verify on a stub is fatal: callers MUST treat this error as a
// cryptographic failure, never as "verification failed for this message."
var ErrStubVerify = errors.New("pqc: verify invoked on unregistered stub algorithm")

// KEM is the interface a key-encapsulation-mechanism implementation must
// satisfy to be registered under a descriptor name.
type KEM interface {
	GenerateKeyPair() (publicKey, secretKey []byte, err error)
	Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error)
	Decapsulate(secretKey, ciphertext []byte) (sharedSecret []byte, err error)
}

// Signature is the interface a digital-signature implementation must
// satisfy to be registered under a descriptor name.
type Signature interface {
	GenerateKeyPair() (publicKey, secretKey []byte, err error)
	Sign(secretKey, message []byte) (signature []byte, err error)
	Verify(publicKey, message, signature []byte) (bool, error)
}

type registry struct {
	mu   sync.RWMutex
	kems map[string]KEM
	sigs map[string]Signature
}

var globalRegistry = &registry{
	kems: make(map[string]KEM),
	sigs: make(map[string]Signature),
}

// RegisterKEM binds impl to name, replacing any stub or prior registration.
// name must already exist in the catalog as a KEM descriptor.
func RegisterKEM(name string, impl KEM) error {
	d, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if d.Kind != KindKEM {
		return fmt.Errorf("pqc: %s is not a KEM descriptor", name)
	}
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.kems[name] = impl
	return nil
}

// RegisterSignature binds impl to name, replacing any stub or prior
// registration. name must already exist in the catalog as a signature
// descriptor.
func RegisterSignature(name string, impl Signature) error {
	d, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if d.Kind != KindSignature {
		return fmt.Errorf("pqc: %s is not a signature descriptor", name)
	}
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.sigs[name] = impl
	return nil
}

// GetKEM returns the implementation registered under name, or an
// auto-materialized fail-closed stub if none has been registered.
func GetKEM(name string) (KEM, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if d.Kind != KindKEM {
		return nil, fmt.Errorf("pqc: %s is not a KEM descriptor", name)
	}

	globalRegistry.mu.RLock()
	impl, found := globalRegistry.kems[name]
	globalRegistry.mu.RUnlock()
	if found {
		return impl, nil
	}
	return &stubKEM{descriptor: d}, nil
}

// GetSignature returns the implementation registered under name, or an
// auto-materialized fail-closed stub if none has been registered.
func GetSignature(name string) (Signature, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if d.Kind != KindSignature {
		return nil, fmt.Errorf("pqc: %s is not a signature descriptor", name)
	}

	globalRegistry.mu.RLock()
	impl, found := globalRegistry.sigs[name]
	globalRegistry.mu.RUnlock()
	if found {
		return impl, nil
	}
	return &stubSignature{descriptor: d}, nil
}

// ListRegistered returns the names with a non-stub implementation bound.
func ListRegistered() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	names := make([]string, 0, len(globalRegistry.kems)+len(globalRegistry.sigs))
	for name := range globalRegistry.kems {
		names = append(names, name)
	}
	for name := range globalRegistry.sigs {
		names = append(names, name)
	}
	return names
}

// Clear removes every registered implementation, reverting every catalog
// entry to its stub. Intended for test isolation between cases that
// register different backends under the same name.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.kems = make(map[string]KEM)
	globalRegistry.sigs = make(map[string]Signature)
}
