// Package ledger implements the append-only, hash-chained audit ledger
// (spec §4.9): every event's hash folds in the previous event's hash, so a
// single writer can append new events cheaply while any reader can
// re-verify the entire chain against a signer's public key.
//
// Grounded on internal/storage/bolt.go's ledger bucket (ACID
// Tx.Commit() writes, sortable keys, single-writer/many-reader access) —
// persistence here is delegated to a Store backed by that same bbolt
// design, re-scoped from PID-keyed process entries to hash-chained audit
// events.
package ledger

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/aethermoore/scbe/internal/platform"
)

// ErrChainBroken is returned by Verify when a recomputed hash does not
// match the stored event hash.
var ErrChainBroken = errors.New("ledger: hash chain broken")

// ErrSignatureInvalid is returned by Verify when an event's signature does
// not verify against the signer's public key.
var ErrSignatureInvalid = errors.New("ledger: event signature invalid")

// Event is one append-only audit ledger record.
type Event struct {
	Index     uint64
	Timestamp time.Time
	PrevHash  [64]byte
	EventHash [64]byte
	EventData []byte
	Signature []byte
}

// Signer produces a signature over a message. Typically a pqc.Signature
// bound to a specific secret key.
type Signer interface {
	Sign(message []byte) (signature []byte, err error)
}

// Verifier checks a signature over a message against a fixed public key.
// Typically a pqc.Signature bound to a specific public key.
type Verifier interface {
	Verify(message, signature []byte) (bool, error)
}

// Store is the persistence contract a Ledger is built on. Implementations
// must guarantee that Append is only ever called by a single writer at a
// time; EventsSince may be called concurrently by many readers.
type Store interface {
	// Head returns the most recently appended event's hash, or the zero
	// hash if the store is empty.
	Head() ([64]byte, error)

	// NextIndex returns the index the next appended event should use.
	NextIndex() (uint64, error)

	// Put durably persists event.
	Put(event Event) error

	// EventsSince returns every event with Index >= index, in order.
	EventsSince(index uint64) ([]Event, error)
}

// Ledger is the hash-chained audit log.
type Ledger struct {
	store  Store
	signer Signer
}

// New returns a Ledger backed by store, appending events signed by signer.
func New(store Store, signer Signer) *Ledger {
	return &Ledger{store: store, signer: signer}
}

// Append computes event_hash = SHA512(prev_hash ‖ event_data), signs it,
// and durably persists the new event, advancing the head.
func (l *Ledger) Append(eventData []byte) (Event, error) {
	prevHash, err := l.store.Head()
	if err != nil {
		return Event{}, fmt.Errorf("ledger: read head: %w", err)
	}
	index, err := l.store.NextIndex()
	if err != nil {
		return Event{}, fmt.Errorf("ledger: read next index: %w", err)
	}

	eventHash := platform.Sha512Concat(prevHash[:], eventData)

	signature, err := l.signer.Sign(eventHash[:])
	if err != nil {
		return Event{}, fmt.Errorf("ledger: sign event: %w", err)
	}

	event := Event{
		Index:     index,
		Timestamp: time.Now().UTC(),
		PrevHash:  prevHash,
		EventHash: eventHash,
		EventData: eventData,
		Signature: signature,
	}
	if err := l.store.Put(event); err != nil {
		return Event{}, fmt.Errorf("ledger: persist event: %w", err)
	}
	return event, nil
}

// EventsSince returns the suffix of the chain starting at index, for
// replication.
func (l *Ledger) EventsSince(index uint64) ([]Event, error) {
	return l.store.EventsSince(index)
}

// Verify walks the chain from the zero head, recomputing each event's hash
// and verifying each signature against signerPub. It returns an error naming
// the index of the first broken link or invalid signature, if any.
func (l *Ledger) Verify(signerPub Verifier) error {
	events, err := l.store.EventsSince(0)
	if err != nil {
		return fmt.Errorf("ledger: read chain: %w", err)
	}

	expectedPrev := [64]byte{}
	for _, event := range events {
		if subtle.ConstantTimeCompare(event.PrevHash[:], expectedPrev[:]) != 1 {
			return fmt.Errorf("%w: event %d prev_hash mismatch", ErrChainBroken, event.Index)
		}

		recomputed := platform.Sha512Concat(event.PrevHash[:], event.EventData)
		if subtle.ConstantTimeCompare(recomputed[:], event.EventHash[:]) != 1 {
			return fmt.Errorf("%w: event %d hash mismatch", ErrChainBroken, event.Index)
		}

		ok, err := signerPub.Verify(event.EventHash[:], event.Signature)
		if err != nil {
			return fmt.Errorf("%w: event %d: %v", ErrSignatureInvalid, event.Index, err)
		}
		if !ok {
			return fmt.Errorf("%w: event %d", ErrSignatureInvalid, event.Index)
		}

		expectedPrev = event.EventHash
	}
	return nil
}

// Snapshot returns a cheap, read-only view of the chain's current length
// and head hash, for status reporting. Readers take this snapshot instead
// of holding any lock across a full Verify.
func (l *Ledger) Snapshot() (length uint64, head [64]byte, err error) {
	length, err = l.store.NextIndex()
	if err != nil {
		return 0, [64]byte{}, fmt.Errorf("ledger: read next index: %w", err)
	}
	head, err = l.store.Head()
	if err != nil {
		return 0, [64]byte{}, fmt.Errorf("ledger: read head: %w", err)
	}
	return length, head, nil
}
