package syncengine

import (
	"errors"
	"fmt"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/ledger"
)

// ErrForkDetected is returned by ApplyPayload when the inbound event delta
// does not extend the local ledger's current head: the two sides have
// diverged and cannot be reconciled by appending.
var ErrForkDetected = errors.New("syncengine: payload does not extend local ledger head")

// SyncPayload is one round's worth of delta state exchanged between an
// initiator and a responder over a contact window: the ledger's delta
// audit events (which also carry any capsule-issuance events, since
// capsules are appended to the same chain), an optional set of per-agent
// position deltas, and an optional manifest carried when the responder's
// epoch is ahead of what the initiator last saw.
type SyncPayload struct {
	FromIndex   uint64
	Events      []ledger.Event
	VoxelDeltas map[string]hyperbolic.Point
	Manifest    *governance.FluxManifest
}

// BuildPayload assembles the payload a responder sends back to an
// initiator that last synced through sinceIndex and last saw manifest
// epoch requesterManifestEpoch.
func BuildPayload(store ledger.Store, sinceIndex uint64, voxels map[string]hyperbolic.Point, localManifest governance.FluxManifest, requesterManifestEpoch uint64) (SyncPayload, error) {
	events, err := store.EventsSince(sinceIndex)
	if err != nil {
		return SyncPayload{}, fmt.Errorf("syncengine: build payload: %w", err)
	}
	payload := SyncPayload{FromIndex: sinceIndex, Events: events, VoxelDeltas: voxels}
	if localManifest.EpochID > requesterManifestEpoch {
		m := localManifest
		payload.Manifest = &m
	}
	return payload, nil
}

// ApplyPayload verifies that payload.Events forms an unbroken, ordered
// extension of store's current head and durably persists each one,
// returning the new next-index. It applies nothing if any event in the
// delta would fork the chain.
func ApplyPayload(store ledger.Store, payload SyncPayload) (uint64, error) {
	head, err := store.Head()
	if err != nil {
		return 0, fmt.Errorf("syncengine: read head: %w", err)
	}
	nextIndex, err := store.NextIndex()
	if err != nil {
		return 0, fmt.Errorf("syncengine: read next index: %w", err)
	}

	expectedPrev := head
	expectedIndex := nextIndex
	for _, ev := range payload.Events {
		if ev.PrevHash != expectedPrev {
			return 0, ErrForkDetected
		}
		if ev.Index != expectedIndex {
			return 0, fmt.Errorf("%w: expected index %d, got %d", ErrForkDetected, expectedIndex, ev.Index)
		}
		expectedPrev = ev.EventHash
		expectedIndex++
	}
	for _, ev := range payload.Events {
		if err := store.Put(ev); err != nil {
			return 0, fmt.Errorf("syncengine: persist event %d: %w", ev.Index, err)
		}
		nextIndex++
	}
	return nextIndex, nil
}

// ResolveManifest folds an inbound manifest (if any) into the caller's
// local manifest using governance's own conflict-resolution rule: both
// sides are verified first, and resolution picks the higher-epoch
// manifest among the ones that verify.
func ResolveManifest(local governance.FluxManifest, inbound *governance.FluxManifest, verifier governance.Verifier) (governance.FluxManifest, error) {
	if inbound == nil {
		return local, nil
	}
	localValid, err := governance.VerifyManifest(local, verifier)
	if err != nil {
		return governance.FluxManifest{}, fmt.Errorf("syncengine: verify local manifest: %w", err)
	}
	inboundValid, err := governance.VerifyManifest(*inbound, verifier)
	if err != nil {
		return governance.FluxManifest{}, fmt.Errorf("syncengine: verify inbound manifest: %w", err)
	}
	return governance.ResolveConflict(local, localValid, *inbound, inboundValid)
}
