package syncengine

import (
	"testing"
	"time"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/hyperbolic"
	"github.com/aethermoore/scbe/internal/ledger"
)

type fixedSigner struct{ sig []byte }

func (f fixedSigner) Sign(message []byte) ([]byte, error) { return f.sig, nil }

type fixedVerifier struct{ ok bool }

func (f fixedVerifier) Verify(message, signature []byte) (bool, error) { return f.ok, nil }

func TestBuildAndApplyPayloadExtendsChain(t *testing.T) {
	responderStore := ledger.NewMemoryStore()
	l := ledger.New(responderStore, fixedSigner{sig: []byte("sig")})
	for i := 0; i < 3; i++ {
		if _, err := l.Append([]byte("event")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	voxels := map[string]hyperbolic.Point{"agent-1": {0.1, 0.2, 0.1}}
	payload, err := BuildPayload(responderStore, 0, voxels, governance.FluxManifest{EpochID: 1}, 1)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if len(payload.Events) != 3 {
		t.Fatalf("len(Events) = %d, want 3", len(payload.Events))
	}
	if payload.Manifest != nil {
		t.Fatal("same-epoch manifest should not be attached")
	}

	initiatorStore := ledger.NewMemoryStore()
	nextIndex, err := ApplyPayload(initiatorStore, payload)
	if err != nil {
		t.Fatalf("ApplyPayload: %v", err)
	}
	if nextIndex != 3 {
		t.Fatalf("nextIndex = %d, want 3", nextIndex)
	}

	applied, err := initiatorStore.EventsSince(0)
	if err != nil {
		t.Fatalf("EventsSince: %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("len(applied) = %d, want 3", len(applied))
	}
}

func TestApplyPayloadRejectsFork(t *testing.T) {
	responderStore := ledger.NewMemoryStore()
	l := ledger.New(responderStore, fixedSigner{sig: []byte("sig")})
	l.Append([]byte("a"))
	l.Append([]byte("b"))
	payload, err := BuildPayload(responderStore, 0, nil, governance.FluxManifest{}, 0)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}

	initiatorStore := ledger.NewMemoryStore()
	initiatorL := ledger.New(initiatorStore, fixedSigner{sig: []byte("different-sig")})
	initiatorL.Append([]byte("divergent event"))

	if _, err := ApplyPayload(initiatorStore, payload); err != ErrForkDetected {
		t.Fatalf("ApplyPayload = %v, want ErrForkDetected", err)
	}
}

func TestBuildPayloadAttachesNewerManifest(t *testing.T) {
	store := ledger.NewMemoryStore()
	payload, err := BuildPayload(store, 0, nil, governance.FluxManifest{EpochID: 5}, 3)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if payload.Manifest == nil || payload.Manifest.EpochID != 5 {
		t.Fatalf("Manifest = %+v, want epoch 5 attached", payload.Manifest)
	}
}

func TestResolveManifestPicksHigherEpochAmongValid(t *testing.T) {
	local := governance.FluxManifest{EpochID: 2, ValidFrom: 0, ValidUntil: 100}
	inbound := governance.FluxManifest{EpochID: 9, ValidFrom: 0, ValidUntil: 100}

	got, err := ResolveManifest(local, &inbound, fixedVerifier{ok: true})
	if err != nil {
		t.Fatalf("ResolveManifest: %v", err)
	}
	if got.EpochID != 9 {
		t.Fatalf("EpochID = %d, want 9", got.EpochID)
	}
}

func TestResolveManifestNilInboundKeepsLocal(t *testing.T) {
	local := governance.FluxManifest{EpochID: 4}
	got, err := ResolveManifest(local, nil, fixedVerifier{ok: true})
	if err != nil {
		t.Fatalf("ResolveManifest: %v", err)
	}
	if got.EpochID != 4 {
		t.Fatalf("EpochID = %d, want 4", got.EpochID)
	}
}

func TestContactGraphActiveWindowsAndPrune(t *testing.T) {
	g := NewContactGraph()
	now := time.Unix(1_700_000_000, 0)
	g.AddWindow(ContactWindow{Peer: "p1", Start: now.Add(-time.Minute), End: now.Add(time.Minute), Confidence: 0.5})
	g.AddWindow(ContactWindow{Peer: "p1", Start: now.Add(-time.Hour), End: now.Add(-time.Minute * 30), Confidence: 0.9})

	active := g.ActiveWindows("p1", now)
	if len(active) != 1 {
		t.Fatalf("len(active) = %d, want 1", len(active))
	}

	g.Prune(now)
	remaining := g.ActiveWindows("p1", now)
	if len(remaining) != 1 {
		t.Fatalf("after Prune, len(remaining) = %d, want 1", len(remaining))
	}
}

func TestContactGraphBestPeerPrefersConfidence(t *testing.T) {
	g := NewContactGraph()
	now := time.Unix(1_700_000_000, 0)
	g.AddWindow(ContactWindow{Peer: "low", Start: now.Add(-time.Minute), End: now.Add(time.Minute), Confidence: 0.3})
	g.AddWindow(ContactWindow{Peer: "high", Start: now.Add(-time.Minute), End: now.Add(time.Minute), Confidence: 0.95})

	peer, ok := g.BestPeer(now)
	if !ok || peer != "high" {
		t.Fatalf("BestPeer() = (%q, %v), want (\"high\", true)", peer, ok)
	}
}

func TestContactGraphBestPeerNoneActive(t *testing.T) {
	g := NewContactGraph()
	now := time.Unix(1_700_000_000, 0)
	g.AddWindow(ContactWindow{Peer: "p1", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Confidence: 1})

	if _, ok := g.BestPeer(now); ok {
		t.Fatal("BestPeer() should report false when no window is active")
	}
}
