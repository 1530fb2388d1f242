// websocket.go — the real, networked Bus backend.
//
// Grounded on internal/gossip/server.go's envelope verification pipeline
// (freshness check → peer-trust check → signature check → forward to the
// local consumer) and its signed, canonical wire-envelope shape. The
// substitution recorded in DESIGN.md: the teacher dials a generated gRPC
// stub package (gossipv1, not present in the retrieved corpus) over a TLS
// 1.3 mTLS listener; this backend carries the identical three-step
// verification over github.com/gorilla/websocket, which the corpus does
// provide, and folds the teacher's bare Ed25519 signature check into the
// pqc registry so the algorithm is swappable the same way every other
// signed artifact in this system is.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aethermoore/scbe/internal/aetherlex"
)

// DefaultEnvelopeTTL bounds how old a peer envelope's timestamp may be
// before it is rejected as stale.
const DefaultEnvelopeTTL = 30 * time.Second

// TrustedPeer is one remote agent a WebSocketBus will accept envelopes
// from.
type TrustedPeer struct {
	AgentID   string
	Tongue    aetherlex.Tongue
	Algorithm string
	PublicKey []byte
}

// wireEnvelope is the JSON frame exchanged over a websocket connection.
type wireEnvelope struct {
	Topic             string            `json:"topic"`
	Key               string            `json:"key"`
	Value             []byte            `json:"value"`
	Headers           map[string]string `json:"headers,omitempty"`
	TimestampUnixNano int64             `json:"timestamp_unix_nano"`
	AgentID           string            `json:"agent_id"`
	Tongue            string            `json:"tongue"`
	TongueBinding     []byte            `json:"tongue_binding"`
	Signature         []byte            `json:"signature"`
}

func toWire(m Message, agentID string, tongue aetherlex.Tongue) wireEnvelope {
	return wireEnvelope{
		Topic:             m.Topic,
		Key:               m.Key,
		Value:             m.Value,
		Headers:           m.Headers,
		TimestampUnixNano: m.Timestamp.UnixNano(),
		AgentID:           agentID,
		Tongue:            string(tongue),
		TongueBinding:     m.TongueBinding,
		Signature:         m.Signature,
	}
}

func (w wireEnvelope) toMessage() Message {
	return Message{
		Topic:         w.Topic,
		Key:           w.Key,
		Value:         w.Value,
		Headers:       w.Headers,
		Timestamp:     time.Unix(0, w.TimestampUnixNano),
		TongueBinding: w.TongueBinding,
		Signature:     w.Signature,
	}
}

// WebSocketBus delivers locally-published messages to local subscribers
// (via an embedded MockBus) and additionally broadcasts them to every
// connected peer connection; inbound peer envelopes are verified against
// trustedPeers before being handed to the local bus.
type WebSocketBus struct {
	local        *MockBus
	nodeID       string
	tongue       aetherlex.Tongue
	envelopeTTL  time.Duration
	log          *zap.Logger
	upgrader     websocket.Upgrader
	trustedPeers map[string]TrustedPeer // agent_id -> peer

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewWebSocketBus returns a WebSocketBus identifying itself as nodeID on
// tongue, trusting the given peer set for inbound envelopes.
func NewWebSocketBus(nodeID string, tongue aetherlex.Tongue, trustedPeers map[string]TrustedPeer, envelopeTTL time.Duration, log *zap.Logger) *WebSocketBus {
	if envelopeTTL <= 0 {
		envelopeTTL = DefaultEnvelopeTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketBus{
		local:        NewMockBus(),
		nodeID:       nodeID,
		tongue:       tongue,
		envelopeTTL:  envelopeTTL,
		log:          log,
		upgrader:     websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		trustedPeers: trustedPeers,
		conns:        make(map[*websocket.Conn]struct{}),
	}
}

// Publish delivers m locally and broadcasts it to every connected peer.
func (b *WebSocketBus) Publish(m Message) error {
	if err := b.local.Publish(m); err != nil {
		return err
	}
	wire := toWire(m, b.nodeID, b.tongue)
	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("eventbus: marshal envelope: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.log.Warn("eventbus: peer write failed", zap.Error(err))
		}
	}
	return nil
}

func (b *WebSocketBus) Subscribe(pattern string) (<-chan Message, Subscription) {
	return b.local.Subscribe(pattern)
}

func (b *WebSocketBus) Close() error {
	b.mu.Lock()
	for conn := range b.conns {
		conn.Close()
	}
	b.conns = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()
	return b.local.Close()
}

// ServeHTTP upgrades an inbound HTTP request to a websocket peer
// connection and runs its read loop until the connection closes.
func (b *WebSocketBus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("eventbus: upgrade failed", zap.Error(err))
		return
	}
	b.trackConn(conn)
}

// Dial opens an outbound peer connection to addr and begins its read loop.
func (b *WebSocketBus) Dial(ctx context.Context, addr string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("eventbus: dial %s: %w", addr, err)
	}
	b.trackConn(conn)
	return nil
}

func (b *WebSocketBus) trackConn(conn *websocket.Conn) {
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()
	go b.readLoop(conn)
}

func (b *WebSocketBus) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var wire wireEnvelope
		if err := json.Unmarshal(data, &wire); err != nil {
			b.log.Warn("eventbus: malformed envelope", zap.Error(err))
			continue
		}
		if err := b.verify(wire); err != nil {
			b.log.Warn("eventbus: envelope rejected",
				zap.String("agent_id", wire.AgentID), zap.Error(err))
			continue
		}
		if err := b.local.Publish(wire.toMessage()); err != nil {
			b.log.Warn("eventbus: local publish failed", zap.Error(err))
		}
	}
}

// verify runs the three-step acceptance pipeline: freshness, peer trust,
// signature (including tongue binding).
func (b *WebSocketBus) verify(wire wireEnvelope) error {
	age := time.Since(time.Unix(0, wire.TimestampUnixNano))
	if age > b.envelopeTTL || age < -5*time.Second {
		return ErrEnvelopeStale
	}
	peerInfo, trusted := b.trustedPeers[wire.AgentID]
	if !trusted {
		return ErrPeerUntrusted
	}
	ok, err := Verify(wire.toMessage(), peerInfo.Tongue, peerInfo.AgentID, peerInfo.Algorithm, peerInfo.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	if !ok {
		return ErrSignatureInvalid
	}
	return nil
}
