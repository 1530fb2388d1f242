package eventbus

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/aethermoore/scbe/internal/aetherlex"
	"github.com/aethermoore/scbe/internal/pqc"
)

// Message is one event published to the bus. Agent-originated messages
// carry a TongueBinding and a Signature; locally produced test messages may
// leave both nil.
type Message struct {
	Topic         string
	Key           string
	Value         []byte
	Headers       map[string]string
	Timestamp     time.Time
	TongueBinding []byte
	Signature     []byte
}

// TongueBinding derives the compact value mixed into a signed envelope to
// bind it to the publishing agent's tongue: it is not a secret, only a
// cheap way for a verifier to reject an envelope whose binding doesn't match
// the tongue and agent ID it expects for the sender. The topic is not part
// of the binding.
func TongueBinding(tongue aetherlex.Tongue, agentID string) []byte {
	sum := sha256.Sum256([]byte(string(tongue) + ":" + agentID))
	return sum[:]
}

// signaturePayload is the canonical byte sequence signed by a publisher and
// verified by a subscriber, deliberately excluding the Signature field
// itself.
func signaturePayload(m Message) []byte {
	var buf []byte
	buf = append(buf, []byte(m.Topic)...)
	buf = append(buf, []byte(m.Key)...)
	buf = append(buf, m.Value...)
	buf = append(buf, m.TongueBinding...)
	ts, _ := m.Timestamp.MarshalBinary()
	buf = append(buf, ts...)
	return buf
}

// Sign fills m.Signature using the named pqc signature algorithm and
// secret key, binding m to tongue/agentID first.
func Sign(m Message, tongue aetherlex.Tongue, agentID, algorithm string, secretKey []byte) (Message, error) {
	sig, err := pqc.GetSignature(algorithm)
	if err != nil {
		return m, fmt.Errorf("eventbus: sign: %w", err)
	}
	m.TongueBinding = TongueBinding(tongue, agentID)
	signature, err := sig.Sign(secretKey, signaturePayload(m))
	if err != nil {
		return m, fmt.Errorf("eventbus: sign: %w", err)
	}
	m.Signature = signature
	return m, nil
}

// Verify checks m's signature against publicKey under the named algorithm
// and confirms the tongue binding matches the expected tongue/agentID. A
// stub algorithm fails verification closed (pqc.ErrStubVerify), matching
// every other signed artifact in this system.
func Verify(m Message, tongue aetherlex.Tongue, agentID, algorithm string, publicKey []byte) (bool, error) {
	if len(m.TongueBinding) == 0 || string(m.TongueBinding) != string(TongueBinding(tongue, agentID)) {
		return false, nil
	}
	sig, err := pqc.GetSignature(algorithm)
	if err != nil {
		return false, fmt.Errorf("eventbus: verify: %w", err)
	}
	return sig.Verify(publicKey, signaturePayload(m), m.Signature)
}
