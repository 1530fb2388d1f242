package eventbus

import "errors"

// ErrBusClosed is returned by Publish once Close has been called.
var ErrBusClosed = errors.New("eventbus: bus is closed")

// ErrEnvelopeStale is returned when an inbound websocket envelope's
// timestamp is outside EnvelopeTTL.
var ErrEnvelopeStale = errors.New("eventbus: envelope timestamp stale")

// ErrPeerUntrusted is returned when an inbound websocket envelope's
// claimed agent ID has no registered public key.
var ErrPeerUntrusted = errors.New("eventbus: peer not trusted")

// ErrSignatureInvalid is returned when an inbound websocket envelope fails
// signature or tongue-binding verification.
var ErrSignatureInvalid = errors.New("eventbus: signature invalid")
