package websocket

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/logging"
)

// KindClientAuthentication is the NIP-42 auth event kind.
const KindClientAuthentication = 22242

// handleAuth verifies a NIP-42 auth event against this connection's
// challenge. Authentication never gates reads or writes; the verified
// pubkey is only recorded on the connection. Auth events are not stored
// or broadcast.
func (conn *Connection) handleAuth(env *nostr.AuthEnvelope) {
	event := &env.Event

	if event.Kind != KindClientAuthentication {
		conn.write("OK", event.ID, false, "invalid: auth event kind must be 22242")
		return
	}

	if event.ID != event.GetID() {
		conn.write("OK", event.ID, false, "invalid: signature verification failed")
		return
	}
	if ok, err := event.CheckSignature(); err != nil || !ok {
		conn.write("OK", event.ID, false, "invalid: signature verification failed")
		return
	}

	if tag := event.Tags.GetFirst([]string{"challenge"}); tag == nil || len(*tag) < 2 || (*tag)[1] != conn.challenge {
		conn.write("OK", event.ID, false, "invalid: challenge mismatch")
		return
	}

	conn.authedPubkey = event.PubKey
	logging.Debugf("Connection authenticated as %s", event.PubKey)
	conn.write("OK", event.ID, true, "")
}
