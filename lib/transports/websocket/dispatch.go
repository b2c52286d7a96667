package websocket

import (
	"bytes"
	"fmt"

	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

// dispatch routes one inbound frame to its handler. Kind-specific
// handlers take precedence over the universal handler for EVENT frames.
func (conn *Connection) dispatch(message []byte, store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) {
	read := func() ([]byte, error) {
		return message, nil
	}

	rawMessage := nostr.ParseMessage(message)

	switch env := rawMessage.(type) {
	case *nostr.EventEnvelope:
		handler := lib_nostr.GetHandler(fmt.Sprintf("kind/%d", env.Event.Kind))
		if handler == nil {
			handler = lib_nostr.GetHandler("universal")
		}
		if handler == nil {
			conn.write("NOTICE", "unknown message type: EVENT")
			return
		}
		handler(read, conn.write)

	case *nostr.ReqEnvelope:
		conn.subs.Add(env.SubscriptionID, env.Filters)
		if handler := lib_nostr.GetHandler("filter"); handler != nil {
			handler(read, conn.write)
		}

	case *nostr.CloseEnvelope:
		subID := string(*env)
		conn.subs.Remove(subID)
		conn.write("CLOSED", subID, "")

	case *nostr.AuthEnvelope:
		conn.handleAuth(env)

	default:
		conn.write("NOTICE", "unknown message type: "+frameLabel(message))
	}
}

// frameLabel extracts the first array element of a frame for the
// unknown-type notice.
func frameLabel(message []byte) string {
	trimmed := bytes.TrimLeft(message, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return "?"
	}

	end := bytes.IndexAny(trimmed, ",]")
	if end == -1 {
		return "?"
	}

	label := bytes.Trim(trimmed[1:end], ` "`)
	if len(label) == 0 {
		return "?"
	}

	return string(label)
}
