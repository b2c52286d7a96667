package websocket

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"
	"github.com/thewired-org/wired-relay/lib/subscription"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

// activeConnections tracks every live connection by id, mostly for
// connection-count logging.
var activeConnections = xsync.NewMapOf[string, *Connection]()

// Connection holds the per-connection state: the socket, the
// subscription set and the NIP-42 auth state. All frame writes go
// through write so they serialize on writeMu.
type Connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	subs *subscription.Manager

	challenge    string
	authedPubkey string
}

func (conn *Connection) write(messageType string, params ...interface{}) {
	response := lib_nostr.BuildResponse(messageType, params...)
	if len(response) == 0 {
		return
	}

	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()
	if err := conn.ws.WriteMessage(websocket.TextMessage, response); err != nil {
		logging.Debugf("Error writing to websocket: %v", err)
	}
}

// handleConnection runs the connection loop: a reader goroutine feeds
// inbound frames into a channel, and the loop selects between those and
// the broadcast feed. Handlers run synchronously inside the loop, so
// stored-event replay and live matches for a subscription never
// interleave out of order.
func handleConnection(c *websocket.Conn, store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) {
	conn := &Connection{
		ws:        c,
		subs:      subscription.NewManager(),
		challenge: uuid.NewString(),
	}

	connID := uuid.NewString()
	activeConnections.Store(connID, conn)
	defer func() {
		activeConnections.Delete(connID)
		logging.Debugf("Connection closed, %d active", activeConnections.Size())
	}()
	logging.Debugf("Connection opened, %d active", activeConnections.Size())

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	conn.write("AUTH", conn.challenge)

	done := make(chan struct{})
	defer close(done)

	inbound := make(chan []byte)
	go func() {
		defer close(inbound)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				return
			}
			select {
			case inbound <- message:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case message, ok := <-inbound:
			if !ok {
				return
			}
			conn.dispatch(message, store, bus, identity)

		case event, ok := <-sub.C:
			if !ok {
				// Bus closed, relay is shutting down.
				return
			}
			for _, subID := range conn.subs.Matching(event) {
				conn.write("EVENT", subID, event)
			}
			if skipped := sub.Skipped(); skipped > 0 {
				logging.Warnf("Slow consumer skipped %d broadcast events", skipped)
			}
		}
	}
}
