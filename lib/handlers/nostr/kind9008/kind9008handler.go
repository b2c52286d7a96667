package kind9008

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/nip29"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

// BuildKind9008Handler constructs the handler for kind 9008 (delete
// group, admin only). The store cascades member and role removal.
func BuildKind9008Handler(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) lib_nostr.KindHandler {
	return func(read lib_nostr.KindReader, write lib_nostr.KindWriter) {
		var json = jsoniter.ConfigCompatibleWithStandardLibrary

		data, err := read()
		if err != nil {
			write("NOTICE", "Error reading from stream.")
			return
		}

		var env nostr.EventEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			write("NOTICE", "invalid event")
			return
		}
		event := &env.Event

		if !lib_nostr.ValidateEvent(write, event) {
			return
		}

		groupID := lib_nostr.GetTagValue(event, "h")
		if groupID == "" {
			write("OK", event.ID, false, "missing h tag")
			return
		}

		isAdmin, err := store.IsGroupAdmin(groupID, event.PubKey)
		if err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}
		if !isAdmin {
			write("OK", event.ID, false, "not authorized")
			return
		}

		if err := store.DeleteGroup(groupID); err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}

		message, ok := nip29.Persist(store, bus, event)
		write("OK", event.ID, ok, message)
		if ok {
			logging.Infof("Group deleted: %s by %s", groupID, event.PubKey)
		}
	}
}
