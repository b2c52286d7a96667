package kind9021

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

// BuildKind9021Handler constructs the handler for kind 9021 (join
// request). Open groups admit the sender immediately; closed groups
// acknowledge the request as pending for an admin to act on; unknown
// groups are rejected.
func BuildKind9021Handler(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) lib_nostr.KindHandler {
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

		group, err := store.GetGroup(groupID)
		if err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}
		if group == nil {
			write("OK", event.ID, false, "group not found")
			return
		}

		if group.IsClosed {
			// Acknowledge without admitting; an admin approves with a
			// kind 9000. No durable request record is kept.
			if message, ok := nip29.Persist(store, bus, event); !ok {
				write("OK", event.ID, false, message)
				return
			}
			write("OK", event.ID, true, "join request pending")
			return
		}

		if err := store.AddGroupMember(groupID, event.PubKey); err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}

		message, ok := nip29.Persist(store, bus, event)
		write("OK", event.ID, ok, message)
		if !ok {
			return
		}

		logging.Infof("%s joined group %s", event.PubKey, groupID)

		if err := nip29.PublishGroupMetadata(store, identity, bus, groupID); err != nil {
			logging.Errorf("Failed to publish metadata for group %s: %v", groupID, err)
		}
	}
}
