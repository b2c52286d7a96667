package kind9007

import (
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/nip29"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

// BuildKind9007Handler constructs the handler for kind 9007 (create
// group). The group id comes from the h tag, or a fresh uuid when
// absent; the event content becomes the group name and the sender
// becomes the first member and admin.
func BuildKind9007Handler(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) lib_nostr.KindHandler {
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
			groupID = uuid.NewString()
		}

		if err := store.CreateGroup(groupID, event.Content, event.PubKey); err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}

		message, ok := nip29.Persist(store, bus, event)
		write("OK", event.ID, ok, message)
		if !ok {
			return
		}

		logging.Infof("Group created: %s by %s", groupID, event.PubKey)

		if err := nip29.PublishGroupMetadata(store, identity, bus, groupID); err != nil {
			logging.Errorf("Failed to publish metadata for group %s: %v", groupID, err)
		}
	}
}
