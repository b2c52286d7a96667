package kind9000

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

// BuildKind9000Handler constructs the handler for kind 9000 (put user):
// an admin of the h-tag group adds every p-tag pubkey as a member.
func BuildKind9000Handler(store stores.Store, bus *broadcast.Bus, identity *signing.RelayIdentity) lib_nostr.KindHandler {
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

		targets := lib_nostr.GetTagValues(event, "p")
		for _, pubkey := range targets {
			if err := store.AddGroupMember(groupID, pubkey); err != nil {
				write("OK", event.ID, false, "error: "+err.Error())
				return
			}
		}

		message, ok := nip29.Persist(store, bus, event)
		write("OK", event.ID, ok, message)
		if !ok {
			return
		}

		logging.Infof("Added %d members to group %s", len(targets), groupID)

		if err := nip29.PublishGroupMetadata(store, identity, bus, groupID); err != nil {
			logging.Errorf("Failed to publish metadata for group %s: %v", groupID, err)
		}
	}
}
