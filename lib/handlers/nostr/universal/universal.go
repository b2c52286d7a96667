package universal

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/policy/music"
	"github.com/thewired-org/wired-relay/lib/stores"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

func isReplaceable(kind int) bool {
	return (kind >= 10000 && kind < 20000) || kind == 0 || kind == 3
}

func isEphemeral(kind int) bool {
	return kind >= 20000 && kind < 30000
}

func isAddressable(kind int) bool {
	return kind >= 30000 && kind < 40000
}

// BuildUniversalHandler constructs the fallback handler for any event
// kind without a dedicated handler. It validates, applies the music tag
// policy, supersedes older replaceable/addressable versions, stores and
// broadcasts.
func BuildUniversalHandler(store stores.Store, bus *broadcast.Bus) lib_nostr.KindHandler {
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

		if err := music.ValidateMusicEvent(event); err != nil {
			write("OK", event.ID, false, "invalid: "+err.Error())
			return
		}

		// Ephemeral events are broadcast but never stored.
		if isEphemeral(event.Kind) {
			bus.Publish(event)
			write("OK", event.ID, true, "")
			return
		}

		if isReplaceable(event.Kind) {
			if ok := supersede(store, write, event, nostr.Filter{
				Kinds:   []int{event.Kind},
				Authors: []string{event.PubKey},
			}); !ok {
				return
			}
		}

		if isAddressable(event.Kind) {
			dTag := lib_nostr.GetTagValue(event, "d")
			if ok := supersede(store, write, event, nostr.Filter{
				Kinds:   []int{event.Kind},
				Authors: []string{event.PubKey},
				Tags:    nostr.TagMap{"d": []string{dTag}},
			}); !ok {
				return
			}
		}

		inserted, err := store.StoreEvent(event)
		if err != nil {
			write("OK", event.ID, false, "error: "+err.Error())
			return
		}

		if !inserted {
			write("OK", event.ID, true, "duplicate:")
			return
		}

		bus.Publish(event)
		write("OK", event.ID, true, "")
	}
}

// supersede removes older stored versions matched by the filter. It
// writes a rejection and returns false when a newer version already
// exists.
func supersede(store stores.Store, write lib_nostr.KindWriter, event *nostr.Event, filter nostr.Filter) bool {
	existing, err := store.QueryEvents(filter)
	if err != nil {
		logging.Warnf("Failed to query existing versions for %s: %v", event.ID, err)
		return true
	}
	for _, old := range existing {
		if old.CreatedAt > event.CreatedAt {
			write("OK", event.ID, false, "replaced: newer version exists")
			return false
		}
		if old.CreatedAt < event.CreatedAt {
			if _, err := store.DeleteEvent(old.ID); err != nil {
				logging.Warnf("Failed to delete superseded event %s: %v", old.ID, err)
			}
		}
	}
	return true
}
