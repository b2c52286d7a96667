package filter

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/stores"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

// BuildFilterHandler constructs the REQ handler: query the store for
// every filter, deduplicate across filters, stream EVENT frames and
// finish with EOSE. Live matches after EOSE are the connection loop's
// job.
func BuildFilterHandler(store stores.Store) lib_nostr.KindHandler {
	return func(read lib_nostr.KindReader, write lib_nostr.KindWriter) {
		var json = jsoniter.ConfigCompatibleWithStandardLibrary

		data, err := read()
		if err != nil {
			logging.Infof("Error reading from stream: %v", err)
			write("NOTICE", "Error reading from stream.")
			return
		}

		var request nostr.ReqEnvelope
		if err := json.Unmarshal(data, &request); err != nil {
			logging.Infof("Error unmarshaling request: %v", err)
			write("NOTICE", "Error unmarshaling request.")
			return
		}

		var combined []*nostr.Event
		for _, filter := range request.Filters {
			events, err := store.QueryEvents(filter)
			if err != nil {
				logging.Infof("Error querying events for filter: %v", err)
				continue
			}
			combined = append(combined, events...)
		}

		for _, event := range deduplicateEvents(combined) {
			write("EVENT", request.SubscriptionID, event)
		}

		write("EOSE", request.SubscriptionID)
	}
}

func deduplicateEvents(events []*nostr.Event) []*nostr.Event {
	seen := make(map[string]struct{})
	var unique []*nostr.Event

	for _, event := range events {
		if _, exists := seen[event.ID]; !exists {
			seen[event.ID] = struct{}{}
			unique = append(unique, event)
		}
	}

	return unique
}
