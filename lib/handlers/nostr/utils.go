package nostr

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/logging"
)

// BuildResponse marshals an outbound frame as the JSON array
// [messageType, params...].
func BuildResponse(messageType string, params ...interface{}) []byte {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	message := make([]interface{}, 0, len(params)+1)
	message = append(message, messageType)
	message = append(message, params...)

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		logging.Errorf("Error marshaling response message: %s", err)
		return nil
	}

	return jsonMessage
}

// ValidateEvent checks that the event id is the SHA-256 of the canonical
// serialization and that the Schnorr signature verifies. On failure it
// writes the negative OK frame and returns false; verification has no
// other side effects.
func ValidateEvent(write KindWriter, event *nostr.Event) bool {
	if event.ID != event.GetID() {
		logging.Debugf("Event ID mismatch: expected %s, got %s", event.GetID(), event.ID)
		write("OK", event.ID, false, "invalid: signature verification failed")
		return false
	}

	ok, err := event.CheckSignature()
	if err != nil || !ok {
		write("OK", event.ID, false, "invalid: signature verification failed")
		return false
	}

	return true
}

// GetTagValue returns the second element of the first tag whose first
// element equals name, or "" when no such tag exists.
func GetTagValue(event *nostr.Event, name string) string {
	if tag := event.Tags.GetFirst([]string{name}); tag != nil && len(*tag) > 1 {
		return (*tag)[1]
	}
	return ""
}

// GetTagValues collects the second element of every tag with the given
// name, skipping tags without a value.
func GetTagValues(event *nostr.Event, name string) []string {
	var values []string
	for _, tag := range event.Tags.GetAll([]string{name}) {
		if len(tag) > 1 {
			values = append(values, tag[1])
		}
	}
	return values
}
