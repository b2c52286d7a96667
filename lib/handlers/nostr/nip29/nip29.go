package nip29

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/logging"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores"
	"github.com/thewired-org/wired-relay/lib/types"
)

// Group management kinds handled by the relay.
const (
	KindPutUser     = 9000
	KindRemoveUser  = 9001
	KindCreateGroup = 9007
	KindDeleteGroup = 9008
	KindJoinRequest = 9021
	KindLeaveGroup  = 9022

	KindGroupMetadata = 39000
	KindGroupAdmins   = 39001
	KindGroupMembers  = 39002
)

// IsManagementKind reports whether the kind has a dedicated group handler.
func IsManagementKind(kind int) bool {
	switch kind {
	case KindPutUser, KindRemoveUser, KindCreateGroup, KindDeleteGroup, KindJoinRequest, KindLeaveGroup:
		return true
	}
	return false
}

// Persist stores a group management event and broadcasts it on first
// insert. The returned message is the OK frame message; ok is false only
// on a store error.
func Persist(store stores.Store, bus *broadcast.Bus, event *nostr.Event) (string, bool) {
	inserted, err := store.StoreEvent(event)
	if err != nil {
		return fmt.Sprintf("error: %v", err), false
	}
	if inserted {
		bus.Publish(event)
		return "", true
	}
	return "duplicate:", true
}

// PublishGroupMetadata regenerates the kind 39000/39001/39002 events
// from current group state, signs them with the relay identity, and
// stores and broadcasts each. Called after every successful group
// mutation; a deleted group publishes nothing.
func PublishGroupMetadata(store stores.Store, identity *signing.RelayIdentity, bus *broadcast.Bus, groupID string) error {
	group, err := store.GetGroup(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return nil
	}

	metadata, err := buildGroupMetadata(group)
	if err != nil {
		return err
	}
	admins, err := buildGroupAdmins(store, groupID)
	if err != nil {
		return err
	}
	members, err := buildGroupMembers(store, groupID)
	if err != nil {
		return err
	}

	for _, pending := range []pendingEvent{metadata, admins, members} {
		event, err := identity.SignEvent(pending.kind, pending.tags, pending.content)
		if err != nil {
			return err
		}
		if _, err := store.StoreEvent(event); err != nil {
			return err
		}
		bus.Publish(event)
	}

	logging.Debugf("Published group metadata for %s", groupID)

	return nil
}

func buildGroupMetadata(group *types.Group) (pendingEvent, error) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	tags := nostr.Tags{nostr.Tag{"d", group.GroupID}}
	if group.IsPrivate {
		tags = append(tags, nostr.Tag{"private"})
	}
	if group.IsClosed {
		tags = append(tags, nostr.Tag{"closed"})
	}

	content, err := json.Marshal(map[string]interface{}{
		"name":    group.Name,
		"picture": group.Picture,
		"about":   group.About,
	})
	if err != nil {
		return pendingEvent{}, fmt.Errorf("failed to encode group metadata: %w", err)
	}

	return pendingEvent{KindGroupMetadata, tags, string(content)}, nil
}

func buildGroupAdmins(store stores.Store, groupID string) (pendingEvent, error) {
	admins, err := store.GetGroupAdmins(groupID)
	if err != nil {
		return pendingEvent{}, err
	}

	tags := nostr.Tags{nostr.Tag{"d", groupID}}
	for _, pubkey := range admins {
		tags = append(tags, nostr.Tag{"p", pubkey, types.RoleAdmin})
	}

	return pendingEvent{KindGroupAdmins, tags, ""}, nil
}

func buildGroupMembers(store stores.Store, groupID string) (pendingEvent, error) {
	members, err := store.GetGroupMembers(groupID)
	if err != nil {
		return pendingEvent{}, err
	}

	tags := nostr.Tags{nostr.Tag{"d", groupID}}
	for _, pubkey := range members {
		tags = append(tags, nostr.Tag{"p", pubkey})
	}

	return pendingEvent{KindGroupMembers, tags, ""}, nil
}

type pendingEvent struct {
	kind    int
	tags    nostr.Tags
	content string
}
