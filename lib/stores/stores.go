package stores

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/thewired-org/wired-relay/lib/types"
)

// Store is the persistence contract for the relay: idempotent event
// storage, filter-driven queries, full-text search, and NIP-29 group
// state. Implementations are safe for concurrent use.
type Store interface {
	// StoreEvent inserts an event keyed by id. The bool reports whether a
	// row was actually inserted; false with a nil error means the event
	// was already stored.
	StoreEvent(event *nostr.Event) (bool, error)

	// QueryEvents returns stored events matching the filter, newest
	// first. A filter with a search term delegates to SearchEvents.
	QueryEvents(filter nostr.Filter) ([]*nostr.Event, error)

	// SearchEvents runs a ranked full-text search over event content.
	SearchEvents(query string, limit int) ([]*nostr.Event, error)

	// DeleteEvent removes an event by id, reporting whether a row existed.
	DeleteEvent(eventID string) (bool, error)

	// CreateGroup creates the group and installs the creator as its first
	// member and admin, in one transaction. Idempotent on existing rows.
	CreateGroup(groupID, name, creatorPubkey string) error
	DeleteGroup(groupID string) error
	GetGroup(groupID string) (*types.Group, error)

	IsGroupAdmin(groupID, pubkey string) (bool, error)
	IsGroupMember(groupID, pubkey string) (bool, error)
	AddGroupMember(groupID, pubkey string) error
	RemoveGroupMember(groupID, pubkey string) error
	GetGroupMembers(groupID string) ([]string, error)
	GetGroupAdmins(groupID string) ([]string, error)
}
