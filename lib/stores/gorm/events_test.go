package gorm_test

import (
	"fmt"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gorm_store "github.com/thewired-org/wired-relay/lib/stores/gorm"
	"github.com/thewired-org/wired-relay/lib/stores/gorm/sqlite"
)

func newTestStore(t *testing.T) *gorm_store.GormStore {
	t.Helper()

	store, err := sqlite.InitStore(t.TempDir())
	require.NoError(t, err)

	return store
}

func signedEvent(t *testing.T, sk string, kind int, tags nostr.Tags, content string, createdAt nostr.Timestamp) *nostr.Event {
	t.Helper()

	event := nostr.Event{
		Kind:      kind,
		CreatedAt: createdAt,
		Tags:      tags,
		Content:   content,
	}
	require.NoError(t, event.Sign(sk))

	return &event
}

func TestStoreEventIdempotent(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	event := signedEvent(t, sk, 1, nostr.Tags{}, "hello", nostr.Now())

	inserted, err := store.StoreEvent(event)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.StoreEvent(event)
	require.NoError(t, err)
	assert.False(t, inserted, "second store of the same id should be a no-op")

	events, err := store.QueryEvents(nostr.Filter{IDs: []string{event.ID}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.Content, events[0].Content)
	assert.Equal(t, event.Sig, events[0].Sig)
}

func TestQueryEventsByGroupNewestFirst(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	base := nostr.Now()
	for i := 0; i < 3; i++ {
		event := signedEvent(t, sk, 9, nostr.Tags{{"h", "pinchiks"}},
			fmt.Sprintf("message %d", i), base+nostr.Timestamp(i))
		_, err := store.StoreEvent(event)
		require.NoError(t, err)
	}
	other := signedEvent(t, sk, 9, nostr.Tags{{"h", "elsewhere"}}, "off topic", base)
	_, err := store.StoreEvent(other)
	require.NoError(t, err)

	events, err := store.QueryEvents(nostr.Filter{
		Kinds: []int{9},
		Tags:  nostr.TagMap{"h": []string{"pinchiks"}},
	})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "message 2", events[0].Content)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i-1].CreatedAt, events[i].CreatedAt)
	}
}

func TestQueryEventsAuthorsAndTimeRange(t *testing.T) {
	store := newTestStore(t)
	sk1 := nostr.GeneratePrivateKey()
	sk2 := nostr.GeneratePrivateKey()

	base := nostr.Timestamp(1700000000)
	early := signedEvent(t, sk1, 1, nostr.Tags{}, "early", base)
	late := signedEvent(t, sk1, 1, nostr.Tags{}, "late", base+100)
	foreign := signedEvent(t, sk2, 1, nostr.Tags{}, "foreign", base+50)
	for _, event := range []*nostr.Event{early, late, foreign} {
		_, err := store.StoreEvent(event)
		require.NoError(t, err)
	}

	since := base + 10
	events, err := store.QueryEvents(nostr.Filter{
		Authors: []string{early.PubKey},
		Since:   &since,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "late", events[0].Content)

	until := base + 10
	events, err = store.QueryEvents(nostr.Filter{
		Authors: []string{early.PubKey},
		Until:   &until,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "early", events[0].Content)
}

func TestQueryEventsTagExistential(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	target := "deadbeef"
	tagged := signedEvent(t, sk, 1, nostr.Tags{{"p", target}, {"p", "someone-else"}}, "mention", nostr.Now())
	plain := signedEvent(t, sk, 1, nostr.Tags{}, "no mention", nostr.Now())
	for _, event := range []*nostr.Event{tagged, plain} {
		_, err := store.StoreEvent(event)
		require.NoError(t, err)
	}

	events, err := store.QueryEvents(nostr.Filter{
		Tags: nostr.TagMap{"p": []string{target}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tagged.ID, events[0].ID)
}

func TestQueryEventsLimit(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	base := nostr.Now()
	for i := 0; i < 5; i++ {
		event := signedEvent(t, sk, 1, nostr.Tags{}, fmt.Sprintf("n%d", i), base+nostr.Timestamp(i))
		_, err := store.StoreEvent(event)
		require.NoError(t, err)
	}

	events, err := store.QueryEvents(nostr.Filter{Kinds: []int{1}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "n4", events[0].Content)
	assert.Equal(t, "n3", events[1].Content)
}

func TestDeleteEvent(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	event := signedEvent(t, sk, 1, nostr.Tags{}, "to delete", nostr.Now())
	_, err := store.StoreEvent(event)
	require.NoError(t, err)

	deleted, err := store.DeleteEvent(event.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteEvent(event.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	events, err := store.QueryEvents(nostr.Filter{IDs: []string{event.ID}})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSearchEvents(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	match := signedEvent(t, sk, 1, nostr.Tags{}, "lain is everywhere", nostr.Now())
	miss := signedEvent(t, sk, 1, nostr.Tags{}, "unrelated chatter", nostr.Now())
	for _, event := range []*nostr.Event{match, miss} {
		_, err := store.StoreEvent(event)
		require.NoError(t, err)
	}

	events, err := store.SearchEvents("lain", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, match.ID, events[0].ID)
}

func TestQueryEventsWithSearchDelegates(t *testing.T) {
	store := newTestStore(t)
	sk := nostr.GeneratePrivateKey()

	match := signedEvent(t, sk, 1, nostr.Tags{}, "protocol archaeology", nostr.Now())
	_, err := store.StoreEvent(match)
	require.NoError(t, err)

	events, err := store.QueryEvents(nostr.Filter{Search: "archaeology"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, match.ID, events[0].ID)
}
