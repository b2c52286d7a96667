package kind9022_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9022"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores/gorm/sqlite"
)

func TestLeaveGroup(t *testing.T) {
	store, err := sqlite.InitStore(t.TempDir())
	require.NoError(t, err)
	identity, err := signing.NewRelayIdentity(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	bus := broadcast.New(64)
	defer bus.Close()

	handler := kind9022.BuildKind9022Handler(store, bus, identity)

	adminPk, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	require.NoError(t, store.CreateGroup("wired", "The Wired", adminPk))

	memberSk := nostr.GeneratePrivateKey()
	memberPk, err := nostr.GetPublicKey(memberSk)
	require.NoError(t, err)
	require.NoError(t, store.AddGroupMember("wired", memberPk))

	event := nostr.Event{
		Kind:      9022,
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{{"h", "wired"}},
	}
	require.NoError(t, event.Sign(memberSk))

	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(nostr.EventEnvelope{Event: event})
	require.NoError(t, err)

	var okParams []interface{}
	handler(
		func() ([]byte, error) { return payload, nil },
		func(messageType string, params ...interface{}) {
			if messageType == "OK" {
				okParams = params
			}
		},
	)

	require.Len(t, okParams, 3)
	assert.Equal(t, true, okParams[1])

	isMember, err := store.IsGroupMember("wired", memberPk)
	require.NoError(t, err)
	assert.False(t, isMember)

	// The admin is untouched and the member list was republished.
	isMember, err = store.IsGroupMember("wired", adminPk)
	require.NoError(t, err)
	assert.True(t, isMember)

	memberLists, err := store.QueryEvents(nostr.Filter{
		Kinds: []int{39002},
		Tags:  nostr.TagMap{"d": []string{"wired"}},
	})
	require.NoError(t, err)
	require.Len(t, memberLists, 1)
}
