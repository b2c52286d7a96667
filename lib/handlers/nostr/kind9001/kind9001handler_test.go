package kind9001_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewired-org/wired-relay/lib/broadcast"
	"github.com/thewired-org/wired-relay/lib/handlers/nostr/kind9001"
	"github.com/thewired-org/wired-relay/lib/signing"
	"github.com/thewired-org/wired-relay/lib/stores/gorm/sqlite"

	lib_nostr "github.com/thewired-org/wired-relay/lib/handlers/nostr"
)

func removeUser(t *testing.T, handler lib_nostr.KindHandler, sk string, tags nostr.Tags) []interface{} {
	t.Helper()

	event := nostr.Event{
		Kind:      9001,
		CreatedAt: nostr.Now(),
		Tags:      tags,
	}
	require.NoError(t, event.Sign(sk))

	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(nostr.EventEnvelope{Event: event})
	require.NoError(t, err)

	var okParams []interface{}
	handler(
		func() ([]byte, error) { return payload, nil },
		func(messageType string, params ...interface{}) {
			if messageType == "OK" && okParams == nil {
				okParams = params
			}
		},
	)

	require.Len(t, okParams, 3)
	return okParams
}

func TestRemoveUserByAdmin(t *testing.T) {
	store, err := sqlite.InitStore(t.TempDir())
	require.NoError(t, err)
	identity, err := signing.NewRelayIdentity(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	bus := broadcast.New(64)
	defer bus.Close()

	handler := kind9001.BuildKind9001Handler(store, bus, identity)

	adminSk := nostr.GeneratePrivateKey()
	adminPk, err := nostr.GetPublicKey(adminSk)
	require.NoError(t, err)
	memberPk, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)

	require.NoError(t, store.CreateGroup("wired", "The Wired", adminPk))
	require.NoError(t, store.AddGroupMember("wired", memberPk))

	okParams := removeUser(t, handler, adminSk, nostr.Tags{{"h", "wired"}, {"p", memberPk}})
	assert.Equal(t, true, okParams[1])

	isMember, err := store.IsGroupMember("wired", memberPk)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestRemoveUserRejectsNonAdmin(t *testing.T) {
	store, err := sqlite.InitStore(t.TempDir())
	require.NoError(t, err)
	identity, err := signing.NewRelayIdentity(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	bus := broadcast.New(64)
	defer bus.Close()

	handler := kind9001.BuildKind9001Handler(store, bus, identity)

	adminPk, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	memberSk := nostr.GeneratePrivateKey()
	memberPk, err := nostr.GetPublicKey(memberSk)
	require.NoError(t, err)

	require.NoError(t, store.CreateGroup("wired", "The Wired", adminPk))
	require.NoError(t, store.AddGroupMember("wired", memberPk))

	// A plain member cannot remove the admin.
	okParams := removeUser(t, handler, memberSk, nostr.Tags{{"h", "wired"}, {"p", adminPk}})
	assert.Equal(t, false, okParams[1])
	assert.Equal(t, "not authorized", okParams[2])

	isMember, err := store.IsGroupMember("wired", adminPk)
	require.NoError(t, err)
	assert.True(t, isMember)
}
