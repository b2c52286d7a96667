package gorm_test

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	store := newTestStore(t)
	creator := mustPubkey(t)

	require.NoError(t, store.CreateGroup("wired", "The Wired", creator))

	group, err := store.GetGroup("wired")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, "The Wired", group.Name)

	isMember, err := store.IsGroupMember("wired", creator)
	require.NoError(t, err)
	assert.True(t, isMember)

	isAdmin, err := store.IsGroupAdmin("wired", creator)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// Re-creating the same group must not error or change the name.
	require.NoError(t, store.CreateGroup("wired", "Renamed", creator))
	group, err = store.GetGroup("wired")
	require.NoError(t, err)
	assert.Equal(t, "The Wired", group.Name)
}

func TestGetGroupMissing(t *testing.T) {
	store := newTestStore(t)

	group, err := store.GetGroup("nowhere")
	require.NoError(t, err)
	assert.Nil(t, group)
}

func TestGroupMembership(t *testing.T) {
	store := newTestStore(t)
	creator := mustPubkey(t)
	member := mustPubkey(t)

	require.NoError(t, store.CreateGroup("wired", "The Wired", creator))
	require.NoError(t, store.AddGroupMember("wired", member))
	require.NoError(t, store.AddGroupMember("wired", member))

	members, err := store.GetGroupMembers("wired")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Contains(t, members, member)

	isAdmin, err := store.IsGroupAdmin("wired", member)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, store.RemoveGroupMember("wired", member))
	isMember, err := store.IsGroupMember("wired", member)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestRemoveGroupMemberCascadesRoles(t *testing.T) {
	store := newTestStore(t)
	creator := mustPubkey(t)

	require.NoError(t, store.CreateGroup("wired", "The Wired", creator))
	require.NoError(t, store.RemoveGroupMember("wired", creator))

	isAdmin, err := store.IsGroupAdmin("wired", creator)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	admins, err := store.GetGroupAdmins("wired")
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestDeleteGroupCascades(t *testing.T) {
	store := newTestStore(t)
	creator := mustPubkey(t)
	member := mustPubkey(t)

	require.NoError(t, store.CreateGroup("wired", "The Wired", creator))
	require.NoError(t, store.AddGroupMember("wired", member))
	require.NoError(t, store.DeleteGroup("wired"))

	group, err := store.GetGroup("wired")
	require.NoError(t, err)
	assert.Nil(t, group)

	isMember, err := store.IsGroupMember("wired", member)
	require.NoError(t, err)
	assert.False(t, isMember)

	isAdmin, err := store.IsGroupAdmin("wired", creator)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func mustPubkey(t *testing.T) string {
	t.Helper()

	pubkey, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)

	return pubkey
}
