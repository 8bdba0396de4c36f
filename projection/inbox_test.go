package projection

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func conversations() []*domain.Conversation {
	return []*domain.Conversation{
		{ID: "c2", Participant: domain.User{ID: "u2", Username: "bob"}},
		{ID: "c3", Participant: domain.User{ID: "u3", Username: "clara"}, UnreadCount: 1},
		{ID: "c4", Participant: domain.User{ID: "u4", Username: "dan"}},
	}
}

func TestPatchConversations_OnlyMatchingRowsChange(t *testing.T) {
	req := require.New(t)
	prev := conversations()
	evt := msg("m1", "u2", "u1")

	got := PatchConversations(prev, evt)

	req.Len(got, len(prev))
	req.NotSame(prev[0], got[0])
	req.Equal(evt, *got[0].LastMessage)
	req.Equal(prev[0].UnreadCount, got[0].UnreadCount)
	req.Same(prev[1], got[1])
	req.Same(prev[2], got[2])
	// Previous rows are not mutated
	req.Nil(prev[0].LastMessage)
}

func TestPatchConversations_MatchesReceiverToo(t *testing.T) {
	req := require.New(t)
	prev := conversations()

	got := PatchConversations(prev, msg("m1", "u1", "u3"))

	req.Same(prev[0], got[0])
	req.Equal("m1", got[1].LastMessage.ID)
	req.Equal([]string{"c2", "c3", "c4"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestPatchConversations_UnknownParticipantIsDropped(t *testing.T) {
	req := require.New(t)
	prev := conversations()

	got := PatchConversations(prev, msg("m1", "u9", "u1"))

	req.Equal(prev, got)
	for i := range prev {
		req.Same(prev[i], got[i])
	}
	req.Equal(prev, PatchConversations(prev, domain.Message{SenderID: "u2"}))
}

func TestCountUnread(t *testing.T) {
	req := require.New(t)
	prev := conversations()

	got := CountUnread(prev, msg("m1", "u3", "u1"), "u1")
	req.Equal(2, got[1].UnreadCount)
	req.Equal(1, prev[1].UnreadCount)
	req.Same(prev[0], got[0])

	// Our own message does not count
	req.Equal(prev, CountUnread(prev, msg("m2", "u1", "u3"), "u1"))
	// Addressed to someone else
	req.Equal(prev, CountUnread(prev, msg("m3", "u3", "u7"), "u1"))
}

func TestInbox_Consume(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	inbox := NewInbox("u1", conversations())

	req.NoError(inbox.Consume(ctx, event.MessageReceived{Message: msg("m1", "u2", "u1")}))
	req.NoError(inbox.Consume(ctx, event.UserStatusChanged{UserStatus: domain.UserStatus{UserID: "u4", IsOnline: true}}))

	list := inbox.Conversations()
	req.Equal("m1", list[0].LastMessage.ID)
	req.Equal(1, list[0].UnreadCount)
	req.True(inbox.Has("u9", "u2"))
	req.False(inbox.Has("u9"))

	online, known := inbox.Online("u4")
	req.True(known)
	req.True(online)
	_, known = inbox.Online("u2")
	req.False(known)

	inbox.MarkRead("u2")
	req.Equal(0, inbox.Conversations()[0].UnreadCount)
	req.Equal(1, list[0].UnreadCount)

	inbox.Replace(nil)
	req.Empty(inbox.Conversations())
}
