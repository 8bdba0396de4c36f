package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversation_WithLastMessage_Copies(t *testing.T) {
	req := require.New(t)
	previous := &Message{ID: "m1"}
	conversation := &Conversation{ID: "c1", Participant: User{ID: "u2"}, LastMessage: previous, UnreadCount: 2}

	next := conversation.WithLastMessage(Message{ID: "m2", SenderID: "u2"})

	// Check that the original row is untouched
	req.Same(previous, conversation.LastMessage)
	req.NotSame(conversation, next)

	// Check that only the last message changed
	req.Equal("m2", next.LastMessage.ID)
	req.Equal(2, next.UnreadCount)
	req.Equal(conversation.Participant, next.Participant)
}

func TestMessage_Involves(t *testing.T) {
	req := require.New(t)
	msg := Message{ID: "m1", SenderID: "u1", ReceiverID: "u2"}

	req.True(msg.Involves("u1"))
	req.True(msg.Involves("u2"))
	req.False(msg.Involves("u3"))
	req.True(msg.Valid())
	req.False(Message{ID: "m1"}.Valid())
}

func TestUser_Initials(t *testing.T) {
	req := require.New(t)
	req.Equal("AL", User{Username: "alice"}.Initials())
	req.Equal("B", User{Username: "b"}.Initials())
	req.Equal("", User{}.Initials())
}
