package main

import (
	"bytes"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/projection"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func conversationAt(id string, at *time.Time) *domain.Conversation {
	c := &domain.Conversation{ID: id, Participant: domain.User{ID: "p-" + id, Username: id}}
	if at != nil {
		c.LastMessage = &domain.Message{ID: "m-" + id, CreatedAt: domain.NewTimestamp(*at)}
	}
	return c
}

func TestSortConversations_NewestFirst(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	older := now.Add(-time.Hour)

	input := []*domain.Conversation{
		conversationAt("silent", nil),
		conversationAt("old", &older),
		conversationAt("recent", &now),
	}
	sorted := SortConversations(input)

	req.Equal([]string{"recent", "old", "silent"}, lo.Map(sorted, func(c *domain.Conversation, _ int) string { return c.ID }))
	req.Equal("silent", input[0].ID)
}

func TestTimelineView_PrintsEachMessageOnce(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewRenderer(&out, &out, false)

	me := domain.User{ID: "u1", Username: "alice"}
	bob := domain.User{ID: "u2", Username: "bob"}
	timeline := projection.NewTimeline("u2", []domain.Message{
		{ID: "m1", Content: "hi alice", SenderID: "u2", ReceiverID: "u1"},
	})
	view := NewTimelineView(renderer, timeline, me, bob)
	view.Flush()

	// Given the same live message delivered twice
	evt := event.MessageReceived{Message: domain.Message{ID: "m2", Content: "still there?", SenderID: "u2", ReceiverID: "u1"}}
	for range 2 {
		req.NoError(timeline.Consume(context.Background(), evt))
		req.NoError(view.Consume(context.Background(), evt))
	}
	view.Flush()

	req.Equal(1, strings.Count(out.String(), "hi alice"))
	req.Equal(1, strings.Count(out.String(), "still there?"))
}

func TestTimelineView_Typing(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewRenderer(&out, &out, false)
	view := NewTimelineView(renderer, projection.NewTimeline("u2", nil), domain.User{ID: "u1"}, domain.User{ID: "u2", Username: "bob"})

	typing := event.UserTyping{UserTyping: domain.UserTyping{UserID: "u2", IsTyping: true}}
	req.NoError(view.Consume(context.Background(), typing))
	req.NoError(view.Consume(context.Background(), typing))
	req.NoError(view.Consume(context.Background(), event.UserTyping{UserTyping: domain.UserTyping{UserID: "u3", IsTyping: true}}))

	req.Equal(1, strings.Count(out.String(), "bob is typing..."))
}

func TestRenderer_Fail(t *testing.T) {
	var out bytes.Buffer
	NewRenderer(&out, &out, false).Fail("Login Failed", context.DeadlineExceeded)
	require.Equal(t, "Login Failed: context deadline exceeded\n", out.String())
}
