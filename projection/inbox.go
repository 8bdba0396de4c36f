package projection

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"slices"
	"sync"
)

// Inbox is the conversation list of the logged-in user.
type Inbox struct {
	mu            sync.RWMutex
	Owner         string
	conversations []*domain.Conversation
	online        map[string]bool
}

func NewInbox(ownerID string, conversations []*domain.Conversation) *Inbox {
	return &Inbox{
		Owner:         ownerID,
		conversations: slices.Clone(conversations),
		online:        make(map[string]bool),
	}
}

func (i *Inbox) Consume(_ context.Context, e event.DomainEvent) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch evt := e.(type) {
	case event.MessageReceived:
		i.conversations = PatchConversations(i.conversations, evt.Message)
		i.conversations = CountUnread(i.conversations, evt.Message, i.Owner)
	case event.UserStatusChanged:
		i.online[evt.UserID] = evt.IsOnline
	}
	return nil
}

// Replace swaps the whole list, typically after a refetch.
func (i *Inbox) Replace(conversations []*domain.Conversation) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.conversations = slices.Clone(conversations)
}

// MarkRead clears the local unread count of one participant's row.
func (i *Inbox) MarkRead(participantID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx, c := range i.conversations {
		if c.Participant.ID == participantID && c.UnreadCount != 0 {
			next := *c
			next.UnreadCount = 0
			i.conversations[idx] = &next
		}
	}
}

func (i *Inbox) Has(participantIDs ...string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return HasParticipant(i.conversations, participantIDs...)
}

func (i *Inbox) Conversations() []*domain.Conversation {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.conversations)
}

// Online reports the last known presence of a user and whether any was seen.
func (i *Inbox) Online(userID string) (bool, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	online, ok := i.online[userID]
	return online, ok
}
