// Package projection builds the local views of the chat from observed events.
// Handles ordering, deduplication, and projections.
// Does not emit events or interact with UI directly.
package projection

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"slices"
	"sync"
)

// Timeline holds the message history of one conversation.
// The live feed and local sends both write to it, hence the lock.
type Timeline struct {
	mu          sync.RWMutex
	Participant string
	messages    []domain.Message
}

func NewTimeline(participantID string, history []domain.Message) *Timeline {
	return &Timeline{
		Participant: participantID,
		messages:    slices.Clone(history),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.MessageReceived:
		t.messages = ReconcileMessages(t.messages, t.Participant, evt.Message)
	case event.MessageSent:
		t.messages = AppendSent(t.messages, evt.Message)
	}
	return nil
}

// Merge folds a freshly fetched history into the timeline.
func (t *Timeline) Merge(fetched []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = MergeHistory(t.messages, fetched)
}

// Messages returns a snapshot; the caller may keep it.
func (t *Timeline) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.messages)
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
