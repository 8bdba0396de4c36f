package projection

import (
	"chat-client/domain"

	"github.com/samber/lo"
)

// ReconcileMessages merges one live message into the history of the conversation
// whose other participant is participantID.
//
// prev is returned as is when the event is malformed, comes from another
// conversation, or repeats an id already present. Otherwise the event is
// appended in a fresh backing array: arrival order is display order.
func ReconcileMessages(prev []domain.Message, participantID string, evt domain.Message) []domain.Message {
	if !evt.Valid() || evt.SenderID != participantID {
		return prev
	}
	if containsID(prev, evt.ID) {
		return prev
	}
	return appendCopy(prev, evt)
}

// AppendSent records a message confirmed by a send mutation this client issued.
// There is no second delivery path to guard against, so no duplicate check.
func AppendSent(prev []domain.Message, msg domain.Message) []domain.Message {
	return appendCopy(prev, msg)
}

// MergeHistory appends the fetched messages whose id is unknown, keeping
// prev's order first. Used to catch up after the live channel dropped.
func MergeHistory(prev, fetched []domain.Message) []domain.Message {
	seen := lo.SliceToMap(prev, func(m domain.Message) (string, struct{}) {
		return m.ID, struct{}{}
	})
	merged := prev
	for _, m := range fetched {
		if !m.Valid() {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = appendCopy(merged, m)
	}
	return merged
}

// PatchConversations points lastMessage at evt for every row whose participant
// sent or received it. Untouched rows keep their pointer. Rows are never
// reordered, unread counts are not touched and no row is synthesized.
func PatchConversations(prev []*domain.Conversation, evt domain.Message) []*domain.Conversation {
	if !evt.Valid() || !HasParticipant(prev, evt.SenderID, evt.ReceiverID) {
		return prev
	}
	return lo.Map(prev, func(c *domain.Conversation, _ int) *domain.Conversation {
		if evt.Involves(c.Participant.ID) {
			return c.WithLastMessage(evt)
		}
		return c
	})
}

// CountUnread bumps the unread count of the row whose participant sent evt to ownerID.
// Messages the owner sent, or rows for other participants, are left as they are.
func CountUnread(prev []*domain.Conversation, evt domain.Message, ownerID string) []*domain.Conversation {
	if !evt.Valid() || ownerID == "" || evt.ReceiverID != ownerID || evt.SenderID == ownerID {
		return prev
	}
	if !HasParticipant(prev, evt.SenderID) {
		return prev
	}
	return lo.Map(prev, func(c *domain.Conversation, _ int) *domain.Conversation {
		if c.Participant.ID != evt.SenderID {
			return c
		}
		next := *c
		next.UnreadCount++
		return &next
	})
}

// HasParticipant reports whether one of the rows belongs to one of the ids.
func HasParticipant(conversations []*domain.Conversation, ids ...string) bool {
	return lo.ContainsBy(conversations, func(c *domain.Conversation) bool {
		return lo.Contains(ids, c.Participant.ID)
	})
}

func containsID(messages []domain.Message, id string) bool {
	return lo.ContainsBy(messages, func(m domain.Message) bool {
		return m.ID == id
	})
}

// appendCopy never writes into prev's spare capacity, so a caller holding
// prev keeps seeing the old view.
func appendCopy(prev []domain.Message, msg domain.Message) []domain.Message {
	next := make([]domain.Message, len(prev), len(prev)+1)
	copy(next, prev)
	return append(next, msg)
}
