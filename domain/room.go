package domain

// Conversation is a view computed by the server: one row per participant.
// The client only displays it and patches it on live events.
type Conversation struct {
	ID          string   `json:"id"`
	Participant User     `json:"participant"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}

// WithLastMessage returns a copy of the conversation pointing at msg.
func (c *Conversation) WithLastMessage(msg Message) *Conversation {
	next := *c
	next.LastMessage = &msg
	return &next
}
