// Package domain contains core concepts of the chat client.
// This file defines Message records and paginated history pages.
// Messages are created server-side and never edited by the client.
package domain

// Message represents an immutable chat message as returned by the API.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	CreatedAt  Timestamp `json:"createdAt"`
	Sender     *User     `json:"sender,omitempty"`
	Receiver   *User     `json:"receiver,omitempty"`
}

// Valid reports whether the message carries the fields a projection relies on.
func (m Message) Valid() bool {
	return m.ID != "" && m.SenderID != ""
}

// Involves reports whether userID is the sender or the receiver.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// MessagePage is one page of a conversation history.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	HasMore    bool      `json:"hasMore"`
	TotalCount int       `json:"totalCount"`
}

type SendMessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}
