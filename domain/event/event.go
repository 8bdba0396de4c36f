package event

import (
	"chat-client/domain"
	"time"
)

// DomainEvent is anything the live feed or a local action feeds into the projections.
type DomainEvent interface {
	Name() string
}

// MessageReceived is pushed by the server when a message arrives.
type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) Name() string { return "MessageReceived" }

// MessageSent is the confirmed response to a send mutation issued by this client.
type MessageSent struct {
	Message domain.Message
}

func (MessageSent) Name() string { return "MessageSent" }

type UserTyping struct {
	domain.UserTyping
}

func (UserTyping) Name() string { return "UserTyping" }

type UserStatusChanged struct {
	domain.UserStatus
}

func (UserStatusChanged) Name() string { return "UserStatusChanged" }

// ConnectionRestored is emitted when the live channel comes back after a drop.
// Events pushed while the link was down are lost and must be refetched.
type ConnectionRestored struct {
	At time.Time
}

func (ConnectionRestored) Name() string { return "ConnectionRestored" }
