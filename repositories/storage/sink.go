package storage

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/repositories"
	"context"
	"fmt"
	"log/slog"
)

// DiskSink copies every message seen by the client into the local history cache,
// filed under the other party of the conversation.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
	ownerID    string
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger, ownerID string) DiskSink {
	return DiskSink{repository: repository, log: log, ownerID: ownerID}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		return d.store(evt.Message)
	case event.MessageSent:
		return d.store(evt.Message)
	default:
		d.log.Debug(fmt.Sprintf("Not implemented event : %s", e.Name()))
		return nil
	}
}

func (d DiskSink) store(message domain.Message) error {
	participantID, ok := otherParty(message, d.ownerID)
	if !ok {
		d.log.Debug("Message does not involve the current user", "id", message.ID)
		return nil
	}
	return d.repository.StoreMessage(participantID, message)
}

func otherParty(message domain.Message, ownerID string) (string, bool) {
	switch ownerID {
	case message.SenderID:
		return message.ReceiverID, message.ReceiverID != ""
	case message.ReceiverID:
		return message.SenderID, message.SenderID != ""
	default:
		return "", false
	}
}
