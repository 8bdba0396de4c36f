package services

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/projection"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type IDirectoryService interface {
	Users(ctx context.Context, search string) ([]domain.User, error)
	Conversations(ctx context.Context) ([]*domain.Conversation, error)
	Inbox() *projection.Inbox
}

// DirectoryService lists the people the current user can talk to and keeps
// the conversation list fresh.
type DirectoryService struct {
	api   contract.IChatAPI
	owner domain.User
	inbox *projection.Inbox
	log   *slog.Logger
}

func NewDirectoryService(api contract.IChatAPI, owner domain.User, log *slog.Logger) *DirectoryService {
	return &DirectoryService{
		api:   api,
		owner: owner,
		inbox: projection.NewInbox(owner.ID, nil),
		log:   log,
	}
}

// Users returns everyone but the current user, filtered on username or
// email when search is not blank.
func (s *DirectoryService) Users(ctx context.Context, search string) ([]domain.User, error) {
	users, err := s.api.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	search = strings.TrimSpace(search)
	return lo.Filter(users, func(u domain.User, _ int) bool {
		return u.ID != s.owner.ID && (search == "" || u.Matches(search))
	}), nil
}

// Conversations refetches the list and makes it the new inbox content.
func (s *DirectoryService) Conversations(ctx context.Context) ([]*domain.Conversation, error) {
	conversations, err := s.api.Conversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("conversations: %w", err)
	}
	s.inbox.Replace(conversations)
	return s.inbox.Conversations(), nil
}

func (s *DirectoryService) Inbox() *projection.Inbox {
	return s.inbox
}

// Consume must run after the inbox has seen the event. A message with no
// matching row comes from a first-time correspondent, whose row only the
// server can build.
func (s *DirectoryService) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		if !evt.Message.Involves(s.owner.ID) || s.inbox.Has(evt.Message.SenderID, evt.Message.ReceiverID) {
			return nil
		}
		s.log.Debug("Message from a new correspondent, refreshing conversations", "sender", evt.Message.SenderID)
	case event.ConnectionRestored:
		s.log.Debug("Connection restored, refreshing conversations")
	default:
		return nil
	}
	_, err := s.Conversations(ctx)
	return err
}
