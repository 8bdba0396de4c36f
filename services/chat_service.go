package services

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"chat-client/projection"
	"chat-client/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type IChatService interface {
	OpenConversation(ctx context.Context, participantID string) (*projection.Timeline, error)
	HistoryPage(ctx context.Context, participantID string, page, limit int) (domain.MessagePage, error)
	Send(ctx context.Context, participantID, content string) (domain.Message, error)
	Resync(ctx context.Context, participantID string) error
	OfflineHistory(participantID string, cursor *string) ([]domain.Message, *string, error)
	Timeline(participantID string) (*projection.Timeline, bool)
	CloseConversation(participantID string)
}

// ChatService owns the open conversations of the logged-in user.
// It is also an event sink: live messages are routed to the open timelines
// and a restored connection triggers a resync of each of them.
type ChatService struct {
	api         contract.IChatAPI
	history     repositories.IMessageRepository
	log         *slog.Logger
	sendTimeout time.Duration

	mu        sync.RWMutex
	timelines map[string]*projection.Timeline
}

func NewChatService(
	api contract.IChatAPI,
	history repositories.IMessageRepository,
	log *slog.Logger,
	sendTimeout time.Duration,
) *ChatService {
	return &ChatService{
		api:         api,
		history:     history,
		log:         log,
		sendTimeout: sendTimeout,
		timelines:   make(map[string]*projection.Timeline),
	}
}

// OpenConversation fetches the history with participantID and starts a timeline.
// Opening an already open conversation merges the fetched history into it.
func (s *ChatService) OpenConversation(ctx context.Context, participantID string) (*projection.Timeline, error) {
	messages, err := s.api.Messages(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}
	s.remember(participantID, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	if timeline, ok := s.timelines[participantID]; ok {
		timeline.Merge(messages)
		return timeline, nil
	}
	timeline := projection.NewTimeline(participantID, messages)
	s.timelines[participantID] = timeline
	return timeline, nil
}

// HistoryPage reads one page of history, page 0 holding the most recent messages.
func (s *ChatService) HistoryPage(ctx context.Context, participantID string, page, limit int) (domain.MessagePage, error) {
	result, err := s.api.MessagesPage(ctx, participantID, limit, page*limit)
	if err != nil {
		return domain.MessagePage{}, fmt.Errorf("messages page: %w", err)
	}
	s.remember(participantID, result.Messages)
	return result, nil
}

// Send posts content to participantID. The message only lands in the timeline
// once the server has confirmed it, and the call gives up after the send timeout.
func (s *ChatService) Send(ctx context.Context, participantID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	message, err := s.api.SendMessage(ctx, domain.SendMessageInput{ReceiverID: participantID, Content: content})
	if err != nil {
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}

	if timeline, ok := s.Timeline(participantID); ok {
		_ = timeline.Consume(ctx, event.MessageSent{Message: message})
	}
	if err = s.history.StoreMessage(participantID, message); err != nil {
		s.log.Warn("Sent message not cached", "id", message.ID, "error", err)
	}
	return message, nil
}

// Resync refetches the history of an open conversation and merges what the
// live channel missed while it was down.
func (s *ChatService) Resync(ctx context.Context, participantID string) error {
	timeline, ok := s.Timeline(participantID)
	if !ok {
		return errors.ErrNoSuchConversation
	}
	messages, err := s.api.Messages(ctx, participantID)
	if err != nil {
		return fmt.Errorf("resync %s: %w", participantID, err)
	}
	before := timeline.Len()
	timeline.Merge(messages)
	s.remember(participantID, messages)
	s.log.Debug("Conversation resynced", "participant", participantID, "recovered", timeline.Len()-before)
	return nil
}

// OfflineHistory reads the local cache, oldest message first.
func (s *ChatService) OfflineHistory(participantID string, cursor *string) ([]domain.Message, *string, error) {
	messages, next, err := s.history.GetMessages(participantID, cursor)
	if err != nil {
		return nil, nil, fmt.Errorf("offline history: %w", err)
	}
	return lo.Reverse(messages), next, nil
}

func (s *ChatService) Timeline(participantID string) (*projection.Timeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	timeline, ok := s.timelines[participantID]
	return timeline, ok
}

func (s *ChatService) CloseConversation(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timelines, participantID)
}

func (s *ChatService) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		// Each timeline keeps only the messages of its own participant
		for _, timeline := range s.openTimelines() {
			_ = timeline.Consume(ctx, evt)
		}
	case event.ConnectionRestored:
		for _, timeline := range s.openTimelines() {
			if err := s.Resync(ctx, timeline.Participant); err != nil {
				s.log.Warn("Resync failed", "participant", timeline.Participant, "error", err)
			}
		}
	}
	return nil
}

func (s *ChatService) openTimelines() []*projection.Timeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Values(s.timelines)
}

func (s *ChatService) remember(participantID string, messages []domain.Message) {
	if len(messages) == 0 {
		return
	}
	if err := s.history.StoreMessages(participantID, messages); err != nil {
		s.log.Warn("History not cached", "participant", participantID, "error", err)
	}
}
