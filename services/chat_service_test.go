package services

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"chat-client/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func message(id, sender, receiver string) domain.Message {
	return domain.Message{ID: id, Content: "content " + id, SenderID: sender, ReceiverID: receiver}
}

func messageIDs(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.ID })
}

func TestChatService_OpenConversation(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	api := mocks.NewMockIChatAPI(ctrl)
	history := mocks.NewMockIMessageRepository(ctrl)
	svc := NewChatService(api, history, log, time.Second)

	fetched := []domain.Message{message("m1", "u2", "u1"), message("m2", "u1", "u2")}
	api.EXPECT().Messages(gomock.Any(), "u2").Return(fetched, nil)
	history.EXPECT().StoreMessages("u2", fetched).Return(nil)

	timeline, err := svc.OpenConversation(context.Background(), "u2")

	req.NoError(err)
	req.Equal([]string{"m1", "m2"}, messageIDs(timeline.Messages()))
	opened, ok := svc.Timeline("u2")
	req.True(ok)
	req.Same(timeline, opened)

	svc.CloseConversation("u2")
	_, ok = svc.Timeline("u2")
	req.False(ok)
}

func TestChatService_OpenConversation_QueryFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mocks.NewMockIChatAPI(ctrl)
	history := mocks.NewMockIMessageRepository(ctrl)
	svc := NewChatService(api, history, slog.Default(), time.Second)

	api.EXPECT().Messages(gomock.Any(), "u2").Return(nil, errors.ErrEmptyResponse)

	_, err := svc.OpenConversation(context.Background(), "u2")

	req.ErrorIs(err, errors.ErrEmptyResponse)
	_, ok := svc.Timeline("u2")
	req.False(ok)
}

func TestChatService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	api := mocks.NewMockIChatAPI(ctrl)
	history := mocks.NewMockIMessageRepository(ctrl)
	svc := NewChatService(api, history, log, time.Second)

	api.EXPECT().Messages(gomock.Any(), "u2").Return(nil, nil)
	_, err := svc.OpenConversation(context.Background(), "u2")
	require.NoError(t, err)

	t.Run("should trim and append once confirmed", func(t *testing.T) {
		req := require.New(t)
		sent := message("m9", "u1", "u2")

		api.EXPECT().
			SendMessage(gomock.Any(), domain.SendMessageInput{ReceiverID: "u2", Content: "hello"}).
			DoAndReturn(func(ctx context.Context, _ domain.SendMessageInput) (domain.Message, error) {
				_, hasDeadline := ctx.Deadline()
				req.True(hasDeadline)
				return sent, nil
			})
		history.EXPECT().StoreMessage("u2", sent).Return(nil)

		got, err := svc.Send(context.Background(), "u2", "  hello \n")

		req.NoError(err)
		req.Equal(sent, got)
		timeline, _ := svc.Timeline("u2")
		req.Equal([]string{"m9"}, messageIDs(timeline.Messages()))
	})

	t.Run("should reject blank content", func(t *testing.T) {
		req := require.New(t)
		api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Send(context.Background(), "u2", "   ")

		req.ErrorIs(err, errors.ErrEmptyMessage)
	})

	t.Run("should leave the timeline untouched on failure", func(t *testing.T) {
		req := require.New(t)
		api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(domain.Message{}, context.DeadlineExceeded)

		_, err := svc.Send(context.Background(), "u2", "lost")

		req.ErrorIs(err, context.DeadlineExceeded)
		timeline, _ := svc.Timeline("u2")
		req.Equal(1, timeline.Len())
	})
}

func TestChatService_Consume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	api := mocks.NewMockIChatAPI(ctrl)
	history := mocks.NewMockIMessageRepository(ctrl)
	history.EXPECT().StoreMessages(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	svc := NewChatService(api, history, log, time.Second)

	api.EXPECT().Messages(gomock.Any(), "u2").Return([]domain.Message{message("m1", "u2", "u1")}, nil)
	api.EXPECT().Messages(gomock.Any(), "u3").Return(nil, nil)
	_, err := svc.OpenConversation(context.Background(), "u2")
	req.NoError(err)
	_, err = svc.OpenConversation(context.Background(), "u3")
	req.NoError(err)

	// Given a message from u2 delivered twice, it lands once and only in u2's timeline
	evt := event.MessageReceived{Message: message("m2", "u2", "u1")}
	req.NoError(svc.Consume(context.Background(), evt))
	req.NoError(svc.Consume(context.Background(), evt))

	u2, _ := svc.Timeline("u2")
	u3, _ := svc.Timeline("u3")
	req.Equal([]string{"m1", "m2"}, messageIDs(u2.Messages()))
	req.Equal(0, u3.Len())

	// Given the link comes back, the missed messages are merged in
	api.EXPECT().Messages(gomock.Any(), "u2").
		Return([]domain.Message{message("m1", "u2", "u1"), message("m2", "u2", "u1"), message("m3", "u2", "u1")}, nil)
	api.EXPECT().Messages(gomock.Any(), "u3").Return(nil, errors.ErrEmptyResponse)

	req.NoError(svc.Consume(context.Background(), event.ConnectionRestored{At: time.Now()}))
	req.Equal([]string{"m1", "m2", "m3"}, messageIDs(u2.Messages()))
}

func TestChatService_Resync_NotOpen(t *testing.T) {
	req := require.New(t)
	svc := NewChatService(nil, nil, slog.Default(), time.Second)

	req.ErrorIs(svc.Resync(context.Background(), "u9"), errors.ErrNoSuchConversation)
}

func TestChatService_OfflineHistory_OldestFirst(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mocks.NewMockIMessageRepository(ctrl)
	svc := NewChatService(nil, history, slog.Default(), time.Second)

	cursor := "next"
	history.EXPECT().GetMessages("u2", nil).
		Return([]domain.Message{message("m3", "u2", "u1"), message("m2", "u1", "u2")}, &cursor, nil)

	messages, next, err := svc.OfflineHistory("u2", nil)

	req.NoError(err)
	req.Equal([]string{"m2", "m3"}, messageIDs(messages))
	req.Equal(&cursor, next)
}

func TestChatService_HistoryPage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mocks.NewMockIChatAPI(ctrl)
	history := mocks.NewMockIMessageRepository(ctrl)
	svc := NewChatService(api, history, slog.Default(), time.Second)

	page := domain.MessagePage{Messages: []domain.Message{message("m5", "u2", "u1")}, HasMore: true, TotalCount: 11}
	api.EXPECT().MessagesPage(gomock.Any(), "u2", 5, 10).Return(page, nil)
	history.EXPECT().StoreMessages("u2", page.Messages).Return(nil)

	got, err := svc.HistoryPage(context.Background(), "u2", 2, 5)

	req.NoError(err)
	req.True(got.HasMore)
	req.Equal(11, got.TotalCount)
}
