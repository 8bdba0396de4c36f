package services

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/mocks"
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDirectoryService_Users(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	api := mocks.NewMockIChatAPI(ctrl)
	me := domain.User{ID: "u1", Username: "alice"}
	svc := NewDirectoryService(api, me, log)

	email := "Bob@Example.com"
	users := []domain.User{
		me,
		{ID: "u2", Username: "bob", Email: &email},
		{ID: "u3", Username: "carol"},
	}
	api.EXPECT().Users(gomock.Any()).Return(users, nil).AnyTimes()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"everyone but me", "", []string{"u2", "u3"}},
		{"blank search", "   ", []string{"u2", "u3"}},
		{"by username, any case", "CAR", []string{"u3"}},
		{"by email", "example", []string{"u2"}},
		{"never me", "alice", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := svc.Users(context.Background(), tt.search)
			req.NoError(err)
			req.Equal(tt.want, lo.Map(got, func(u domain.User, _ int) string { return u.ID }))
		})
	}
}

func TestDirectoryService_RefreshesOnNewCorrespondent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	api := mocks.NewMockIChatAPI(ctrl)
	svc := NewDirectoryService(api, domain.User{ID: "u1"}, log)

	known := []*domain.Conversation{{ID: "c2", Participant: domain.User{ID: "u2"}}}
	api.EXPECT().Conversations(gomock.Any()).Return(known, nil).Times(1)
	_, err := svc.Conversations(context.Background())
	req.NoError(err)

	// Given a message from a known participant, nothing is refetched
	req.NoError(svc.Consume(context.Background(), event.MessageReceived{Message: message("m1", "u2", "u1")}))

	// Given a message from someone new, the list is refetched
	refreshed := append(known, &domain.Conversation{ID: "c4", Participant: domain.User{ID: "u4"}})
	api.EXPECT().Conversations(gomock.Any()).Return(refreshed, nil).Times(1)
	req.NoError(svc.Consume(context.Background(), event.MessageReceived{Message: message("m2", "u4", "u1")}))

	req.True(svc.Inbox().Has("u4"))
	req.Len(svc.Inbox().Conversations(), 2)

	// Given a message between two other users, nothing is refetched
	req.NoError(svc.Consume(context.Background(), event.MessageReceived{Message: message("m3", "u7", "u8")}))
}

func TestDirectoryService_RefreshesOnReconnect(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := mocks.NewMockIChatAPI(ctrl)
	svc := NewDirectoryService(api, domain.User{ID: "u1"}, slog.Default())

	api.EXPECT().Conversations(gomock.Any()).Return(nil, nil).Times(1)
	req.NoError(svc.Consume(context.Background(), event.ConnectionRestored{}))
	req.NoError(svc.Consume(context.Background(), event.UserTyping{}))
}
