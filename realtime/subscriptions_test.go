package realtime

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageReceived_Variants(t *testing.T) {
	req := require.New(t)

	all := MessageReceived(nil)
	req.Equal("OnMessageReceived", all.OperationName)
	req.Nil(all.Variables)

	userID := "u1"
	filtered := MessageReceived(&userID)
	req.Equal("OnUserMessageReceived", filtered.OperationName)
	req.Equal(map[string]any{"userId": "u1"}, filtered.Variables)
}

func TestSubscriptions_Decode(t *testing.T) {
	tests := []struct {
		name    string
		decode  func(json.RawMessage) (event.DomainEvent, error)
		data    string
		want    event.DomainEvent
		wantErr bool
	}{
		{
			name:   "message received",
			decode: MessageReceived(nil).Decode,
			data:   `{"messageReceived":{"id":"m1","content":"hi","senderId":"u2","receiverId":"u1"}}`,
			want:   event.MessageReceived{Message: domain.Message{ID: "m1", Content: "hi", SenderID: "u2", ReceiverID: "u1"}},
		},
		{
			name:    "message without sender",
			decode:  MessageReceived(nil).Decode,
			data:    `{"messageReceived":{"id":"m1","content":"hi"}}`,
			wantErr: true,
		},
		{
			name:    "null message",
			decode:  MessageReceived(nil).Decode,
			data:    `{"messageReceived":null}`,
			wantErr: true,
		},
		{
			name:    "wrong shape",
			decode:  MessageReceived(nil).Decode,
			data:    `{"messageReceived":"hello"}`,
			wantErr: true,
		},
		{
			name:   "typing",
			decode: UserTyping("u2").Decode,
			data:   `{"userTyping":{"userId":"u2","isTyping":true}}`,
			want:   event.UserTyping{UserTyping: domain.UserTyping{UserID: "u2", IsTyping: true}},
		},
		{
			name:    "status without user",
			decode:  UserStatusChanged().Decode,
			data:    `{"userStatusChanged":{"isOnline":true}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := tt.decode(json.RawMessage(tt.data))
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}

func TestUserStatusChanged_Decode(t *testing.T) {
	req := require.New(t)
	got, err := UserStatusChanged().Decode(json.RawMessage(
		`{"userStatusChanged":{"userId":"u2","isOnline":false,"lastSeen":"2024-03-01T10:30:00Z"}}`))
	req.NoError(err)

	status, ok := got.(event.UserStatusChanged)
	req.True(ok)
	req.Equal("u2", status.UserID)
	req.False(status.IsOnline)
	req.NotNil(status.LastSeen)
	req.Equal(2024, status.LastSeen.Year())
}
