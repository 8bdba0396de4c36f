package realtime

import (
	"chat-client/api"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"encoding/json"
	"fmt"
)

// MessageReceived follows new messages. With a userID, the server only pushes
// the messages addressed to that user.
func MessageReceived(userID *string) contract.Subscription {
	sub := contract.Subscription{
		OperationName: "OnMessageReceived",
		Query:         api.MessageReceivedSubscription,
		Decode:        decodeMessageReceived,
	}
	if userID != nil {
		sub.OperationName = "OnUserMessageReceived"
		sub.Query = api.UserMessageReceivedSubscription
		sub.Variables = map[string]any{"userId": *userID}
	}
	return sub
}

func UserTyping(userID string) contract.Subscription {
	return contract.Subscription{
		OperationName: "OnUserTyping",
		Query:         api.UserTypingSubscription,
		Variables:     map[string]any{"userId": userID},
		Decode: func(data json.RawMessage) (event.DomainEvent, error) {
			typing, err := field[domain.UserTyping](data, "userTyping")
			if err != nil {
				return nil, err
			}
			return event.UserTyping{UserTyping: typing}, nil
		},
	}
}

func UserStatusChanged() contract.Subscription {
	return contract.Subscription{
		OperationName: "OnUserStatusChanged",
		Query:         api.UserStatusSubscription,
		Decode: func(data json.RawMessage) (event.DomainEvent, error) {
			status, err := field[domain.UserStatus](data, "userStatusChanged")
			if err != nil {
				return nil, err
			}
			if status.UserID == "" {
				return nil, fmt.Errorf("userStatusChanged: missing userId")
			}
			return event.UserStatusChanged{UserStatus: status}, nil
		},
	}
}

func decodeMessageReceived(data json.RawMessage) (event.DomainEvent, error) {
	msg, err := field[domain.Message](data, "messageReceived")
	if err != nil {
		return nil, err
	}
	if !msg.Valid() {
		return nil, fmt.Errorf("messageReceived: missing id or senderId")
	}
	return event.MessageReceived{Message: msg}, nil
}

func field[T any](data json.RawMessage, name string) (T, error) {
	var zero T
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	raw, ok := root[name]
	if !ok || string(raw) == "null" {
		return zero, fmt.Errorf("%s: no data", name)
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}
