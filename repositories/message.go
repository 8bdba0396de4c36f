//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-client/domain"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(participantID string, message domain.Message) error
	StoreMessages(participantID string, messages []domain.Message) error
	GetMessages(participantID string, cursor *string) ([]domain.Message, *string, error)
}

// MessageRepository keeps a local copy of conversation histories so they
// can be read without a connection.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// StoreMessage persists a message under the conversation of participantID.
// The key is formatted as "msg:{participant}:{timestamp_padded}:{id}" to:
//  1. Keep a conversation's messages sorted by creation time (19-digit zero padding).
//  2. Make storing the same message twice a no-op overwrite, since the id is part of the key.
func (m MessageRepository) StoreMessage(participantID string, message domain.Message) error {
	return m.StoreMessages(participantID, []domain.Message{message})
}

func (m MessageRepository) StoreMessages(participantID string, messages []domain.Message) error {
	valid := lo.Filter(messages, func(msg domain.Message, _ int) bool { return msg.Valid() })
	if len(valid) == 0 {
		return nil
	}
	return m.db.Update(func(txn *badger.Txn) error {
		for _, message := range valid {
			bytes, err := json.Marshal(message)
			if err != nil {
				return err
			}
			if err = txn.Set(messageKey(participantID, message), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMessages returns a page of a conversation, newest first, using a reverse prefix scan.
// It stops collecting messages once the configured limitMessages is reached.
// The returned cursor resumes right after the last message of the page and is
// nil when no older message remains.
func (m MessageRepository) GetMessages(participantID string, cursor *string) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var next *string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", participantID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var lastKey string
		var seekKey []byte
		switch cursor {
		case nil:
			// Past the newest possible key, then walk back in time
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				next = &lastKey
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				var message domain.Message
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return messages, next, nil
}

func messageKey(participantID string, message domain.Message) []byte {
	var at int64
	if !message.CreatedAt.IsZero() {
		at = max(message.CreatedAt.UnixNano(), 0)
	}
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", participantID, at, message.ID))
}
