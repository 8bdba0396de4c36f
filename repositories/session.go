//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"chat-client/auth"
	"chat-client/errors"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const sessionKey = "session:current"

type ISessionRepository interface {
	Save(creds auth.Credentials) error
	Load() (auth.Credentials, error)
	Clear() error
}

// SessionRepository persists the credentials of the logged-in user between runs.
type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) ISessionRepository {
	return &SessionRepository{db: db}
}

func (s SessionRepository) Save(creds auth.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionKey), data)
	})
}

// Load returns ErrSessionNotFound when nobody is logged in.
func (s SessionRepository) Load() (auth.Credentials, error) {
	var creds auth.Credentials
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &creds)
		})
	})
	if err == badger.ErrKeyNotFound {
		return auth.Credentials{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return auth.Credentials{}, err
	}
	return creds, nil
}

func (s SessionRepository) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKey))
	})
}
