//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain"
	"chat-client/domain/event"
	"context"
	"encoding/json"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
	Errors() <-chan error
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IChatAPI is the request/response half of the GraphQL API.
type IChatAPI interface {
	CurrentUser(ctx context.Context) (domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
	Messages(ctx context.Context, userID string) ([]domain.Message, error)
	MessagesPage(ctx context.Context, userID string, limit, offset int) (domain.MessagePage, error)
	Conversations(ctx context.Context) ([]*domain.Conversation, error)
	Login(ctx context.Context, input domain.LoginInput) (domain.AuthPayload, error)
	Signup(ctx context.Context, input domain.SignupInput) (domain.AuthPayload, error)
	SendMessage(ctx context.Context, input domain.SendMessageInput) (domain.Message, error)
}

// Decoder turns the data of one subscription payload into a domain event.
type Decoder func(data json.RawMessage) (event.DomainEvent, error)

// Subscription is a live operation the transport keeps alive across reconnects.
type Subscription struct {
	ID            string
	OperationName string
	Query         string
	Variables     map[string]any
	Decode        Decoder
}

// ILiveFeed is the push half of the API.
type ILiveFeed interface {
	Worker
	Subscribe(sub Subscription) string
	Unsubscribe(id string)
}

type IRegistry interface {
	Add(sub Subscription)
	Remove(id string) (Subscription, bool)
	Get(id string) (Subscription, bool)
	All() []Subscription
}
