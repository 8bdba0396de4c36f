package api

import (
	"chat-client/auth"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	graphql "github.com/hasura/go-graphql-client"
)

// Client runs queries and mutations against the GraphQL HTTP endpoint.
// A Client is bound to one set of credentials; use WithCredentials to switch.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
	creds      auth.Credentials
	gql        *graphql.Client
}

func NewClient(endpoint string, httpClient *http.Client, log *slog.Logger) *Client {
	return newClient(endpoint, httpClient, log, auth.Credentials{})
}

func newClient(endpoint string, httpClient *http.Client, log *slog.Logger, creds auth.Credentials) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		log:        log,
		creds:      creds,
		gql:        graphql.NewClient(endpoint, httpClient).WithRequestModifier(creds.Authorize),
	}
}

// WithCredentials returns a client whose requests carry the bearer token of creds.
func (c *Client) WithCredentials(creds auth.Credentials) *Client {
	return newClient(c.endpoint, c.httpClient, c.log, creds)
}

func (c *Client) Credentials() auth.Credentials {
	return c.creds
}

func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	return execute[domain.User](ctx, c, "GetCurrentUser", CurrentUserQuery, nil, "currentUser")
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	return execute[[]domain.User](ctx, c, "GetUsers", UsersQuery, nil, "users")
}

func (c *Client) Messages(ctx context.Context, userID string) ([]domain.Message, error) {
	return execute[[]domain.Message](ctx, c, "GetMessages", MessagesQuery,
		map[string]any{"userId": userID}, "messages")
}

func (c *Client) MessagesPage(ctx context.Context, userID string, limit, offset int) (domain.MessagePage, error) {
	return execute[domain.MessagePage](ctx, c, "GetMessagesPaginated", MessagesPageQuery,
		map[string]any{"userId": userID, "limit": limit, "offset": offset}, "messages")
}

func (c *Client) Conversations(ctx context.Context) ([]*domain.Conversation, error) {
	return execute[[]*domain.Conversation](ctx, c, "GetConversations", ConversationsQuery, nil, "conversations")
}

func (c *Client) Login(ctx context.Context, input domain.LoginInput) (domain.AuthPayload, error) {
	return execute[domain.AuthPayload](ctx, c, "Login", LoginMutation,
		map[string]any{"input": input}, "login")
}

func (c *Client) Signup(ctx context.Context, input domain.SignupInput) (domain.AuthPayload, error) {
	return execute[domain.AuthPayload](ctx, c, "Signup", SignupMutation,
		map[string]any{"input": input}, "signup")
}

func (c *Client) SendMessage(ctx context.Context, input domain.SendMessageInput) (domain.Message, error) {
	return execute[domain.Message](ctx, c, "SendMessage", SendMessageMutation,
		map[string]any{"input": input}, "sendMessage")
}

// execute runs one document and decodes the root field of its data.
// Failures are returned as is: nothing is retried.
func execute[T any](ctx context.Context, c *Client, operation, document string, variables map[string]any, field string) (T, error) {
	var zero T
	start := time.Now()
	data, err := c.gql.ExecRaw(ctx, document, variables)
	c.log.Debug("GraphQL request", "operation", operation, "duration", time.Since(start), "error", err)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", operation, err)
	}

	var root map[string]json.RawMessage
	if err = json.Unmarshal(data, &root); err != nil {
		return zero, fmt.Errorf("%s: decode data: %w", operation, err)
	}
	raw, ok := root[field]
	if !ok || string(raw) == "null" {
		return zero, fmt.Errorf("%s: %w", operation, errors.ErrEmptyResponse)
	}

	var result T
	if err = json.Unmarshal(raw, &result); err != nil {
		return zero, fmt.Errorf("%s: decode %s: %w", operation, field, err)
	}
	return result, nil
}
