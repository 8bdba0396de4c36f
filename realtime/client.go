// Package realtime keeps the live-event channel of the chat API open.
// It speaks graphql-transport-ws over a websocket and turns pushed payloads
// into domain events. Reconnection is left to the supervisor running it.
package realtime

import (
	"chat-client/auth"
	"chat-client/contract"
	"chat-client/domain/event"
	"chat-client/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Options struct {
	AckTimeout   time.Duration
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		AckTimeout:   10 * time.Second,
		PingInterval: 20 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client is a contract.ILiveFeed. Each call to Run is one connection session.
type Client struct {
	url      string
	creds    auth.Credentials
	log      *slog.Logger
	registry contract.IRegistry
	events   chan<- event.DomainEvent
	dialer   *websocket.Dialer
	options  Options

	// mu guards conn, sessions and every write to conn
	mu       sync.Mutex
	conn     *websocket.Conn
	sessions int
}

func NewClient(
	url string,
	creds auth.Credentials,
	registry contract.IRegistry,
	events chan<- event.DomainEvent,
	log *slog.Logger,
	options Options,
) *Client {
	return &Client{
		url:      url,
		creds:    creds,
		log:      log,
		registry: registry,
		events:   events,
		options:  options,
		dialer: &websocket.Dialer{
			HandshakeTimeout: options.AckTimeout,
			Subprotocols:     []string{Subprotocol},
		},
	}
}

// Subscribe registers sub and sends it right away when connected.
// Otherwise it goes out with the next connection.
func (c *Client) Subscribe(sub contract.Subscription) string {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	// Registered under the lock so a concurrent attach cannot replay it as well
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Add(sub)
	if c.conn == nil {
		return sub.ID
	}
	msg, err := subscribeMessage(sub)
	if err == nil {
		err = c.writeLocked(msg)
	}
	if err != nil {
		// Run notices the broken link and re-subscribes on reconnect
		c.log.Warn("Subscribe not sent", "operation", sub.OperationName, "error", err)
	}
	return sub.ID
}

func (c *Client) Unsubscribe(id string) {
	if _, ok := c.registry.Remove(id); !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.writeLocked(message{ID: id, Type: typeComplete}); err != nil {
		c.log.Debug("Complete not sent", "id", id, "error", err)
	}
}

// Run dials, waits for the server acknowledgement, (re)sends every registered
// subscription and pumps events until the link drops or ctx is done.
// It returns nil only when ctx is done.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer func() { _ = conn.Close() }()

	if err = c.handshake(conn); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	restored, err := c.attach(conn)
	if err != nil {
		return err
	}
	defer c.detach()

	c.log.Info("Live channel connected", "url", c.url, "restored", restored)
	if restored {
		c.publish(ctx, event.ConnectionRestored{At: time.Now().UTC()})
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()
	go c.keepAlive(stop)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", errors.ErrConnectionClosed, err)
		}
		if err = c.dispatch(ctx, raw); err != nil {
			return err
		}
	}
}

// handshake sends connection_init with the bearer token and waits for connection_ack.
func (c *Client) handshake(conn *websocket.Conn) error {
	init, err := initMessage(c.creds.ConnectionParams())
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
	if err = conn.WriteJSON(init); err != nil {
		return fmt.Errorf("connection_init: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.options.AckTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()
	for {
		var msg message
		if err = conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrConnectionAck, err)
		}
		switch msg.Type {
		case typeConnectionAck:
			return nil
		case typePing:
			_ = conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
			if err = conn.WriteJSON(message{Type: typePong}); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
		default:
			return fmt.Errorf("%w: got %q", errors.ErrConnectionAck, msg.Type)
		}
	}
}

// attach makes conn the current connection and replays the registry on it.
func (c *Client) attach(conn *websocket.Conn) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = conn
	for _, sub := range c.registry.All() {
		msg, err := subscribeMessage(sub)
		if err != nil {
			c.log.Warn("Subscription skipped", "operation", sub.OperationName, "error", err)
			continue
		}
		if err = c.writeLocked(msg); err != nil {
			c.conn = nil
			return false, fmt.Errorf("subscribe %s: %w", sub.OperationName, err)
		}
	}
	restored := c.sessions > 0
	c.sessions++
	return restored, nil
}

func (c *Client) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = nil
}

func (c *Client) dispatch(ctx context.Context, raw []byte) error {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Warn("Unreadable frame dropped", "error", err)
		return nil
	}

	switch msg.Type {
	case typePing:
		return c.write(message{Type: typePong})
	case typePong:
	case typeNext:
		c.next(ctx, msg)
	case typeError:
		var errs []graphqlError
		_ = json.Unmarshal(msg.Payload, &errs)
		sub, _ := c.registry.Remove(msg.ID)
		c.log.Error("Subscription rejected", "operation", sub.OperationName, "errors", errorMessages(errs))
	case typeComplete:
		if sub, ok := c.registry.Remove(msg.ID); ok {
			c.log.Info("Subscription completed by server", "operation", sub.OperationName)
		}
	default:
		c.log.Debug("Unexpected frame", "type", msg.Type)
	}
	return nil
}

// next decodes one pushed result. A malformed payload is not an update.
func (c *Client) next(ctx context.Context, msg message) {
	sub, ok := c.registry.Get(msg.ID)
	if !ok || sub.Decode == nil {
		c.log.Debug("Result for unknown subscription", "id", msg.ID)
		return
	}
	var payload nextPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.log.Warn("Malformed result dropped", "operation", sub.OperationName, "error", err)
		return
	}
	if len(payload.Errors) > 0 {
		c.log.Warn("Result carries errors", "operation", sub.OperationName, "errors", errorMessages(payload.Errors))
	}
	if len(payload.Data) == 0 || string(payload.Data) == "null" {
		return
	}
	evt, err := sub.Decode(payload.Data)
	if err != nil {
		c.log.Warn("Malformed event dropped", "operation", sub.OperationName, "error", err)
		return
	}
	c.publish(ctx, evt)
}

func (c *Client) publish(ctx context.Context, evt event.DomainEvent) {
	select {
	case c.events <- evt:
	case <-ctx.Done():
	}
}

func (c *Client) keepAlive(stop <-chan struct{}) {
	if c.options.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.options.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write(message{Type: typePing}); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}

func (c *Client) write(msg message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.ErrConnectionClosed
	}
	return c.writeLocked(msg)
}

func (c *Client) writeLocked(msg message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
	return c.conn.WriteJSON(msg)
}
