package main

import (
	"bufio"
	"chat-client/api"
	"chat-client/auth"
	"chat-client/contract"
	"chat-client/domain/event"
	"chat-client/internal"
	"chat-client/realtime"
	"chat-client/repositories"
	"chat-client/runtime"
	"chat-client/runtime/workers"
	"chat-client/services"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// App carries what every command needs. Credentials are never stored here:
// each command restores them and hands them explicitly to what needs them.
type App struct {
	Config   internal.Config
	Log      *slog.Logger
	DB       *badger.DB
	Out      *Renderer
	in       *bufio.Reader
	http     *http.Client
	sessions repositories.ISessionRepository
	history  repositories.MessageRepository
}

func NewApp(config internal.Config, log *slog.Logger, db *badger.DB, in io.Reader, out *Renderer) *App {
	return &App{
		Config:   config,
		Log:      log,
		DB:       db,
		Out:      out,
		in:       bufio.NewReader(in),
		http:     &http.Client{Timeout: config.RequestTimeout},
		sessions: repositories.NewSessionRepository(db),
		history:  repositories.NewMessageRepository(db, log, config.HistoryLimit),
	}
}

// API returns an anonymous client; bind credentials with WithCredentials.
func (a *App) API() *api.Client {
	return api.NewClient(a.Config.HTTPEndpoint, a.http, a.Log)
}

func (a *App) Auth() *services.AuthService {
	return services.NewAuthService(a.API(), a.sessions, a.Log)
}

// Authenticate restores the saved session and binds it to an API client.
func (a *App) Authenticate() (auth.Credentials, *api.Client, error) {
	creds, err := a.Auth().Restore()
	if err != nil {
		return auth.Credentials{}, nil, fmt.Errorf("%w, run: chat login", err)
	}
	return creds, a.API().WithCredentials(creds), nil
}

// Ask prompts for one line of input. It returns an empty answer at end of input.
func (a *App) Ask(question string) string {
	_, _ = fmt.Fprintf(a.Out.out, "%s: ", question)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// Lines streams the remaining input lines until end of input.
func (a *App) Lines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// RunLive keeps the live channel open, feeding every event to sinks in order,
// until ctx is done or reconnection is abandoned.
func (a *App) RunLive(ctx context.Context, creds auth.Credentials, subs []contract.Subscription, sinks ...contract.EventSink) error {
	events := make(chan event.DomainEvent, a.Config.EventBufferSize)
	feed := realtime.NewClient(a.Config.WSEndpoint, creds, runtime.NewRegistry(), events, a.Log, a.Config.LiveOptions())
	for _, sub := range subs {
		feed.Subscribe(sub)
	}
	fanout := workers.NewEventFanout(a.Log, events).WithName("live").Add(sinks...)
	capacity := workers.NewChannelCapacityWorker(a.Log,
		[]workers.NamedChannel{{Name: "live events", Channel: events}},
		a.Config.MetricInterval, a.Config.LowCapacity)

	liveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sup := workers.NewSupervisor(a.Log, a.Config.RetryPolicy())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Add(feed, fanout, capacity).Run(liveCtx)
	}()

	select {
	case <-done:
		return nil
	case err := <-sup.Errors():
		cancel()
		<-done
		return err
	}
}
