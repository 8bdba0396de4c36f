package main

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/internal"
	"chat-client/realtime"
	"chat-client/repositories/storage"
	"chat-client/services"
	"context"
	goerrors "errors"
	"flag"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// validationErrors are reported before any request is made.
var validationErrors = []error{
	errors.ErrEmptyFields,
	errors.ErrPasswordMismatch,
	errors.ErrPasswordTooShort,
}

func parse(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if goerrors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitConfig, false
	}
	return exitOK, true
}

// failMutation prints "<action> Failed: <message>", or the bare validation message.
func failMutation(app *App, action string, err error) (int, error) {
	if lo.ContainsBy(validationErrors, func(v error) bool { return goerrors.Is(err, v) }) {
		app.Out.Fail("Error", err)
		return exitRuntime, nil
	}
	app.Out.Fail(action+" Failed", err)
	return exitRuntime, nil
}

func failQuery(app *App, what string, err error) (int, error) {
	app.Out.Fail("Error loading "+what, err)
	return exitRuntime, nil
}

func loginCommand(ctx context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	if *username == "" {
		*username = app.Ask("Username")
	}
	if *password == "" {
		*password = app.Ask("Password")
	}

	creds, err := app.Auth().Login(ctx, domain.LoginInput{Username: *username, Password: *password})
	if err != nil {
		return failMutation(app, "Login", err)
	}
	app.Out.Info("Logged in as %s", creds.User.Username)
	return exitOK, nil
}

func signupCommand(ctx context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password, at least 6 characters")
	confirm := fs.String("confirm", "", "Password again")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	for _, field := range []struct {
		value    *string
		question string
	}{
		{username, "Username"},
		{email, "Email"},
		{password, "Password"},
		{confirm, "Confirm password"},
	} {
		if *field.value == "" {
			*field.value = app.Ask(field.question)
		}
	}

	input := domain.SignupInput{Username: *username, Email: *email, Password: *password}
	creds, err := app.Auth().Signup(ctx, input, *confirm)
	if err != nil {
		return failMutation(app, "Signup", err)
	}
	app.Out.Info("Welcome %s", creds.User.Username)
	return exitOK, nil
}

func logoutCommand(_ context.Context, app *App, _ []string) (int, error) {
	if err := app.Auth().Logout(); err != nil {
		return exitRuntime, err
	}
	app.Out.Info("Logged out")
	return exitOK, nil
}

func whoamiCommand(ctx context.Context, app *App, _ []string) (int, error) {
	_, client, err := app.Authenticate()
	if err != nil {
		return exitRuntime, err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return failQuery(app, "user", err)
	}
	app.Out.Users([]domain.User{user})
	return exitOK, nil
}

func usersCommand(ctx context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	search := fs.String("search", "", "Keep users whose username or email contains this")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	creds, client, err := app.Authenticate()
	if err != nil {
		return exitRuntime, err
	}

	users, err := services.NewDirectoryService(client, creds.User, app.Log).Users(ctx, *search)
	if err != nil {
		return failQuery(app, "users", err)
	}
	app.Out.Users(users)
	return exitOK, nil
}

func conversationsCommand(ctx context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("conversations", flag.ContinueOnError)
	watch := fs.Bool("watch", false, "Keep the list updated from live events")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	creds, client, err := app.Authenticate()
	if err != nil {
		return exitRuntime, err
	}

	directory := services.NewDirectoryService(client, creds.User, app.Log)
	if _, err = directory.Conversations(ctx); err != nil {
		return failQuery(app, "conversations", err)
	}
	app.Out.Conversations(directory.Inbox())
	if !*watch {
		return exitOK, nil
	}

	app.Out.Info("Watching, Ctrl+C to quit")
	subs := []contract.Subscription{
		realtime.MessageReceived(&creds.User.ID),
		realtime.UserStatusChanged(),
	}
	// The inbox is patched before the directory checks it for unknown rows
	err = app.RunLive(ctx, creds, subs,
		directory.Inbox(),
		directory,
		storage.NewDiskSink(app.history, app.Log, creds.User.ID),
		NewInboxView(app.Out, directory.Inbox()),
	)
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func chatCommand(ctx context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	with := fs.String("with", "", "Id of the other participant")
	offline := fs.Bool("offline", false, "Read the local history cache without connecting")
	page := fs.Int("page", -1, "Print one page of history, 0 being the most recent, and exit")
	limit := fs.Int("limit", 20, "Messages per page")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	if *with == "" || *limit < 1 {
		fs.Usage()
		return exitConfig, nil
	}

	if *offline {
		return offlineChat(app, *with)
	}

	creds, client, err := app.Authenticate()
	if err != nil {
		return exitRuntime, err
	}
	chats := services.NewChatService(client, app.history, app.Log, app.Config.SendTimeout)

	if *page >= 0 {
		result, err := chats.HistoryPage(ctx, *with, *page, *limit)
		if err != nil {
			return failQuery(app, "messages", err)
		}
		for _, msg := range result.Messages {
			app.Out.Message(msg, creds.User.ID)
		}
		if result.HasMore {
			app.Out.Info("%d messages in total, older ones with -page %d", result.TotalCount, *page+1)
		}
		return exitOK, nil
	}

	// 1. Who we are talking to
	directory := services.NewDirectoryService(client, creds.User, app.Log)
	users, err := directory.Users(ctx, "")
	if err != nil {
		return failQuery(app, "users", err)
	}
	participant, found := lo.Find(users, func(u domain.User) bool { return u.ID == *with })
	if !found {
		participant = domain.User{ID: *with, Username: *with}
	}

	// 2. History
	timeline, err := chats.OpenConversation(ctx, participant.ID)
	if err != nil {
		return failQuery(app, "messages", err)
	}
	defer chats.CloseConversation(participant.ID)
	view := NewTimelineView(app.Out, timeline, creds.User, participant)
	app.Out.Header("Chat with " + participant.Username)
	view.Flush()

	// 3. Live events and user input until end of input or Ctrl+C
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subs := []contract.Subscription{
			realtime.MessageReceived(&creds.User.ID),
			realtime.UserTyping(participant.ID),
		}
		return app.RunLive(gctx, creds, subs,
			chats,
			storage.NewDiskSink(app.history, app.Log, creds.User.ID),
			view,
		)
	})

	g.Go(func() error {
		defer cancel()
		lines := app.Lines()
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok || strings.TrimSpace(line) == "/quit" {
					return nil
				}
				if _, err := chats.Send(gctx, participant.ID, line); err != nil {
					if !goerrors.Is(err, errors.ErrEmptyMessage) {
						app.Out.Fail("Send Failed", err)
					}
					continue
				}
				view.Flush()
			}
		}
	})

	if err = g.Wait(); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func offlineChat(app *App, participantID string) (int, error) {
	owner, _ := app.sessions.Load()
	chats := services.NewChatService(nil, app.history, app.Log, app.Config.SendTimeout)

	messages, next, err := chats.OfflineHistory(participantID, nil)
	if err != nil {
		return exitRuntime, err
	}
	app.Out.Header("Offline history with " + participantID)
	if len(messages) == 0 {
		app.Out.Info("Nothing cached for this conversation")
	}
	for _, msg := range messages {
		app.Out.Message(msg, owner.User.ID)
	}
	if next != nil {
		app.Out.Info("Older messages are cached, raise HISTORY_LIMIT to see them")
	}
	return exitOK, nil
}

func cacheCommand(_ context.Context, app *App, args []string) (int, error) {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	prefix := fs.String("prefix", "msg:", "Key prefix to list")
	if code, ok := parse(fs, args); !ok {
		return code, nil
	}
	rows, err := internal.Inspect(app.DB, *prefix, nil)
	if err != nil {
		return exitRuntime, err
	}
	app.Out.Cache(rows)
	return exitOK, nil
}
