package main

import (
	"chat-client/internal"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

// Exit codes of the chat command.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type command func(ctx context.Context, app *App, args []string) (int, error)

var commands = map[string]command{
	"login":         loginCommand,
	"signup":        signupCommand,
	"logout":        logoutCommand,
	"whoami":        whoamiCommand,
	"users":         usersCommand,
	"conversations": conversationsCommand,
	"chat":          chatCommand,
	"cache":         cacheCommand,
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

// run loads the configuration, opens the local store and hands over to the
// requested command. Resources are released through defers before main exits.
func run(args []string) (int, error) {
	if len(args) == 0 {
		return exitConfig, fmt.Errorf("usage: chat <%s> [flags]", strings.Join(commandNames(), "|"))
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return exitConfig, fmt.Errorf("unknown command %q, expected one of %v", args[0], commandNames())
	}

	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Local store: saved session and history cache
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(config, log, db, os.Stdin, NewRenderer(os.Stdout, os.Stderr, true))
	return cmd(ctx, app, args[1:])
}

func commandNames() []string {
	names := lo.Keys(commands)
	sort.Strings(names)
	return names
}
