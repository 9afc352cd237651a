package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/paisapp/paisa/internal/broadcast"
	"github.com/paisapp/paisa/internal/discovery"
	"github.com/paisapp/paisa/internal/engine"
	"github.com/paisapp/paisa/internal/service"
	"github.com/paisapp/paisa/internal/store"
)

// app is the assembled stack behind every command.
type app struct {
	store   *store.Store
	service *service.Service
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// openApp configures logging, opens the database, and assembles the
// service stack. Callers must Close the returned app.
func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	bus := broadcast.New()
	eng, err := engine.New(ctx, st, bus)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start ledger engine", err)
	}

	scanner := discovery.NewSimulated(discovery.DefaultPeers())
	return &app{
		store:   st,
		service: service.New(eng, st, bus, scanner),
	}, nil
}
