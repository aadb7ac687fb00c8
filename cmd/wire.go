package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mialabs/mia-session/internal/adapters/browserenv"
	"github.com/mialabs/mia-session/internal/adapters/gateway/httpapi"
	stateadapter "github.com/mialabs/mia-session/internal/adapters/render/state"
	"github.com/mialabs/mia-session/internal/adapters/store/tomlfile"
	"github.com/mialabs/mia-session/internal/session"
)

type app struct {
	store         *tomlfile.Store
	gateway       *httpapi.Client
	env           *browserenv.Env
	logger        *slog.Logger
	stateRenderer func(session.State, stateadapter.RenderOptions) (string, error)
	transport     session.Transport
	loginTimeout  time.Duration
}

func wireApp() (*app, error) {
	logger := newLogger()

	store, err := tomlfile.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	transport := session.TransportPopup
	if envOrDefault("MIA_LOGIN_TRANSPORT", "popup") == "redirect" {
		transport = session.TransportRedirect
	}

	return &app{
		store:         store,
		gateway:       httpapi.NewClient(envOrDefault("MIA_API_BASE_URL", "https://api.askmia.ai")),
		env:           browserenv.New(logger),
		logger:        logger,
		stateRenderer: stateadapter.Render,
		transport:     transport,
		loginTimeout:  5 * time.Minute,
	}, nil
}

// newCoordinator builds a fresh coordinator. Each is single-use: a workspace
// switch requests a reload, and the reload is a new coordinator initialized
// from scratch.
func (a *app) newCoordinator() (*session.Coordinator, error) {
	return session.New(session.Config{
		Gateway:      a.gateway,
		Store:        a.store,
		Browser:      a.env,
		Navigator:    a.env,
		Logger:       a.logger,
		Transport:    a.transport,
		LoginTimeout: a.loginTimeout,
	})
}

// initSession builds and initializes a coordinator, then honors at most one
// queued reload so actions that switch tenants settle against the new one.
func (a *app) initSession(ctx context.Context) (*session.Coordinator, error) {
	coord, err := a.newCoordinator()
	if err != nil {
		return nil, err
	}
	if err := coord.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}
	return coord, nil
}

// settleReload re-initializes when the last action requested a page reload,
// returning the coordinator whose snapshot reflects the settled state.
func (a *app) settleReload(ctx context.Context, coord *session.Coordinator) (*session.Coordinator, error) {
	if !a.env.ConsumeReload() {
		return coord, nil
	}
	return a.initSession(ctx)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch envOrDefault("MIA_LOG_LEVEL", "") {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
