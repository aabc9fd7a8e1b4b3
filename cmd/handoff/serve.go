package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/relaydesk/handoff/internal/bridge"
	"github.com/relaydesk/handoff/internal/config"
	"github.com/relaydesk/handoff/internal/handlers"
	"github.com/relaydesk/handoff/internal/logger"
	"github.com/relaydesk/handoff/internal/platform"
	"github.com/relaydesk/handoff/internal/proactive"
	"github.com/relaydesk/handoff/internal/response"
	"github.com/relaydesk/handoff/internal/server"
	"github.com/relaydesk/handoff/internal/session"
	"github.com/relaydesk/handoff/internal/state"
	"github.com/relaydesk/handoff/internal/storage"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideHTTPClient,
			provideDBPool,
			provideStore,
			provideReferenceStore,
			provideAuthenticator,
			provideRelay,
			provideProactiveHost,
			provideInboundProcessor,
			provideSessionClient,
			state.NewManager,
			response.NewProcessor,
			bridge.New,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewWebhookHandler),
			provideServerHandler(handlers.NewMessagesHandler),
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func provideDBPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { pool.Close(); return nil }})
	return pool, nil
}

func provideStore(pool *pgxpool.Pool) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return storage.NewPostgresStore(ctx, pool)
}

func provideReferenceStore(store storage.Store) *platform.ReferenceStore {
	return platform.NewReferenceStore(store)
}

func provideAuthenticator(log *slog.Logger, client *http.Client, cfg config.Config) *platform.Authenticator {
	return platform.NewAuthenticator(log, client, cfg.Platform.OAuthURL, cfg.Platform.ClientID, cfg.Platform.ClientSecret)
}

func provideRelay(log *slog.Logger, client *http.Client, auth *platform.Authenticator, refs *platform.ReferenceStore, cfg config.Config) *platform.Relay {
	return platform.NewRelay(log, client, auth, refs, cfg.Platform.APIURL, cfg.Platform.IntegrationID)
}

func provideProactiveHost(log *slog.Logger, client *http.Client) proactive.Host {
	return proactive.NewHTTPHost(log, client)
}

func provideInboundProcessor(log *slog.Logger, refs *platform.ReferenceStore, host proactive.Host, cfg config.Config) *platform.InboundProcessor {
	return platform.NewInboundProcessor(log, cfg.Platform.WebhookSecret, refs, host)
}

func provideSessionClient(log *slog.Logger, client *http.Client, cfg config.Config) session.Client {
	return session.NewHTTPClient(log, client, cfg.Session.BaseURL, cfg.Session.APIKey)
}

type serverParams struct {
	fx.In
	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.Handlers)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
