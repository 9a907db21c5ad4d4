package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/deskhq/deskhq/internal/actor"
	"github.com/deskhq/deskhq/internal/channel"
	"github.com/deskhq/deskhq/internal/config"
	"github.com/deskhq/deskhq/internal/conversation"
	"github.com/deskhq/deskhq/internal/db"
	"github.com/deskhq/deskhq/internal/handlers"
	"github.com/deskhq/deskhq/internal/journal"
	"github.com/deskhq/deskhq/internal/logger"
	"github.com/deskhq/deskhq/internal/message"
	"github.com/deskhq/deskhq/internal/server"
	"github.com/deskhq/deskhq/internal/whatsapp"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			channel.NewStore,
			actor.NewStore,
			actor.NewResolver,
			conversation.NewStore,
			provideConversationRouter,
			message.NewStore,
			provideMessageRecorder,
			journal.NewService,
			provideJournalPruner,
			providePipeline,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideChannelHandler),
			provideServerHandler(provideWebhookHandler),
			provideServer,
		),
		fx.Invoke(
			startJournalPruner,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
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
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideConversationRouter(log *slog.Logger, store *conversation.Store) *conversation.Router {
	return conversation.NewRouter(log, store)
}

func provideMessageRecorder(log *slog.Logger, store *message.Store) *message.Recorder {
	return message.NewRecorder(log, store)
}

func provideJournalPruner(log *slog.Logger, cfg config.Config, service *journal.Service) *journal.Pruner {
	return journal.NewPruner(log, service, cfg.Journal.PruneSchedule, cfg.Journal.RetentionDays)
}

func providePipeline(log *slog.Logger, channels *channel.Store, identities *actor.Resolver, conversations *conversation.Router, messages *message.Recorder, deliveryJournal *journal.Service) *whatsapp.Pipeline {
	return whatsapp.NewPipeline(log, channels, identities, conversations, messages, deliveryJournal)
}

func provideChannelHandler(log *slog.Logger, store *channel.Store) *handlers.ChannelHandler {
	return handlers.NewChannelHandler(log, store)
}

func provideWebhookHandler(log *slog.Logger, pipeline *whatsapp.Pipeline, channels *channel.Store, cfg config.Config) *handlers.WhatsAppWebhookHandler {
	return handlers.NewWhatsAppWebhookHandler(log, pipeline, channels, cfg.Server.MaxBodyBytes)
}

type serverParams struct {
	fx.In

	Config         config.Config
	Logger         *slog.Logger
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Config.Server.Addr, params.Config.Auth.JWTSecret,
		params.Logger, params.ServerHandlers)
}

func startJournalPruner(lc fx.Lifecycle, pruner *journal.Pruner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pruner.Start()
		},
		OnStop: func(ctx context.Context) error {
			pruner.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Migrate(cfg.Postgres); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
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
