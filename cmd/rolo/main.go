package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	rolodb "github.com/rolohq/rolo/db"
	"github.com/rolohq/rolo/internal/billing"
	"github.com/rolohq/rolo/internal/config"
	"github.com/rolohq/rolo/internal/contacts"
	"github.com/rolohq/rolo/internal/db"
	"github.com/rolohq/rolo/internal/handlers"
	"github.com/rolohq/rolo/internal/logger"
	"github.com/rolohq/rolo/internal/server"
	"github.com/rolohq/rolo/internal/users"
	"github.com/rolohq/rolo/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideRuntimeConfig,
			provideLogger,
			provideDBConn,
			provideStore,

			users.NewService,
			provideCheckout,
			provideWebhook,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(provideContactsHandler),
			provideServerHandler(handlers.NewBillingHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

// runtimeConfig holds parsed runtime settings derived from config plus env.
type runtimeConfig struct {
	JWTSecret    string
	JWTExpiresIn time.Duration
	ServerAddr   string
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideRuntimeConfig(cfg config.Config) (*runtimeConfig, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}
	return &runtimeConfig{
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTExpiresIn: expiresIn,
		ServerAddr:   cfg.Server.Addr,
	}, nil
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
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

// provideStore selects the contact record backend. The controller and the
// handlers see only the Store interface either way.
func provideStore(lc fx.Lifecycle, cfg config.Config, log *slog.Logger, pool *pgxpool.Pool) (contacts.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		store, err := contacts.OpenLocalStore(cfg.Storage.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
		return store, nil
	case config.BackendPostgres:
		return contacts.NewPostgresStore(log, pool), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

func provideCheckout(log *slog.Logger, cfg config.Config) *billing.Checkout {
	return billing.NewCheckout(log, cfg.Stripe)
}

func provideWebhook(log *slog.Logger, cfg config.Config, userService *users.Service) *billing.Webhook {
	return billing.NewWebhook(log, userService, cfg.Stripe.WebhookSecret)
}

func provideAuthHandler(log *slog.Logger, userService *users.Service, rc *runtimeConfig) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, userService, rc.JWTSecret, rc.JWTExpiresIn)
}

func provideContactsHandler(log *slog.Logger, store contacts.Store) *handlers.ContactsHandler {
	return handlers.NewContactsHandler(log, store)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Runtime        *runtimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Runtime.ServerAddr, params.Runtime.JWTSecret, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Rolo %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
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

func runMigrate(args []string) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	migrationsFS, err := fs.Sub(rolodb.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	return db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args)
}
