// Command console serves the medical stock administration console.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	appconfig "github.com/dmitrymomot/medstock/internal/config"
	"github.com/dmitrymomot/medstock/internal/events"
	"github.com/dmitrymomot/medstock/internal/metrics"
	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/internal/web"
	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/httpserver"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/mongo"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/redis"
	"github.com/dmitrymomot/medstock/pkg/requestid"
	"github.com/dmitrymomot/medstock/pkg/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("console stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}

	opts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
		logger.WithContextExtractors(requestid.LoggerExtractor(), roleExtractor),
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return err
		}
		opts = append(opts, logger.WithLevel(level))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect failed", logger.Error(err))
		}
	}()
	checks := []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(db.Client())}}

	credentials, err := auth.NewMongoStorage(ctx, db)
	if err != nil {
		return err
	}
	provider := auth.NewPasswordProvider(credentials, cfg.Auth.TokenSecret,
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
		auth.WithAttemptLimit(rate.Limit(float64(cfg.Auth.AttemptsPerMinute)/60), cfg.Auth.AttemptBurst),
		auth.WithLogger(log),
	)

	publisher, closePublisher, err := dialEvents(cfg.Events, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	repo, err := users.NewMongoRepository(ctx, db)
	if err != nil {
		return err
	}
	catalog := rbac.Default()
	svc := users.NewService(repo,
		users.WithAccounts(provider),
		users.WithPublisher(publisher),
		users.WithCatalog(catalog),
		users.WithLogger(log),
	)
	defer svc.Close()

	if cfg.Bootstrap.Enabled() {
		created, err := svc.Bootstrap(ctx, users.CreateInput{
			Name:     cfg.Bootstrap.AdminName,
			Email:    cfg.Bootstrap.AdminEmail,
			Phone:    cfg.Bootstrap.AdminPhone,
			Password: cfg.Bootstrap.AdminPassword,
		})
		if err != nil {
			return err
		}
		if created {
			log.Info("administrator bootstrapped", slog.String("email", cfg.Bootstrap.AdminEmail))
		}
	}

	store, err := sessionStore(ctx, cfg, &checks)
	if err != nil {
		return err
	}
	sessions := session.New(provider, users.NewDirectory(svc),
		session.WithConfig(cfg.Session),
		session.WithStore(store),
		session.WithSeeds(cfg.Seeds()...),
		session.WithLogger(log),
	)
	defer sessions.Close()

	m := metrics.New()
	sessions.Subscribe(m.SessionObserver())
	sessions.Subscribe(users.LastLoginObserver(svc, log))

	srv := web.New(web.Deps{
		Sessions: sessions,
		Users:    svc,
		Catalog:  catalog,
		Metrics:  m,
		Checks:   checks,
		Logger:   log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(gctx, srv.Routes())
	})
	g.Go(func() error {
		err := sessions.Watch(gctx, svc.Profiles(gctx))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		// Without change streams snapshots still follow local writes.
		if err := svc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("user change stream stopped", logger.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func dialEvents(cfg events.Config, log *slog.Logger) (events.Publisher, func(), error) {
	if cfg.URL == "" {
		log.Info("no event broker configured, events are discarded")
		return events.Noop{}, func() {}, nil
	}
	p, err := events.Dial(cfg, events.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return p, closer(p, log), nil
}

func sessionStore(ctx context.Context, cfg appconfig.Config, checks *[]httpserver.Check) (session.Store, error) {
	if cfg.Session.Store != "redis" {
		return session.NewMemoryStore(cfg.Session.CleanupInterval), nil
	}
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	*checks = append(*checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	return session.NewRedisStore(client), nil
}

func roleExtractor(ctx context.Context) (slog.Attr, bool) {
	role, ok := rbac.RoleFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.Role(role), true
}

func closer(c io.Closer, log *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("close failed", logger.Error(err))
		}
	}
}
