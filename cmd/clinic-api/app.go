package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kbukum/clinic/api"
	"github.com/kbukum/clinic/auth/password"
	"github.com/kbukum/clinic/auth/session"
	"github.com/kbukum/clinic/authz"
	"github.com/kbukum/clinic/bootstrap"
	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/kafka"
	"github.com/kbukum/clinic/kafka/producer"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/notify"
	"github.com/kbukum/clinic/observability"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/redis"
	"github.com/kbukum/clinic/resilience"
	"github.com/kbukum/clinic/server"
	"github.com/kbukum/clinic/server/middleware"
)

// infra holds the infrastructure components the configure phase builds on.
type infra struct {
	db       *database.Component
	redis    *redis.Component
	producer *producer.Producer
}

// newApp registers infrastructure components and the configure callback
// that wires the HTTP service on top of them.
func newApp(cfg *AppConfig) (*bootstrap.App[*AppConfig], error) {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return nil, err
	}
	in, err := registerInfra(app)
	if err != nil {
		return nil, err
	}
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
		return configure(ctx, a, in)
	})
	return app, nil
}

func registerInfra(app *bootstrap.App[*AppConfig]) (*infra, error) {
	cfg, log := app.Cfg, app.Logger
	in := &infra{}

	if err := app.RegisterComponent(observability.NewComponent(cfg.Telemetry, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, log)); err != nil {
		return nil, err
	}

	in.db = database.NewComponent(cfg.Database, log)
	if cfg.Database.AutoMigrate {
		in.db.WithSchema("auto-migrate", database.AutoMigrate(records.Models()...))
	}
	if err := app.RegisterComponent(in.db); err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		in.redis = redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(in.redis); err != nil {
			return nil, err
		}
	}

	if cfg.Kafka.Enabled {
		p, err := producer.NewProducer(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		in.producer = p
		kc := kafka.NewComponent(cfg.Kafka, log)
		kc.SetProducer(p)
		if err := app.RegisterComponent(kc); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// configure builds the business layer and registers the components that
// depend on it. Registration order is stop order reversed: the HTTP server
// stops first, then the notifier drains, then the session store.
func configure(_ context.Context, a *bootstrap.App[*AppConfig], in *infra) error {
	cfg, log := a.Cfg, a.Logger

	hasher, err := password.NewHasher(cfg.Auth.Password)
	if err != nil {
		return err
	}
	repo, err := records.NewRepository(in.db.DB(), hasher, log)
	if err != nil {
		return err
	}

	var client *redis.Client
	if in.redis != nil {
		client = in.redis.Client()
	}
	store, err := session.NewStore(cfg.Session, client, time.Now)
	if err != nil {
		return err
	}
	tokens, err := session.NewTokenService(cfg.Auth.JWT)
	if err != nil {
		return err
	}
	sessions := session.NewManager(cfg.Session, tokens, store, repo, repo, session.WithLogger(log))
	if c, ok := store.(component.Component); ok {
		if err := a.RegisterComponent(c); err != nil {
			return err
		}
	}

	notifier, err := newNotifier(a, in, log)
	if err != nil {
		return err
	}

	opts := api.Options{AllowUnownedCreate: cfg.Auth.AllowUnownedCreate}
	if rate := cfg.Auth.LoginRate(); rate > 0 {
		opts.LoginLimiter = resilience.NewKeyedRateLimiter(resilience.PerMinute("login", rate))
	}
	handler := api.New(sessions, authz.NewGuard(repo, nil), repo, notifier, opts, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewMetrics(reg, "clinic")
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll, reg)
	handler.Register(srv.Engine())
	a.Summary.TrackRoutes(srv.Routes()...)

	log.Info("auth configured", logger.Fields("auth", cfg.Auth.Describe(), "session_store", cfg.Session.Store))
	return a.RegisterComponent(server.NewComponent(srv))
}

// newNotifier publishes to Kafka when a producer is configured and logs
// events otherwise.
func newNotifier(a *bootstrap.App[*AppConfig], in *infra, log *logger.Logger) (notify.Notifier, error) {
	if in.producer == nil {
		return notify.NewLogNotifier(log), nil
	}
	kn := notify.NewKafkaNotifier(producer.NewPublisher(in.producer), a.Cfg.Kafka, a.Cfg.Notify, log)
	if err := a.RegisterComponent(kn); err != nil {
		return nil, err
	}
	return kn, nil
}
