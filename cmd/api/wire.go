package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/bryanwahyu/ip-inspection/internal/application"
	appai "github.com/bryanwahyu/ip-inspection/internal/application/ai"
	"github.com/bryanwahyu/ip-inspection/internal/application/identity"
	appinspection "github.com/bryanwahyu/ip-inspection/internal/application/inspection"
	"github.com/bryanwahyu/ip-inspection/internal/config"
	domai "github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	"github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
	"github.com/bryanwahyu/ip-inspection/internal/infra/ai/dashscope"
	aiopenai "github.com/bryanwahyu/ip-inspection/internal/infra/ai/openai"
	"github.com/bryanwahyu/ip-inspection/internal/infra/auth"
	rediscache "github.com/bryanwahyu/ip-inspection/internal/infra/cache/redis"
	mysqlp "github.com/bryanwahyu/ip-inspection/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/ip-inspection/internal/infra/db/postgres"
	kafkaevents "github.com/bryanwahyu/ip-inspection/internal/infra/events/kafka"
	"github.com/bryanwahyu/ip-inspection/internal/infra/monitoring/nagios"
	minioStore "github.com/bryanwahyu/ip-inspection/internal/infra/storage"
	"github.com/bryanwahyu/ip-inspection/internal/middleware"
)

// app holds the wired service and whatever needs closing on exit.
type app struct {
	svc      *appinspection.Service
	checkers map[string]middleware.HealthChecker
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("shutdown step=close err=%v", err)
		}
	}
}

// build wires adapters from cfg. The record store, cache, archive and event
// stream are optional; without a database host nothing is persisted.
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{checkers: map[string]middleware.HealthChecker{}}
	clock := application.SystemClock{}

	svc := &appinspection.Service{
		Regions:          cfg.Regions(),
		Monitor:          nagios.NewClient(cfg.Monitoring.Timeout),
		Clock:            clock,
		OnPersistFailure: middleware.IncrementPersistFailures,
	}

	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}
	if completer != nil {
		svc.Scorer = appai.NewService(completer)
	} else {
		log.Printf("startup step=ai result=not_configured")
	}

	if cfg.Database.Host != "" {
		db, profiles, records, err := openStore(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}

		idSvc := &identity.Service{
			Profiles:       profiles,
			Clock:          clock,
			AnonymousEmail: cfg.Auth.AnonymousEmail,
			AnonymousName:  cfg.Auth.AnonymousName,
		}
		if cfg.Auth.SigningKey != "" {
			idSvc.Verifier = auth.NewVerifier(cfg.Auth.SigningKey)
		}
		if cfg.Redis.Addr != "" {
			cache := rediscache.NewProfileCache(rediscache.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			})
			idSvc.Cache = cache
			a.closers = append(a.closers, cache.Close)
			a.checkers["redis"] = middleware.CheckerFunc(cache.Check)
		}
		svc.Identity = idSvc
		svc.Records = records
	} else {
		log.Printf("startup step=store result=disabled")
	}

	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		svc.Archive = store
		a.checkers["minio"] = middleware.CheckerFunc(store.Check)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafkaevents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		svc.Events = pub
		a.closers = append(a.closers, pub.Close)
	}

	a.svc = svc
	return a, nil
}

// newCompleter returns nil when no AI key is configured.
func newCompleter(cfg *config.Config) (domai.Completer, error) {
	if cfg.AI.APIKey == "" {
		return nil, nil
	}
	switch cfg.AI.Provider {
	case "dashscope":
		return dashscope.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.Timeout), nil
	case "openai":
		return aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, profile.Repository, inspection.RecordRepository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewProfileRepository(db), mysqlp.NewRecordRepository(db), nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgresp.NewProfileRepository(db), postgresp.NewRecordRepository(db), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
