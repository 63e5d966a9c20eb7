package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	httpadapter "nextstep-cv/internal/adapter/http"
	repo "nextstep-cv/internal/adapter/repository"
	"nextstep-cv/internal/config"
	"nextstep-cv/internal/importer"
	"nextstep-cv/internal/infrastructure/migration"
	"nextstep-cv/internal/session"
	"nextstep-cv/internal/store"
	"nextstep-cv/internal/usecase"
	infra "nextstep-cv/pkg/infrastructure"
	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
	"nextstep-cv/pkg/remote"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New("development").Fatal("cannot load config", err)
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("cannot open store", err, zap.String("driver", cfg.Store.Driver))
	}
	defer closeStore()

	// the submissions log is optional
	var pool *pgxpool.Pool
	if p, err := infra.NewPool(ctx, cfg.DB.DSN); err == nil {
		pool = p
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool, log); err != nil {
			log.Warn("migrations failed, submissions log disabled", zap.Error(err))
			pool = nil
		}
	} else if !errors.Is(err, infra.ErrNoDSN) {
		log.Warn("submissions DB not available", zap.Error(err))
	}
	submissions := repo.NewSubmissionsRepo(pool)

	m := metrics.New()
	authClient := remote.NewAuthClient(remote.NewClient(cfg.Auth.Host, cfg.Remote.Timeout))
	genClient := remote.NewGenerationClient(remote.NewClient(cfg.Gen.Host, cfg.Remote.Timeout))

	h := httpadapter.NewHandler(
		session.NewManager(authClient, log, m),
		importer.New(importer.DirSaver{Dir: cfg.Import.Dir}, nil, cfg.Import.Delay, log, m),
		usecase.NewSubmitter(genClient, submissions, log, m),
		usecase.NewExporter(infra.NewChromedpRenderer(cfg.Render.ChromePath), log),
		submissions,
		cfg.Remote.Timeout,
		log,
	)
	id := httpadapter.NewIdentity(cfg.Security.CookieSecret, cfg.IsProduction(), kv, log)
	app := httpadapter.NewApp(h, id, m, log)

	go func() {
		log.Info("listening", zap.String("port", cfg.App.Port), zap.String("auth_host", cfg.Auth.Host), zap.String("gen_host", cfg.Gen.Host))
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown", err)
	}
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return store.NewMemory(), func() {}, nil
	case config.StoreRedis:
		client, err := store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(client), func() { _ = client.Close() }, nil
	default:
		f, err := store.OpenFile(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}
