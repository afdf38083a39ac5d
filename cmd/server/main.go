package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/sellerhub/backend/api/handler"
	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/internal/config"
	"github.com/sellerhub/backend/internal/infrastructure/ledger"
	"github.com/sellerhub/backend/internal/infrastructure/monitor"
	pgInfra "github.com/sellerhub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/sellerhub/backend/internal/infrastructure/redis"
	"github.com/sellerhub/backend/internal/middleware"
	"github.com/sellerhub/backend/internal/router"
	"github.com/sellerhub/backend/internal/services"
	"github.com/sellerhub/backend/internal/services/lifecycle"
	"github.com/sellerhub/backend/pkg/httpcontext"
	"github.com/sellerhub/backend/pkg/logger"
	"github.com/sellerhub/backend/repository"
	"github.com/sellerhub/backend/repository/memory"
	pgRepo "github.com/sellerhub/backend/repository/postgres"
	redisRepo "github.com/sellerhub/backend/repository/redis"
	arbiterUC "github.com/sellerhub/backend/usecase/arbiter"
	deltaUC "github.com/sellerhub/backend/usecase/delta"
	orderflowUC "github.com/sellerhub/backend/usecase/orderflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		records repository.RecordStore
		pgPool  *pgxpool.Pool
	)
	if cfg.Storage.Driver == config.DriverPostgres {
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}
		pgPool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgPool.Close()
			return nil
		})
		records = pgRepo.NewRecordRepository(pgPool)
	} else {
		records = memory.NewRecordStore()
		zapLogger.Info("using in-memory record store")
	}

	var (
		presence    repository.PresenceRepository
		redisClient *goRedis.Client
	)
	if cfg.Redis.URL != "" {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		presence = redisRepo.NewPresenceRepository(redisClient, cfg.Redis.PresenceTTL)
	}

	ledgerStore, err := ledger.Open(cfg.Ledger.Path, cfg.Ledger.MaxBatch)
	if err != nil {
		zapLogger.Fatal("failed to open change ledger", zap.Error(err))
	}
	manager.Register("ledger", func(ctx context.Context) error {
		return ledgerStore.Close()
	})

	mon := monitor.New(pgPool, redisClient, ledgerStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	arbiter := arbiterUC.New(records, ledgerStore, zapLogger)
	orderflow := orderflowUC.New(arbiter, domain.TransitionPolicy{
		RefundRequiresDelivered: cfg.Orders.RefundRequiresDelivered,
	}, zapLogger)
	delta := deltaUC.New(ledgerStore, presence, zapLogger)

	if cfg.Watcher.Enabled {
		watcher := services.NewWatcher(delta, func(batch domain.DeltaBatch) {
			zapLogger.Info("delta batch observed",
				zap.Int("changes", len(batch.Changes.Audit)),
				zap.String("cursor", batch.Cursor.String()),
			)
		}, zapLogger, services.WatcherConfig{
			Interval: cfg.Watcher.Interval,
			Timeout:  cfg.Watcher.Timeout,
			Actor:    "system-watcher",
		})
		watcher.Start()
		manager.Register("delta_watcher", func(ctx context.Context) error {
			watcher.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Product: apiHandler.NewProductHandler(arbiter, ctxAdapter, zapLogger),
		Order:   apiHandler.NewOrderHandler(arbiter, orderflow, ctxAdapter, zapLogger),
		Delta:   apiHandler.NewDeltaHandler(delta, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	actorMiddleware := middleware.Actor(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, actorMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
