package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todos/api/handler"
	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/boltdb"
	"github.com/fastygo/todos/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todos/internal/infrastructure/postgres"
	"github.com/fastygo/todos/internal/middleware"
	"github.com/fastygo/todos/internal/router"
	"github.com/fastygo/todos/internal/services/lifecycle"
	"github.com/fastygo/todos/pkg/httpcontext"
	"github.com/fastygo/todos/pkg/logger"
	"github.com/fastygo/todos/pkg/security"
	"github.com/fastygo/todos/pkg/token"
	"github.com/fastygo/todos/repository"
	boltRepo "github.com/fastygo/todos/repository/bolt"
	"github.com/fastygo/todos/repository/postgres"
	authUC "github.com/fastygo/todos/usecase/auth"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  "todos",
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	mon := monitor.New(cfg.Health.Interval, zapLogger)
	users, todos := openStores(appCtx, cfg, manager, mon, zapLogger)

	if err := mon.Start(); err != nil {
		zapLogger.Fatal("health monitor failed", zap.Error(err))
	}
	manager.Register("monitor", mon.Stop)

	issuer, err := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		zapLogger.Fatal("token issuer misconfigured", zap.Error(err))
	}

	authUseCase := authUC.New(users, security.NewBcryptHasher(cfg.Security.BcryptCost), issuer, zapLogger)
	todoUseCase := todoUC.New(todos, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Todo:   apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	var metrics *middleware.Metrics
	if cfg.HTTP.EnableMetrics {
		metrics = middleware.NewMetrics()
	}
	guard := middleware.Authenticate(authUseCase, metrics, zapLogger)
	r := router.New(handlers, guard, router.Options{
		Prefix:  cfg.HTTP.APIPrefix,
		Metrics: metrics,
	})

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger)(metrics.Instrument(r.Handler)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver),
			zap.String("prefix", cfg.HTTP.APIPrefix),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStores connects the configured backend, registers its health check and
// shutdown hook, and returns the repositories built on it.
func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, mon *monitor.Monitor, zapLogger *zap.Logger) (repository.UserRepository, repository.TodoRepository) {
	switch cfg.Store.Driver {
	case config.DriverBolt:
		store, err := boltdb.Open(cfg.Store.BoltPath, boltRepo.Buckets...)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.String("path", cfg.Store.BoltPath), zap.Error(err))
		}
		mon.Add("boltdb", store)
		manager.Register("boltdb", func(context.Context) error {
			return store.Close()
		})
		zapLogger.Info("bolt store opened", zap.String("path", cfg.Store.BoltPath))
		return boltRepo.NewUserRepository(store), boltRepo.NewTodoRepository(store)

	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		mon.Add("postgres", pool)
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return postgres.NewUserRepository(pool), postgres.NewTodoRepository(pool)
	}
}
