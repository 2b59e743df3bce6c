// Package server wires the to-do API together: configuration, database and
// migrations, caches, auth services, the HTTP API, the gRPC health probe and
// the refresh-token purge job. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/cache"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/dmitrijs2005/todoapi/internal/server/httpapi"
	"github.com/dmitrijs2005/todoapi/internal/server/jobs"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todoitems"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/todoapi/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// runner is anything started by App.Run that blocks until ctx is done.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  cache.Cache

	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
	purger     *jobs.TokenPurger
}

// NewApp opens the database, applies migrations and builds every component.
// On error everything opened so far is closed.
func NewApp(ctx context.Context, cfg *config.Config) (app *App, err error) {
	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()

	if err = db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err = rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	c, err := cache.New(ctx, cache.Options{
		Backend:       cfg.CacheBackend,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.PasswordAlgorithm)
	if err != nil {
		return nil, err
	}

	signer, err := auth.NewTokenSigner(auth.TokenConfig{
		SigningKey:     []byte(cfg.SecretKey),
		Issuer:         cfg.Issuer,
		Audience:       cfg.Audience,
		AccessTokenTTL: cfg.AccessTokenValidityDuration,
	})
	if err != nil {
		return nil, err
	}

	refresh := auth.NewRefreshTokenManager(rm, cfg.RefreshTokenValidityDuration)
	authService := services.NewAuthService(db, rm, hasher, signer, refresh, logger)

	items := todoitems.NewCachedRepository(rm.TodoItems(db), c, cfg.CacheTTL, logger)
	todoService := services.NewTodoService(items)

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Deps{
		Auth:   authService,
		Todos:  todoService,
		Tokens: signer,
		Health: db.PingContext,
		Logger: logger,
	})

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		cache:      c,
		httpServer: httpapi.NewServer(cfg.EndpointAddrHTTP, router, logger),
		grpcServer: gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, db.PingContext),
		purger:     jobs.NewTokenPurger(rm.RefreshTokens(db), cfg.RefreshTokenRetention, cfg.CleanupInterval, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// start runs r and cancels the whole app if it fails.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "component stopped", "component", name, "error", err)
		cancelFunc()
	}
}

// Run starts the HTTP API, the gRPC health server and the purge job and
// blocks until a signal arrives, ctx is cancelled or one of them fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"http", app.config.EndpointAddrHTTP,
		"grpc", app.config.EndpointAddrGRPC,
		"cache", app.config.CacheBackend)

	app.initSignalHandler(cancelFunc)

	components := map[string]runner{
		"http":  app.httpServer,
		"grpc":  app.grpcServer,
		"purge": app.purger,
	}

	var wg sync.WaitGroup
	for name, r := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, name, r)
		}()
	}

	wg.Wait()
	app.close(context.WithoutCancel(ctx))
}

func (app *App) close(ctx context.Context) {
	if cl, ok := app.cache.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			app.logger.Warn(ctx, "cache close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
