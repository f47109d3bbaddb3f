package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eion/technotes/internal/api"
	"github.com/eion/technotes/internal/cache"
	"github.com/eion/technotes/internal/config"
	"github.com/eion/technotes/internal/database"
	"github.com/eion/technotes/internal/directory"
	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/health"
)

// AppState holds all application services
type AppState struct {
	Logger    *zap.Logger
	Config    *config.Config
	DB        *bun.DB
	Redis     *redis.Client
	Directory *directory.Directory
	Health    *health.Manager
}

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger()
	defer logger.Sync()

	ctx := context.Background()
	as, err := newAppState(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	if err := as.Health.StartupHealthCheck(ctx); err != nil {
		logger.Fatal("Startup health check failed", zap.Error(err))
	}

	admin := config.Directory().BootstrapAdmin
	err = directory.SetupDefaults(ctx, as.Directory.Users, directory.BootstrapAdmin{
		Username: admin.Username,
		Password: admin.Password,
	}, logger)
	if err != nil {
		logger.Error("Failed to setup defaults", zap.Error(err))
	}

	httpConfig := config.Http()
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(as.Directory, as.Health, api.RouterConfig{
		AllowedOrigins: httpConfig.AllowedOrigins,
		MaxRequestSize: httpConfig.MaxRequestSize,
	}, logger)

	server := &http.Server{
		Addr:              httpConfig.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := setupSignalHandler(as, server, logger)

	logger.Info("Starting technotes server",
		zap.String("address", server.Addr),
		zap.String("store", config.Directory().Store))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState opens the configured backends and wires the directory
func newAppState(ctx context.Context, logger *zap.Logger) (*AppState, error) {
	as := &AppState{
		Logger: logger,
		Config: config.Get(),
		Health: health.NewManager(logger),
	}

	var stores directory.Stores
	switch config.Directory().Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory directory store; data is lost on restart")
		stores = directory.NewMemoryStores()

	default:
		pgConfig := config.Postgres()
		logger.Info("Database configuration",
			zap.String("host", pgConfig.Host),
			zap.Int("port", pgConfig.Port),
			zap.String("database", pgConfig.Database),
			zap.String("user", pgConfig.User))

		db, err := database.Open(ctx, pgConfig.DSN(), pgConfig.MaxOpenConnections)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		as.DB = db
		as.Health.AddChecker(health.NewDatabaseChecker(db))
		stores = directory.NewPostgresStores(db)
	}

	var listCache users.ListCache
	if redisConfig := config.Redis(); redisConfig.Enabled {
		rdb, err := cache.NewClient(ctx, redisConfig.Addr(), redisConfig.Password, redisConfig.Database)
		if err != nil {
			logger.Warn("Redis unavailable, user list cache disabled", zap.Error(err))
		} else {
			as.Redis = rdb
			as.Health.AddChecker(health.NewRedisChecker(rdb))
			listCache = cache.NewUserListCache(rdb, time.Duration(redisConfig.TTL)*time.Second)
		}
	}

	dir, err := directory.New(stores, users.NewBcryptHasher(config.Security().BcryptCost), listCache, logger)
	if err != nil {
		as.close(logger)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	as.Directory = dir

	return as, nil
}

func (as *AppState) close(logger *zap.Logger) {
	if as.Redis != nil {
		if err := as.Redis.Close(); err != nil {
			logger.Error("Error closing redis client", zap.Error(err))
		}
	}
	if as.DB != nil {
		if err := as.DB.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	switch logConfig.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		as.close(logger)

		done <- struct{}{}
	}()

	return done
}
