package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-sales-service/internal/api"
	"inventory-sales-service/internal/config"
	"inventory-sales-service/internal/inventory"
	"inventory-sales-service/internal/report"
	"inventory-sales-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "inventory-sales-service"

func main() {
	if err := godotenv.Load(); err != nil {
		// The environment may be provided some other way.
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)
	logger.Info("starting service",
		zap.String("service", serviceName),
		zap.String("app_env", cfg.AppEnv),
		zap.String("db_driver", cfg.DB.Driver))

	// --- Database Connection ---
	dbStore, err := openStore(cfg.DB, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// --- Services ---
	policy, err := inventory.ParseOrphanPolicy(cfg.Inventory.OrphanedOrderPolicy)
	if err != nil {
		logger.Fatal("invalid orphaned order policy", zap.Error(err))
	}
	inventorySvc := inventory.NewService(dbStore, logger.Named("inventory"),
		inventory.WithOrphanPolicy(policy),
		inventory.WithSalesIDPrefix(cfg.Inventory.SalesIDPrefix),
	)
	reportSvc := report.NewService(dbStore, report.WithLowStockThreshold(cfg.Inventory.LowStockThreshold))

	httpAPIHandler := api.NewHTTPHandler(api.Dependencies{
		Categories: dbStore,
		Products:   dbStore,
		Orders:     dbStore,
		Inventory:  inventorySvc,
		Reports:    reportSvc,
		DB:         dbStore,
		Logger:     logger.Named("http"),
	})

	// --- Setup & Start HTTP Server ---
	redisClient := newRedisClient(cfg.Redis, logger)
	var rateCounter api.RateCounter
	if redisClient != nil {
		rateCounter = api.NewRedisRateCounter(redisClient)
	}

	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, cfg.HttpServer.TimeoutRequest, logger)
	httpAPIHandler.RegisterRoutes(httpRouter,
		api.RateLimiter(rateCounter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger.Named("ratelimit")))

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	healthServer := health.NewServer()
	grpcServer := setupGRPCServer(healthServer, logger)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC health server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal("gRPC server Serve error", zap.Error(err))
		}
		logger.Info("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, healthServer, dbStore, redisClient, shutdownComplete)

	<-shutdownComplete
	logger.Info("service shutdown sequence finished")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg := zap.NewProductionConfig()
	if cfg.AppEnv == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
}

func openStore(dbCfg config.DBConfig, logger *zap.Logger) (*store.Store, error) {
	dialect, err := store.DialectFor(dbCfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dbCfg.Driver, dbCfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database connection established",
		zap.String("driver", dbCfg.Driver),
		zap.String("host", dbCfg.Host),
		zap.String("database", dbCfg.Name))

	dbStore := store.New(db, dialect)
	if dbCfg.AutoMigrate {
		if err := dbStore.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database schema is up to date")
	}
	return dbStore, nil
}

// newRedisClient returns nil when no address is configured or Redis cannot be reached;
// the rate limiter is then disabled.
func newRedisClient(redisCfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if redisCfg.Addr == "" {
		logger.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, rate limiting disabled", zap.String("addr", redisCfg.Addr), zap.Error(err))
		client.Close()
		return nil
	}
	logger.Info("redis connected, rate limiting enabled", zap.String("addr", redisCfg.Addr))
	return client
}

func setupBaseMiddleware(router *chi.Mux, requestTimeout time.Duration, logger *zap.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logger.Named("access")))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
}

func setupGRPCServer(healthServer *health.Server, logger *zap.Logger) *grpc.Server {
	s := grpc.NewServer()

	// The empty service name reports overall health; the named one is the HTTP API.
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	logger.Info("gRPC health check service registered")

	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	return s
}

func waitForShutdown(
	logger *zap.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	healthServer *health.Server,
	dbStore *store.Store,
	redisClient *redis.Client,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	// Health checks report NOT_SERVING while requests drain.
	healthServer.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("error closing redis client", zap.Error(err))
		}
	}
	if err := dbStore.Close(); err != nil {
		logger.Warn("error closing database connection", zap.Error(err))
	}

	logger.Info("graceful shutdown sequence completed")
}
