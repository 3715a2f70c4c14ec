package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/saleswise/backend-go/internal/api"
	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database"
	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
	internalgrpc "github.com/saleswise/backend-go/internal/grpc"
	"github.com/saleswise/backend-go/internal/handler"
	"github.com/saleswise/backend-go/internal/logger"
	"github.com/saleswise/backend-go/internal/middleware"
	"github.com/saleswise/backend-go/internal/worker"
)

const databaseCheckInterval = 15 * time.Second

func main() {
	healthcheck := flag.Bool("healthcheck", false, "query the local gRPC health probe and exit")
	flag.Parse()

	// 1. Config
	cfg := config.LoadConfig()

	if *healthcheck {
		os.Exit(probe(cfg))
	}

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting SalesWise API...",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"shift_totals_mode", cfg.ShiftTotalsMode,
	)

	// 3. Connect to Database
	db, err := database.ConnectDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// 5. Initialize Redis (report cache + auth rate limiter)
	var (
		reportCache database.ReportCache
		rateLimiter middleware.RateLimiter
	)
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis", "error", err)
		appLogger.Info("💡 Reports will be computed on every request and auth is not rate limited")
		reportCache = database.NewNoOpReportCache(appLogger)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	} else {
		reportCache = redisClient
		rateLimiter = middleware.NewRateLimiter(redisClient.GetClient(), cfg, appLogger)
	}
	defer reportCache.Close()

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, cfg, appLogger)
	employeeService := service.NewEmployeeService(employeeRepo, reportCache, appLogger)
	saleService := service.NewSaleService(saleRepo, reportCache, appLogger)
	reportService := service.NewReportService(saleRepo, reportCache, cfg, appLogger)

	if err := authService.EnsureStaffUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		appLogger.Error("❌ Failed to provision staff user", "error", err)
		os.Exit(1)
	}

	// 7. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, appLogger)
	employeeHandler := handler.NewEmployeeHandler(employeeService, reportService, appLogger)
	saleHandler := handler.NewSaleHandler(saleService, appLogger)
	reportHandler := handler.NewReportHandler(reportService, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	r := api.SetupRouter(cfg, authHandler, employeeHandler, saleHandler, reportHandler, authMiddleware, rateLimiter, appLogger)

	// 8. Start servers
	pool := worker.NewPool(appLogger)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ApiGrpcPort))
	if err != nil {
		appLogger.Error("❌ Failed to listen for gRPC", "error", err)
		os.Exit(1)
	}
	healthServer := internalgrpc.NewHealthServer(appLogger)
	pool.Go("grpc-health", func(ctx context.Context) error {
		return healthServer.Serve(grpcListener)
	})
	pool.Go("database-monitor", func(ctx context.Context) error {
		healthServer.MonitorDatabase(ctx, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, databaseCheckInterval)
		return nil
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	pool.Go("http", func(ctx context.Context) error {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	healthServer.SetServing(true)

	// 9. Wait for a signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		appLogger.Info("📴 [Go] Shutdown signal received", "signal", sig.String())
	case err := <-pool.Errors():
		appLogger.Error("❌ Server stopped unexpectedly", "error", err)
		exitCode = 1
	}

	// 10. Graceful shutdown
	timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	healthServer.SetServing(false)
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("❌ HTTP Server shutdown failed", "error", err)
		exitCode = 1
	}
	healthServer.GracefulStop()

	if !pool.Shutdown(timeout) {
		exitCode = 1
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("👋 [Go] SalesWise API stopped")
	if exitCode != 0 {
		reportCache.Close()
		os.Exit(exitCode)
	}
}

// probe backs the container health check: 0 when the local API reports SERVING.
func probe(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status, err := internalgrpc.Check(ctx, net.JoinHostPort("127.0.0.1", cfg.ApiGrpcPort), internalgrpc.ServiceName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if status != healthpb.HealthCheckResponse_SERVING {
		fmt.Fprintln(os.Stderr, "status:", status.String())
		return 1
	}
	return 0
}
