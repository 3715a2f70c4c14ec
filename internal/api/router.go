package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/handler"
	"github.com/saleswise/backend-go/internal/middleware"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	employeeHandler *handler.EmployeeHandler,
	saleHandler *handler.SaleHandler,
	reportHandler *handler.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter middleware.RateLimiter,
	logger *slog.Logger,
) *gin.Engine {
	if strings.ToLower(cfg.AppEnv) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/hello", authHandler.Hello)

	// Auth routes (Public, rate limited)
	authGroup := r.Group("/auth")
	{
		limit := middleware.LimitByClientIP(rateLimiter, "auth", logger)
		authGroup.POST("/register", limit, authHandler.Register)
		authGroup.POST("/login", limit, authHandler.Login)
	}

	// Protected API routes
	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/employees", employeeHandler.List)
		protected.POST("/employees", employeeHandler.Create)
		protected.GET("/employees/stats", employeeHandler.Stats)
		protected.PUT("/employees/:id", employeeHandler.Update)
		protected.DELETE("/employees/:id", employeeHandler.Delete)

		protected.GET("/sales", saleHandler.List)
		protected.POST("/sales", saleHandler.Create)
		protected.GET("/sales/:id", saleHandler.Get)
		protected.PUT("/sales/:id", saleHandler.Update)
		protected.DELETE("/sales/:id", saleHandler.Delete)

		protected.GET("/reports/daily", reportHandler.Daily)
		protected.GET("/reports/monthly", reportHandler.Monthly)
		protected.GET("/reports/monthly/export", reportHandler.ExportMonthly)
	}

	return r
}
