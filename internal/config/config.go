package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv             string
	LogLevel           slog.Level
	ApiServicePort     string
	ApiGrpcPort        string
	DBDriver           string
	SQLitePath         string
	PostgreSQLHost     string
	PostgreSQLPort     int64
	PostgreSQLUser     string
	PostgreSQLPassword string
	PostgreSQLDatabase string
	JWTSecret          string
	TokenExpiration    int64 // seconds
	RedisHost          string
	RedisPort          int64
	RedisPassword      string
	RedisDB            int64
	ReportCacheTTL     int64 // seconds
	AuthRateLimit      int64 // attempts per window, 0 disables
	AuthRateWindow     int64 // seconds
	ShiftTotalsMode    ShiftTotalsMode
	CORSAllowedOrigins []string
	AdminEmail         string
	AdminPassword      string
	ShutdownTimeout    int64 // seconds
}

// LoadConfig reads the process environment, after merging an optional .env file.
func LoadConfig() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),                     // Default development
		LogLevel:           getLogLevel(),                                        // Default INFO
		ApiServicePort:     getEnv("API_SERVICE_PORT", "8080"),                   // Default 8080
		ApiGrpcPort:        getEnv("API_GRPC_PORT", "50052"),                     // Default 50052 (health probe)
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)), // Default postgres
		SQLitePath:         getEnv("SQLITE_PATH", "saleswise.db"),                // Default ./saleswise.db
		PostgreSQLHost:     getEnv("POSTGRESQL_HOST", "db"),                      // Default db
		PostgreSQLPort:     getEnvAsInt64("POSTGRESQL_PORT", 5432),               // Default 5432
		PostgreSQLUser:     getEnv("POSTGRESQL_USER", "saleswise_user"),          // Default user
		PostgreSQLPassword: getEnv("POSTGRESQL_PASSWORD", "saleswise_password"),  // Default password
		PostgreSQLDatabase: getEnv("POSTGRESQL_DATABASE", "saleswise_db"),        // Default database name
		JWTSecret:          getEnv("JWT_SECRET", "saleswise_secret"),             // Default secret key
		TokenExpiration:    getEnvAsInt64("TOKEN_EXPIRATION", 604800),            // Default 7 days
		RedisHost:          getEnv("REDIS_HOST", "redis"),                        // Default redis
		RedisPort:          getEnvAsInt64("REDIS_PORT", 6379),                    // Default 6379
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),                         // Default empty
		RedisDB:            getEnvAsInt64("REDIS_DATABASE", 0),                   // Default 0
		ReportCacheTTL:     getEnvAsInt64("REPORT_CACHE_TTL", 300),               // Default 5 minutes
		AuthRateLimit:      getEnvAsInt64("AUTH_RATE_LIMIT", 20),                 // Default 20 attempts
		AuthRateWindow:     getEnvAsInt64("AUTH_RATE_WINDOW", 60),                // Default 1 minute
		ShiftTotalsMode:    ParseShiftTotalsMode(getEnv("REPORT_SHIFT_TOTALS_MODE", "")),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		ShutdownTimeout:    getEnvAsInt64("SHUTDOWN_TIMEOUT", 10), // Default 10 seconds
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
