package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saleswise/backend-go/internal/config"
)

// RedisClient wraps the redis client with helper methods for the report cache
type RedisClient struct {
	client *redis.Client
	logger *slog.Logger
	cfg    *config.Config
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config, logger *slog.Logger) (*RedisClient, error) {
	logger.Info("🔌 [Redis] Connecting to Redis...",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"db", cfg.RedisDB,
	)

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return &RedisClient{
		client: client,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// NewRedisClientForTesting creates a Redis client with a provided redis.Client (for testing)
func NewRedisClientForTesting(client *redis.Client, cfg *config.Config, logger *slog.Logger) *RedisClient {
	return &RedisClient{
		client: client,
		logger: logger,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// reportKeyPattern matches every cached report key
const reportKeyPattern = "report:*"

// DailyReportKey is the cache key of the daily report for date
func DailyReportKey(date time.Time) string {
	return fmt.Sprintf("report:daily:%s", date.Format("2006-01-02"))
}

// MonthlyReportKey is the cache key of the monthly report for year/month
func MonthlyReportKey(year int, month time.Month) string {
	return fmt.Sprintf("report:monthly:%04d-%02d", year, int(month))
}

// GetReport reads a cached report. A missing key is not an error.
func (r *RedisClient) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.logger.Error("❌ [Redis] Failed to get cached report",
			"key", key,
			"error", err,
		)
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A payload we cannot decode is treated as a miss and dropped
		r.logger.Warn("⚠️ [Redis] Failed to unmarshal cached report, discarding",
			"key", key,
			"error", err,
		)
		r.client.Del(ctx, key)
		return false, nil
	}

	r.logger.Debug("📖 [Redis] Report cache hit", "key", key)
	return true, nil
}

// SetReport stores a report with the configured TTL
func (r *RedisClient) SetReport(ctx context.Context, key string, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		r.logger.Error("❌ [Redis] Failed to marshal report",
			"key", key,
			"error", err,
		)
		return err
	}

	ttl := time.Duration(r.cfg.ReportCacheTTL) * time.Second
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to cache report",
			"key", key,
			"error", err,
		)
		return err
	}

	r.logger.Debug("💾 [Redis] Cached report",
		"key", key,
		"ttl", ttl,
	)

	return nil
}

// InvalidateDate removes the daily and monthly reports containing date
func (r *RedisClient) InvalidateDate(ctx context.Context, date time.Time) error {
	keys := []string{
		DailyReportKey(date),
		MonthlyReportKey(date.Year(), date.Month()),
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to invalidate reports",
			"date", date.Format("2006-01-02"),
			"error", err,
		)
		return err
	}

	r.logger.Debug("🗑️ [Redis] Invalidated cached reports", "keys", keys)
	return nil
}

// InvalidateAll removes every cached report
func (r *RedisClient) InvalidateAll(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, reportKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to scan cached reports", "error", err)
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("❌ [Redis] Failed to invalidate reports", "error", err)
		return err
	}

	r.logger.Debug("🗑️ [Redis] Invalidated all cached reports", "count", len(keys))
	return nil
}

// GetClient returns the underlying Redis client (shared with the rate limiter)
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// NoOpReportCache never stores anything.
// Used when Redis is not available.
type NoOpReportCache struct{}

// NewNoOpReportCache creates a cache that always misses
func NewNoOpReportCache(logger *slog.Logger) ReportCache {
	logger.Warn("⚠️ [Redis] Using no-op report cache - reports are computed on every request")
	return &NoOpReportCache{}
}

func (NoOpReportCache) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (NoOpReportCache) SetReport(ctx context.Context, key string, report interface{}) error {
	return nil
}

func (NoOpReportCache) InvalidateDate(ctx context.Context, date time.Time) error {
	return nil
}

func (NoOpReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (NoOpReportCache) Close() error {
	return nil
}
