package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix prefijo de todas las claves del reporte de bajo stock. La
// invalidación barre este prefijo completo: cualquier mutación de stock puede
// cambiar el orden global del reporte, así que no vale invalidar por clave.
const KeyPrefix = "low_stock:report:"

const scanBatchSize = 100

var _ analytics.ReportCache = (*ReportCache)(nil)
var _ analytics.ReportCache = (*NoopReportCache)(nil)

// ReportCache cache del reporte de bajo stock sobre Redis.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache construye el cache según la configuración: Redis si está
// habilitado, noop si no. Falla si Redis está habilitado pero no responde.
func NewReportCache(cfg config.CacheConfig) (analytics.ReportCache, error) {
	if !cfg.Enabled {
		return &NoopReportCache{}, nil
	}
	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ReportCache{client: client, ttl: ttl}, nil
}

// Get devuelve el payload cacheado y un hit/miss. Un miss no es error.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return payload, true, nil
}

// Set guarda el payload con el TTL configurado.
func (c *ReportCache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateAll borra todas las claves del reporte (SCAN por prefijo, sin KEYS).
func (c *ReportCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	pattern := KeyPrefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// NoopReportCache implementación nula: siempre miss, nunca falla. Se usa
// cuando no hay Redis configurado y en tests.
type NoopReportCache struct{}

func (NoopReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }
func (NoopReportCache) Set(ctx context.Context, key string, payload []byte) error { return nil }
func (NoopReportCache) InvalidateAll(ctx context.Context) error                   { return nil }
