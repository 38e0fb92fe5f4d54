// Package cache caché versionada de informes sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opendoors/balance-dual/internal/application/report"
)

const (
	versionKey  = "balance-dual:report:version"
	bumpChannel = "balance-dual.report.bump"
)

var _ report.Cache = (*ReportCache)(nil)

// raiseVersion fija la versión solo si la nueva es mayor; devuelve la vigente.
var raiseVersion = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0') or 0
local proposed = tonumber(ARGV[1])
if proposed > current then
	redis.call('SET', KEYS[1], proposed)
	return proposed
end
return current
`)

// ReportCache guarda informes integrales en JSON. Las claves llevan la versión global;
// Bump la incrementa y avisa por pub/sub a las demás instancias.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache crea la caché. ttl <= 0 guarda sin vencimiento.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl < 0 {
		ttl = 0
	}
	return &ReportCache{client: client, ttl: ttl}
}

// NewClient abre un cliente y verifica la conexión.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Version versión vigente de las claves; la inicializa en 1 si no existe.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *ReportCache) versioned(ctx context.Context, key string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("cache version: %w", err)
	}
	return key + ":v" + strconv.FormatInt(ver, 10), nil
}

// Load devuelve el informe guardado bajo key en la versión vigente.
func (c *ReportCache) Load(ctx context.Context, key string) (*report.ComprehensiveReport, bool, error) {
	vkey, err := c.versioned(ctx, key)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, vkey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", vkey, err)
	}
	var r report.ComprehensiveReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", vkey, err)
	}
	return &r, true, nil
}

// Store guarda el informe bajo key en la versión vigente.
func (c *ReportCache) Store(ctx context.Context, key string, r *report.ComprehensiveReport) error {
	vkey, err := c.versioned(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, vkey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", vkey, err)
	}
	return nil
}

// Bump invalida todas las entradas incrementando la versión y publica el cambio.
func (c *ReportCache) Bump(ctx context.Context) error {
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return fmt.Errorf("cache bump: %w", err)
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// RaiseVersion lleva la versión a ver si es mayor que la vigente. Nunca la hace retroceder:
// un aviso atrasado de otra instancia no reactiva entradas ya invalidadas.
func (c *ReportCache) RaiseVersion(ctx context.Context, ver int64) (int64, error) {
	current, err := raiseVersion.Run(ctx, c.client, []string{versionKey}, ver).Int64()
	if err != nil {
		return 0, fmt.Errorf("cache raise version: %w", err)
	}
	return current, nil
}

// ListenForInvalidation aplica en segundo plano las versiones publicadas por otras instancias
// hasta que ctx termine. Retorna en cuanto la suscripción queda armada.
func (c *ReportCache) ListenForInvalidation(ctx context.Context) {
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil && ver > 0 {
					_, _ = c.RaiseVersion(ctx, ver)
				}
			}
		}
	}()
}
