package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss la llave no está en caché.
var ErrCacheMiss = errors.New("cache miss")

// ReportCache caché de reportes serializados.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Invalidate borra todas las llaves con el prefijo dado.
	Invalidate(ctx context.Context, prefix string) error
}
