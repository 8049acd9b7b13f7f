package analytics

import "context"

// ReportCache cache del reporte de bajo stock (Redis en producción, noop si no
// hay cache configurado).
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
	InvalidateAll(ctx context.Context) error
}
