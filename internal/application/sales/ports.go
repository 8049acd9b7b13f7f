package sales

import (
	"context"

	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que una venta decrementa todas sus
// líneas o ninguna.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		saleRepo repository.SaleRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// ReportCache invalidación del cache del reporte de bajo stock tras mutar stock.
type ReportCache interface {
	InvalidateAll(ctx context.Context) error
}
