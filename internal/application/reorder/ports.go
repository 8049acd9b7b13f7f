package reorder

import (
	"context"

	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. La reposición rápida y la masiva mutan
// solicitud, stock y compra como una sola unidad.
type TxRunner interface {
	RunReorder(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// ReportCache invalidación del cache del reporte de bajo stock tras mutar stock.
type ReportCache interface {
	InvalidateAll(ctx context.Context) error
}
