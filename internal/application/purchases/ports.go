package purchases

import (
	"context"

	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx (recepción de compra: status + stock juntos).
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// ReceiptSubscriber se notifica cuando una orden de compra pasa a "received".
// Desacopla la compra de la solicitud de reposición vinculada: el suscriptor
// resuelve la reorden por purchaseID sin que compras conozca ese modelo.
type ReceiptSubscriber interface {
	OnPurchaseReceived(ctx context.Context, purchase *entity.Purchase) error
}

// ReportCache invalidación del cache del reporte de bajo stock tras mutar stock.
type ReportCache interface {
	InvalidateAll(ctx context.Context) error
}
