// Package sales implementa la creación y reversa de ventas como primitivas del
// motor de stock: cada venta decrementa el libro y dispara la detección de
// bajo stock.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// UseCase crea y reversa ventas aplicando los hooks de reconciliación de stock.
type UseCase struct {
	tx       TxRunner
	itemRepo repository.StockItemRepository
	saleRepo repository.SaleRepository
	notifier *notification.UseCase
	cache    ReportCache
}

// NewUseCase construye el caso de uso de ventas.
func NewUseCase(
	tx TxRunner,
	itemRepo repository.StockItemRepository,
	saleRepo repository.SaleRepository,
	notifier *notification.UseCase,
	cache ReportCache,
) *UseCase {
	return &UseCase{tx: tx, itemRepo: itemRepo, saleRepo: saleRepo, notifier: notifier, cache: cache}
}

// CreateSale registra una venta. Valida TODAS las líneas contra el stock antes
// de confirmar: si alguna sobrevende, la operación completa se revierte y el
// error lista cada línea ofensiva (no solo la primera). El decremento usa la
// primitiva atómica con piso del repositorio; la transacción garantiza todo o
// nada. Una venta por exactamente el stock disponible es válida (deja 0).
func (uc *UseCase) CreateSale(ctx context.Context, companyID, userID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("venta sin líneas: %w", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if l.ItemID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("línea con ítem vacío o cantidad <= 0: %w", domain.ErrInvalidInput)
		}
	}

	var sale *entity.Sale
	var touched []string

	err := uc.tx.RunSale(ctx, func(
		itemRepo repository.StockItemRepository,
		saleRepo repository.SaleRepository,
		seqRepo repository.SequenceRepository,
	) error {
		var offending []domain.InsufficientLine
		items := make([]*entity.StockItem, 0, len(in.Lines))

		for _, l := range in.Lines {
			item, err := itemRepo.GetByID(l.ItemID)
			if err != nil {
				return err
			}
			if item.CompanyID != companyID {
				return domain.ErrForbidden
			}
			items = append(items, item)
			if item.Quantity < l.Quantity {
				offending = append(offending, domain.InsufficientLine{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Requested: l.Quantity,
					Available: item.Quantity,
				})
			}
		}
		if len(offending) > 0 {
			return &domain.InsufficientStockError{Lines: offending}
		}

		now := time.Now()
		subtotal := decimal.Zero
		saleItems := make([]entity.SaleItem, 0, len(in.Lines))
		for i, l := range in.Lines {
			// Decremento atómico con piso: si otra venta concurrente ganó la
			// carrera, esta falla aquí y la transacción se revierte completa.
			if err := itemRepo.DecrementStock(l.ItemID, l.Quantity); err != nil {
				return err
			}
			price := items[i].Price
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			lineTotal := price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			saleItems = append(saleItems, entity.SaleItem{
				ItemID:    l.ItemID,
				ItemName:  items[i].Name,
				Quantity:  l.Quantity,
				UnitPrice: price,
				LineTotal: lineTotal,
			})
			touched = append(touched, l.ItemID)
		}

		seq, err := seqRepo.Next(companyID, repository.SeqSale)
		if err != nil {
			return err
		}

		taxRate := decimal.Zero
		if in.TaxRate != nil {
			taxRate = *in.TaxRate
		}
		taxTotal := subtotal.Mul(taxRate)

		sale = &entity.Sale{
			ID:           uuid.NewString(),
			CompanyID:    companyID,
			Number:       fmt.Sprintf("VT-%06d", seq),
			CustomerName: in.CustomerName,
			Items:        saleItems,
			Subtotal:     subtotal,
			TaxTotal:     taxTotal,
			GrandTotal:   subtotal.Add(taxTotal),
			CreatedBy:    userID,
			CreatedAt:    now,
		}
		return saleRepo.Create(sale)
	})
	if err != nil {
		return nil, err
	}

	// Efectos secundarios no críticos: detección de bajo stock e invalidación
	// de cache. Sus fallas se registran y nunca tumban la venta ya confirmada.
	uc.afterStockChange(ctx, touched)

	return sale, nil
}

// DeleteSale reversa una venta: devuelve cada unidad al libro de stock y
// elimina el registro. La devolución y el borrado van en una sola transacción:
// la venta desaparece con todo su stock de vuelta, o nada cambia.
func (uc *UseCase) DeleteSale(ctx context.Context, companyID, saleID string) error {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return err
	}
	if sale.CompanyID != companyID {
		return domain.ErrForbidden
	}
	err = uc.tx.RunSale(ctx, func(
		itemRepo repository.StockItemRepository,
		saleRepo repository.SaleRepository,
		_ repository.SequenceRepository,
	) error {
		for _, it := range sale.Items {
			if err := itemRepo.IncrementStock(it.ItemID, it.Quantity); err != nil {
				return err
			}
		}
		return saleRepo.Delete(saleID)
	})
	if err != nil {
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("invalidación de cache tras reversa de venta falló")
		}
	}
	return nil
}

// afterStockChange re-evalúa bajo stock de cada ítem tocado y invalida el
// cache del reporte. Falla de forma silenciosa (solo log).
func (uc *UseCase) afterStockChange(ctx context.Context, itemIDs []string) {
	for _, id := range itemIDs {
		item, err := uc.itemRepo.GetByID(id)
		if err != nil {
			log.Warn().Err(err).Str("item_id", id).Msg("releer ítem tras venta falló")
			continue
		}
		if err := uc.notifier.EvaluateStockLevel(ctx, item); err != nil {
			log.Warn().Err(err).Str("item_id", id).Msg("alerta de stock tras venta falló")
		}
	}
	if uc.cache != nil {
		if err := uc.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("invalidación de cache tras venta falló")
		}
	}
}
