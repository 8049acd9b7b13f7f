// Package purchases implementa las primitivas de órdenes de compra que el
// motor de reposición consume: creación, cambio de estado (con el disparador
// de recepción), pagos y reversa.
package purchases

import (
	"context"
	"encoding/json"
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

// UseCase primitivas de órdenes de compra.
type UseCase struct {
	tx           TxRunner
	itemRepo     repository.StockItemRepository
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	notifier     *notification.UseCase
	cache        ReportCache
	subscribers  []ReceiptSubscriber
}

// NewUseCase construye el caso de uso de compras.
func NewUseCase(
	tx TxRunner,
	itemRepo repository.StockItemRepository,
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	notifier *notification.UseCase,
	cache ReportCache,
) *UseCase {
	return &UseCase{
		tx:           tx,
		itemRepo:     itemRepo,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		notifier:     notifier,
		cache:        cache,
	}
}

// SubscribeReceipt registra un suscriptor del evento "compra recibida".
func (uc *UseCase) SubscribeReceipt(s ReceiptSubscriber) {
	uc.subscribers = append(uc.subscribers, s)
}

// CreatePurchase crea una orden de compra en estado pending con el snapshot
// del proveedor denormalizado.
func (uc *UseCase) CreatePurchase(ctx context.Context, companyID, userID string, in dto.CreatePurchaseRequest) (*entity.Purchase, error) {
	if in.SupplierID == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("compra sin proveedor o sin líneas: %w", domain.ErrInvalidInput)
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if !supplier.Active {
		return nil, fmt.Errorf("proveedor inactivo: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]entity.PurchaseItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ItemID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("línea con ítem vacío o cantidad <= 0: %w", domain.ErrInvalidInput)
		}
		item, err := uc.itemRepo.GetByID(l.ItemID)
		if err != nil {
			return nil, err
		}
		cost := item.Cost
		if l.UnitCost != nil {
			cost = *l.UnitCost
		}
		lineTotal := cost.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, entity.PurchaseItem{
			ItemID:    l.ItemID,
			ItemName:  item.Name,
			Quantity:  l.Quantity,
			UnitCost:  cost,
			LineTotal: lineTotal,
		})
	}

	taxRate, shipping := decimal.Zero, decimal.Zero
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if in.ShippingCost != nil {
		shipping = *in.ShippingCost
	}
	taxTotal := subtotal.Mul(taxRate)

	var purchase *entity.Purchase
	err = uc.tx.RunPurchase(ctx, func(
		_ repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		seq, err := seqRepo.Next(companyID, repository.SeqPurchase)
		if err != nil {
			return err
		}
		purchase = &entity.Purchase{
			ID:              uuid.NewString(),
			CompanyID:       companyID,
			Number:          fmt.Sprintf("PC-%06d", seq),
			SupplierID:      supplier.ID,
			SupplierName:    supplier.Name,
			SupplierContact: supplier.ContactName,
			Items:           items,
			Subtotal:        subtotal,
			TaxTotal:        taxTotal,
			ShippingCost:    shipping,
			GrandTotal:      subtotal.Add(taxTotal).Add(shipping),
			PaymentStatus:   entity.PaymentStatusUnpaid,
			PaidAmount:      decimal.Zero,
			Status:          entity.PurchaseStatusPending,
			CreatedBy:       userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return purchaseRepo.Create(purchase)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifPurchase,
		Title:       "Orden de compra creada",
		Message:     fmt.Sprintf("Orden %s a %s por %s", purchase.Number, supplier.Name, purchase.GrandTotal.StringFixed(2)),
		RelatedID:   purchase.ID,
		RelatedType: "purchase",
	})
	return purchase, nil
}

// UpdateStatus cambia el estado de una orden. La transición a received
// incrementa el stock de cada línea en la misma transacción y luego publica el
// evento a los suscriptores (resolución de la reorden vinculada).
func (uc *UseCase) UpdateStatus(ctx context.Context, companyID, purchaseID, status string) error {
	switch status {
	case entity.PurchaseStatusPending, entity.PurchaseStatusReceived, entity.PurchaseStatusCancelled:
	default:
		return fmt.Errorf("estado de compra desconocido %q: %w", status, domain.ErrInvalidInput)
	}

	purchase, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return err
	}
	if purchase.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if purchase.Status == status {
		return nil
	}
	// received y cancelled son terminales para una orden.
	if purchase.Status != entity.PurchaseStatusPending {
		return fmt.Errorf("la orden ya está %s: %w", purchase.Status, domain.ErrConflict)
	}

	if status != entity.PurchaseStatusReceived {
		return uc.purchaseRepo.UpdateStatus(purchaseID, status)
	}

	// Recepción: stock y estado cambian juntos o no cambian.
	err = uc.tx.RunPurchase(ctx, func(
		itemRepo repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		for _, it := range purchase.Items {
			if err := itemRepo.IncrementStock(it.ItemID, it.Quantity); err != nil {
				return err
			}
		}
		return purchaseRepo.UpdateStatus(purchaseID, entity.PurchaseStatusReceived)
	})
	if err != nil {
		return err
	}
	purchase.Status = entity.PurchaseStatusReceived

	uc.dispatchReceived(ctx, purchase)
	uc.invalidateQuiet(ctx)
	return nil
}

// RecordPayment registra un abono contra la orden. Un abono que exceda el
// saldo pendiente se rechaza sin mutación.
func (uc *UseCase) RecordPayment(ctx context.Context, companyID, purchaseID, userID string, in dto.RecordPaymentRequest) error {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("abono <= 0: %w", domain.ErrInvalidInput)
	}
	purchase, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return err
	}
	if purchase.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if in.Amount.GreaterThan(purchase.Balance()) {
		return fmt.Errorf("abono %s excede el saldo %s: %w",
			in.Amount.StringFixed(2), purchase.Balance().StringFixed(2), domain.ErrInvalidInput)
	}

	paid := purchase.PaidAmount.Add(in.Amount)
	status := entity.PaymentStatusPartial
	if paid.GreaterThanOrEqual(purchase.GrandTotal) {
		status = entity.PaymentStatusPaid
	}
	entry := entity.PaymentEntry{
		Amount:    in.Amount,
		Method:    in.Method,
		Reference: in.Reference,
		PaidAt:    time.Now(),
		PaidBy:    userID,
	}
	if err := uc.purchaseRepo.RecordPayment(purchaseID, entry, paid, status); err != nil {
		return err
	}

	meta, _ := json.Marshal(map[string]any{"amount": in.Amount, "balance": purchase.GrandTotal.Sub(paid)})
	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifPaymentMade,
		Title:       "Pago registrado",
		Message:     fmt.Sprintf("Abono de %s a la orden %s", in.Amount.StringFixed(2), purchase.Number),
		RelatedID:   purchase.ID,
		RelatedType: "purchase",
		Metadata:    meta,
	})
	return nil
}

// DeletePurchase reversa y elimina una orden. Si ya fue recibida, descuenta
// del stock lo que había entrado; la reversa nunca deja stock negativo.
func (uc *UseCase) DeletePurchase(ctx context.Context, companyID, purchaseID string) error {
	purchase, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return err
	}
	if purchase.CompanyID != companyID {
		return domain.ErrForbidden
	}

	err = uc.tx.RunPurchase(ctx, func(
		itemRepo repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		if purchase.Status == entity.PurchaseStatusReceived {
			for _, it := range purchase.Items {
				if err := itemRepo.DecrementStock(it.ItemID, it.Quantity); err != nil {
					return err
				}
			}
		}
		return purchaseRepo.Delete(purchaseID)
	})
	if err != nil {
		return err
	}
	uc.invalidateQuiet(ctx)
	return nil
}

// dispatchReceived publica el evento de recepción. Un suscriptor que falle se
// registra con error pero no revierte la recepción (el stock ya entró); la
// reorden vinculada queda localizable por purchaseID para reintento.
func (uc *UseCase) dispatchReceived(ctx context.Context, purchase *entity.Purchase) {
	for _, s := range uc.subscribers {
		if err := s.OnPurchaseReceived(ctx, purchase); err != nil {
			log.Error().Err(err).Str("purchase_id", purchase.ID).
				Msg("suscriptor de recepción de compra falló")
		}
	}
}

func (uc *UseCase) notifyQuiet(ctx context.Context, companyID string, in notification.Input) {
	if _, err := uc.notifier.Create(ctx, companyID, in); err != nil {
		log.Warn().Err(err).Str("kind", in.Kind).Msg("notificación de compras falló")
	}
}

func (uc *UseCase) invalidateQuiet(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("invalidación de cache de reporte falló")
	}
}
