// Package reorder implementa el ciclo de vida de las solicitudes de
// reposición: creación manual, rápida y masiva, aprobación, generación de
// orden de compra, cancelación y recepción.
package reorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	domreorder "github.com/jhoicas/Comercial-api/internal/domain/reorder"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// UseCase gestor del ciclo de vida de reposición.
type UseCase struct {
	tx           TxRunner
	itemRepo     repository.StockItemRepository
	reorderRepo  repository.ReorderRepository
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	analytics    *analytics.UseCase
	notifier     *notification.UseCase
	cache        ReportCache
}

// NewUseCase construye el gestor de reposición.
func NewUseCase(
	tx TxRunner,
	itemRepo repository.StockItemRepository,
	reorderRepo repository.ReorderRepository,
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	analyticsUC *analytics.UseCase,
	notifier *notification.UseCase,
	cache ReportCache,
) *UseCase {
	return &UseCase{
		tx:           tx,
		itemRepo:     itemRepo,
		reorderRepo:  reorderRepo,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		analytics:    analyticsUC,
		notifier:     notifier,
		cache:        cache,
	}
}

// Create crea una solicitud manual en estado pending, registra el nivel de
// stock y el umbral al momento del disparo y marca el ítem como "needed".
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateReorderRequest) (*entity.Reorder, error) {
	if in.ItemID == "" {
		return nil, fmt.Errorf("item_id requerido: %w", domain.ErrInvalidInput)
	}
	item, err := uc.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	supplierID := in.SupplierID
	if supplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(supplierID)
		if err != nil {
			return nil, err
		}
		if supplier.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	} else {
		supplierID = item.SupplierID
	}

	a, err := uc.analytics.CalculateForItem(ctx, companyID, item.ID)
	if err != nil {
		return nil, err
	}
	qty := in.Quantity
	if qty <= 0 {
		qty = a.SuggestedQuantity
	}

	trigger := entity.ReorderTriggerManual
	if item.IsOutOfStock() {
		trigger = entity.ReorderTriggerOutOfStock
	}

	var r *entity.Reorder
	err = uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		_ repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		number, err := uc.nextNumber(seqRepo, companyID)
		if err != nil {
			return err
		}
		now := time.Now()
		r = &entity.Reorder{
			ID:           uuid.NewString(),
			CompanyID:    companyID,
			Number:       number,
			ItemID:       item.ID,
			SupplierID:   supplierID,
			Trigger:      trigger,
			TriggeredBy:  userID,
			StockLevel:   item.Quantity,
			ReorderLevel: item.ReorderLevel,
			SuggestedQty: qty,
			Status:       entity.ReorderPending,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := reorderRepo.Create(r); err != nil {
			return err
		}
		return itemRepo.SetReorderState(item.ID, entity.ReorderStatusNeeded, r.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifReorderCreated,
		Title:       "Solicitud de reposición creada",
		Message:     fmt.Sprintf("Solicitud %s para %s (%d unidades)", r.Number, item.Name, qty),
		RelatedID:   r.ID,
		RelatedType: "reorder",
	})
	return r, nil
}

// CreateQuick reposición rápida: "ya tengo la mercancía en mano". Fusiona en
// una sola transacción la solicitud, la entrada de stock (sin aprobación) y
// una orden de compra sintetizada ya recibida; al confirmar marca leídas las
// alertas de stock del ítem y emite la alerta de compra por bajo stock.
func (uc *UseCase) CreateQuick(ctx context.Context, companyID, userID string, in dto.QuickReorderRequest) (*entity.Reorder, error) {
	if in.ItemID == "" || in.Quantity <= 0 {
		return nil, fmt.Errorf("item_id y cantidad > 0 requeridos: %w", domain.ErrInvalidInput)
	}
	item, err := uc.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	supplierID := in.SupplierID
	if supplierID == "" {
		supplierID = item.SupplierID
	}
	var supplierName, supplierContact string
	if supplierID != "" {
		if supplier, err := uc.supplierRepo.GetByID(supplierID); err == nil && supplier.CompanyID == companyID {
			supplierName, supplierContact = supplier.Name, supplier.ContactName
		}
	}

	unitCost := item.Cost
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	lineTotal := unitCost.Mul(decimal.NewFromInt(int64(in.Quantity)))

	trigger := entity.ReorderTriggerAuto
	if item.IsOutOfStock() {
		trigger = entity.ReorderTriggerOutOfStock
	}

	var r *entity.Reorder
	err = uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		now := time.Now()

		roNumber, err := uc.nextNumber(seqRepo, companyID)
		if err != nil {
			return err
		}
		pcSeq, err := seqRepo.Next(companyID, repository.SeqPurchase)
		if err != nil {
			return err
		}

		purchase := &entity.Purchase{
			ID:              uuid.NewString(),
			CompanyID:       companyID,
			Number:          fmt.Sprintf("PC-%06d", pcSeq),
			SupplierID:      supplierID,
			SupplierName:    supplierName,
			SupplierContact: supplierContact,
			Items: []entity.PurchaseItem{{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Quantity:  in.Quantity,
				UnitCost:  unitCost,
				LineTotal: lineTotal,
			}},
			Subtotal:      lineTotal,
			TaxTotal:      decimal.Zero,
			ShippingCost:  decimal.Zero,
			GrandTotal:    lineTotal,
			PaymentStatus: entity.PaymentStatusUnpaid,
			PaidAmount:    decimal.Zero,
			Status:        entity.PurchaseStatusReceived,
			CreatedBy:     userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}

		resolvedAt := now
		r = &entity.Reorder{
			ID:           uuid.NewString(),
			CompanyID:    companyID,
			Number:       roNumber,
			ItemID:       item.ID,
			SupplierID:   supplierID,
			Trigger:      trigger,
			TriggeredBy:  userID,
			StockLevel:   item.Quantity,
			ReorderLevel: item.ReorderLevel,
			SuggestedQty: in.Quantity,
			Status:       entity.ReorderReceived,
			PurchaseID:   purchase.ID,
			OrderedQty:   in.Quantity,
			ReceivedQty:  in.Quantity,
			ResolvedAt:   &resolvedAt,
			ResolvedBy:   userID,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := reorderRepo.Create(r); err != nil {
			return err
		}

		// El stock entra de inmediato: este camino salta la aprobación.
		if err := itemRepo.IncrementStock(item.ID, in.Quantity); err != nil {
			return err
		}
		if err := itemRepo.SetReorderState(item.ID, entity.ReorderStatusNone, ""); err != nil {
			return err
		}
		return itemRepo.StampLastReorder(item.ID, now)
	})
	if err != nil {
		return nil, err
	}

	// Cierra las alertas de stock del ítem repuesto y anuncia la reposición.
	if err := uc.notifier.MarkRelatedRead(ctx, companyID, item.ID,
		[]string{entity.NotifLowStock, entity.NotifOutOfStock}); err != nil {
		log.Warn().Err(err).Str("item_id", item.ID).Msg("cierre de alertas de stock falló")
	}
	meta, _ := json.Marshal(map[string]any{"quantity": in.Quantity, "unit_cost": unitCost})
	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifLowStockPurchase,
		Title:       "Reposición rápida ejecutada",
		Message:     fmt.Sprintf("%s repuesto con %d unidades (solicitud %s)", item.Name, in.Quantity, r.Number),
		RelatedID:   item.ID,
		RelatedType: "stock_item",
		Metadata:    meta,
	})
	uc.invalidateQuiet(ctx)
	return r, nil
}

// CreateBulk reposición masiva: agrupa las líneas por proveedor resuelto
// (explícito o preferido del ítem), genera una orden de compra por proveedor y
// una solicitud ya "ordered" por ítem, vinculada a la orden de su grupo.
func (uc *UseCase) CreateBulk(ctx context.Context, companyID, userID string, in dto.BulkReorderRequest) (dto.BulkReorderResultDTO, error) {
	var result dto.BulkReorderResultDTO
	if len(in.Lines) == 0 {
		return result, fmt.Errorf("reposición masiva sin líneas: %w", domain.ErrInvalidInput)
	}

	type bulkLine struct {
		item *entity.StockItem
		qty  int
	}
	groups := make(map[string][]bulkLine)
	suppliers := make(map[string]*entity.Supplier)

	for _, l := range in.Lines {
		if l.ItemID == "" || l.Quantity <= 0 {
			return result, fmt.Errorf("línea con ítem vacío o cantidad <= 0: %w", domain.ErrInvalidInput)
		}
		item, err := uc.itemRepo.GetByID(l.ItemID)
		if err != nil {
			return result, err
		}
		if item.CompanyID != companyID {
			return result, domain.ErrForbidden
		}
		supplierID := l.SupplierID
		if supplierID == "" {
			supplierID = item.SupplierID
		}
		if supplierID == "" {
			return result, fmt.Errorf("ítem %s sin proveedor resoluble: %w", item.Name, domain.ErrInvalidInput)
		}
		if _, ok := suppliers[supplierID]; !ok {
			supplier, err := uc.supplierRepo.GetByID(supplierID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return result, fmt.Errorf("proveedor %s no existe: %w", supplierID, domain.ErrInvalidInput)
				}
				return result, err
			}
			if supplier.CompanyID != companyID {
				return result, domain.ErrForbidden
			}
			suppliers[supplierID] = supplier
		}
		groups[supplierID] = append(groups[supplierID], bulkLine{item: item, qty: l.Quantity})
	}

	err := uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		now := time.Now()
		for supplierID, lines := range groups {
			supplier := suppliers[supplierID]

			pcSeq, err := seqRepo.Next(companyID, repository.SeqPurchase)
			if err != nil {
				return err
			}
			subtotal := decimal.Zero
			purchaseItems := make([]entity.PurchaseItem, 0, len(lines))
			for _, bl := range lines {
				cost := uc.resolveUnitCost(bl.item)
				lineTotal := cost.Mul(decimal.NewFromInt(int64(bl.qty)))
				subtotal = subtotal.Add(lineTotal)
				purchaseItems = append(purchaseItems, entity.PurchaseItem{
					ItemID:    bl.item.ID,
					ItemName:  bl.item.Name,
					Quantity:  bl.qty,
					UnitCost:  cost,
					LineTotal: lineTotal,
				})
			}
			purchase := &entity.Purchase{
				ID:              uuid.NewString(),
				CompanyID:       companyID,
				Number:          fmt.Sprintf("PC-%06d", pcSeq),
				SupplierID:      supplier.ID,
				SupplierName:    supplier.Name,
				SupplierContact: supplier.ContactName,
				Items:           purchaseItems,
				Subtotal:        subtotal,
				TaxTotal:        decimal.Zero,
				ShippingCost:    decimal.Zero,
				GrandTotal:      subtotal,
				PaymentStatus:   entity.PaymentStatusUnpaid,
				PaidAmount:      decimal.Zero,
				Status:          entity.PurchaseStatusPending,
				CreatedBy:       userID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := purchaseRepo.Create(purchase); err != nil {
				return err
			}
			result.PurchaseIDs = append(result.PurchaseIDs, purchase.ID)

			for _, bl := range lines {
				number, err := uc.nextNumber(seqRepo, companyID)
				if err != nil {
					return err
				}
				r := &entity.Reorder{
					ID:           uuid.NewString(),
					CompanyID:    companyID,
					Number:       number,
					ItemID:       bl.item.ID,
					SupplierID:   supplier.ID,
					Trigger:      entity.ReorderTriggerManual,
					TriggeredBy:  userID,
					StockLevel:   bl.item.Quantity,
					ReorderLevel: bl.item.ReorderLevel,
					SuggestedQty: bl.qty,
					Status:       entity.ReorderOrdered,
					PurchaseID:   purchase.ID,
					OrderedQty:   bl.qty,
					Notes:        in.Notes,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := reorderRepo.Create(r); err != nil {
					return err
				}
				result.ReorderIDs = append(result.ReorderIDs, r.ID)
				if err := itemRepo.SetReorderState(bl.item.ID, entity.ReorderStatusOrdered, r.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return dto.BulkReorderResultDTO{}, err
	}
	return result, nil
}

// Approve aprueba una solicitud pendiente. Solo es legal desde pending.
func (uc *UseCase) Approve(ctx context.Context, companyID, userID, reorderID string) (*entity.Reorder, error) {
	r, err := uc.getOwned(companyID, reorderID)
	if err != nil {
		return nil, err
	}
	if r.Status != entity.ReorderPending {
		return nil, fmt.Errorf("solo se aprueba una solicitud pendiente: %w", domain.ErrConflict)
	}
	if err := domreorder.Transition(r.Status, entity.ReorderApproved); err != nil {
		return nil, err
	}

	r.Status = entity.ReorderApproved
	r.ResolvedBy = userID
	r.UpdatedAt = time.Now()
	if err := uc.reorderRepo.Update(r); err != nil {
		return nil, err
	}
	if err := uc.itemRepo.SetReorderState(r.ItemID, entity.ReorderStatusPending, r.ID); err != nil {
		return nil, err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifReorderApproved,
		Title:       "Solicitud de reposición aprobada",
		Message:     fmt.Sprintf("Solicitud %s aprobada", r.Number),
		RelatedID:   r.ID,
		RelatedType: "reorder",
	})
	return r, nil
}

// CreatePurchaseFromReorder materializa una orden de compra pending desde la
// solicitud y la deja en estado ordered. Requiere proveedor resoluble; el
// costo unitario usa el último precio de compra del ítem o su costo.
func (uc *UseCase) CreatePurchaseFromReorder(ctx context.Context, companyID, userID, reorderID string) (*entity.Purchase, error) {
	r, err := uc.getOwned(companyID, reorderID)
	if err != nil {
		return nil, err
	}
	if err := domreorder.Transition(r.Status, entity.ReorderOrdered); err != nil {
		return nil, err
	}
	if r.SupplierID == "" {
		return nil, fmt.Errorf("la solicitud no tiene proveedor: %w", domain.ErrInvalidInput)
	}
	supplier, err := uc.supplierRepo.GetByID(r.SupplierID)
	if err != nil {
		return nil, err
	}
	item, err := uc.itemRepo.GetByID(r.ItemID)
	if err != nil {
		return nil, err
	}

	qty := r.SuggestedQty
	cost := uc.resolveUnitCost(item)
	lineTotal := cost.Mul(decimal.NewFromInt(int64(qty)))

	var purchase *entity.Purchase
	err = uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		purchaseRepo repository.PurchaseRepository,
		seqRepo repository.SequenceRepository,
	) error {
		pcSeq, err := seqRepo.Next(companyID, repository.SeqPurchase)
		if err != nil {
			return err
		}
		now := time.Now()
		purchase = &entity.Purchase{
			ID:              uuid.NewString(),
			CompanyID:       companyID,
			Number:          fmt.Sprintf("PC-%06d", pcSeq),
			SupplierID:      supplier.ID,
			SupplierName:    supplier.Name,
			SupplierContact: supplier.ContactName,
			Items: []entity.PurchaseItem{{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Quantity:  qty,
				UnitCost:  cost,
				LineTotal: lineTotal,
			}},
			Subtotal:      lineTotal,
			TaxTotal:      decimal.Zero,
			ShippingCost:  decimal.Zero,
			GrandTotal:    lineTotal,
			PaymentStatus: entity.PaymentStatusUnpaid,
			PaidAmount:    decimal.Zero,
			Status:        entity.PurchaseStatusPending,
			CreatedBy:     userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}

		r.Status = entity.ReorderOrdered
		r.PurchaseID = purchase.ID
		r.OrderedQty = qty
		r.UpdatedAt = now
		if err := reorderRepo.Update(r); err != nil {
			return err
		}
		return itemRepo.SetReorderState(item.ID, entity.ReorderStatusOrdered, r.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifPurchase,
		Title:       "Orden de compra generada",
		Message:     fmt.Sprintf("Orden %s generada desde la solicitud %s", purchase.Number, r.Number),
		RelatedID:   purchase.ID,
		RelatedType: "purchase",
	})
	return purchase, nil
}

// Cancel cancela la solicitud. Legal desde cualquier estado no terminal;
// restablece la vinculación del ítem a "none".
func (uc *UseCase) Cancel(ctx context.Context, companyID, userID, reorderID string) error {
	r, err := uc.getOwned(companyID, reorderID)
	if err != nil {
		return err
	}
	if err := domreorder.Transition(r.Status, entity.ReorderCancelled); err != nil {
		return err
	}

	now := time.Now()
	r.Status = entity.ReorderCancelled
	r.ResolvedAt = &now
	r.ResolvedBy = userID
	r.UpdatedAt = now
	if err := uc.reorderRepo.Update(r); err != nil {
		return err
	}
	if err := uc.itemRepo.SetReorderState(r.ItemID, entity.ReorderStatusNone, ""); err != nil {
		return err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifReorderCancelled,
		Title:       "Solicitud de reposición cancelada",
		Message:     fmt.Sprintf("Solicitud %s cancelada", r.Number),
		RelatedID:   r.ID,
		RelatedType: "reorder",
	})
	return nil
}

// MarkReceived marca la solicitud como recibida: registra la cantidad recibida
// (por defecto la ordenada), entra el stock, limpia el estado pendiente del
// ítem y estampa la fecha de última reposición. Si quedó una orden de compra
// vinculada aún pendiente, la marca recibida para que los libros coincidan
// (el stock entra una sola vez, aquí).
func (uc *UseCase) MarkReceived(ctx context.Context, companyID, userID, reorderID string, in dto.MarkReceivedRequest) (*entity.Reorder, error) {
	r, err := uc.getOwned(companyID, reorderID)
	if err != nil {
		return nil, err
	}
	if err := domreorder.Transition(r.Status, entity.ReorderReceived); err != nil {
		return nil, err
	}

	qty := in.ReceivedQty
	if qty <= 0 {
		qty = r.OrderedQty
	}
	if qty <= 0 {
		qty = r.SuggestedQty
	}

	err = uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		now := time.Now()
		r.Status = entity.ReorderReceived
		r.ReceivedQty = qty
		r.ResolvedAt = &now
		r.ResolvedBy = userID
		if in.Notes != "" {
			r.Notes = in.Notes
		}
		r.UpdatedAt = now
		if err := reorderRepo.Update(r); err != nil {
			return err
		}
		if err := itemRepo.IncrementStock(r.ItemID, qty); err != nil {
			return err
		}
		if err := itemRepo.SetReorderState(r.ItemID, entity.ReorderStatusNone, ""); err != nil {
			return err
		}
		if err := itemRepo.StampLastReorder(r.ItemID, now); err != nil {
			return err
		}
		if r.PurchaseID != "" {
			if p, err := purchaseRepo.GetByID(r.PurchaseID); err == nil && p.Status == entity.PurchaseStatusPending {
				if err := purchaseRepo.UpdateStatus(p.ID, entity.PurchaseStatusReceived); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyQuiet(ctx, companyID, notification.Input{
		Kind:        entity.NotifReorderReceived,
		Title:       "Reposición recibida",
		Message:     fmt.Sprintf("Solicitud %s recibida (%d unidades)", r.Number, qty),
		RelatedID:   r.ID,
		RelatedType: "reorder",
	})
	uc.invalidateQuiet(ctx)
	return r, nil
}

// OnPurchaseReceived disparador cruzado: cuando una orden de compra pasa a
// received por el colaborador de compras, la solicitud vinculada en estado
// ordered se auto-resuelve. El stock ya lo incrementó la recepción de la
// compra, así que aquí NO se vuelve a sumar (sin doble conteo).
func (uc *UseCase) OnPurchaseReceived(ctx context.Context, purchase *entity.Purchase) error {
	r, err := uc.reorderRepo.GetByPurchaseAndStatus(purchase.ID, entity.ReorderOrdered)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := domreorder.Transition(r.Status, entity.ReorderReceived); err != nil {
		return err
	}

	now := time.Now()
	qty := r.OrderedQty
	if qty <= 0 {
		qty = purchase.TotalQuantity()
	}
	err = uc.tx.RunReorder(ctx, func(
		itemRepo repository.StockItemRepository,
		reorderRepo repository.ReorderRepository,
		_ repository.PurchaseRepository,
		_ repository.SequenceRepository,
	) error {
		r.Status = entity.ReorderReceived
		r.ReceivedQty = qty
		r.ResolvedAt = &now
		r.ResolvedBy = "system"
		r.UpdatedAt = now
		if err := reorderRepo.Update(r); err != nil {
			return err
		}
		if err := itemRepo.SetReorderState(r.ItemID, entity.ReorderStatusNone, ""); err != nil {
			return err
		}
		return itemRepo.StampLastReorder(r.ItemID, now)
	})
	if err != nil {
		return err
	}

	uc.notifyQuiet(ctx, r.CompanyID, notification.Input{
		Kind:        entity.NotifReorderReceived,
		Title:       "Reposición recibida",
		Message:     fmt.Sprintf("Solicitud %s resuelta por la recepción de la orden %s", r.Number, purchase.Number),
		RelatedID:   r.ID,
		RelatedType: "reorder",
	})
	return nil
}

// Get devuelve una solicitud de la empresa.
func (uc *UseCase) Get(ctx context.Context, companyID, reorderID string) (*entity.Reorder, error) {
	return uc.getOwned(companyID, reorderID)
}

// List lista las solicitudes de la empresa, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Reorder, error) {
	return uc.reorderRepo.ListByCompany(companyID, status, limit, offset)
}

// nextNumber consecutivo RO-NNNNNN desde el contador atómico.
func (uc *UseCase) nextNumber(seqRepo repository.SequenceRepository, companyID string) (string, error) {
	seq, err := seqRepo.Next(companyID, repository.SeqReorder)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RO-%06d", seq), nil
}

// resolveUnitCost último costo de compra del ítem, o su costo de catálogo.
func (uc *UseCase) resolveUnitCost(item *entity.StockItem) decimal.Decimal {
	if cost, found, err := uc.purchaseRepo.LastUnitCost(item.ID); err == nil && found {
		return cost
	}
	return item.Cost
}

func (uc *UseCase) getOwned(companyID, reorderID string) (*entity.Reorder, error) {
	r, err := uc.reorderRepo.GetByID(reorderID)
	if err != nil {
		return nil, err
	}
	if r.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

func (uc *UseCase) notifyQuiet(ctx context.Context, companyID string, in notification.Input) {
	if _, err := uc.notifier.Create(ctx, companyID, in); err != nil {
		log.Warn().Err(err).Str("kind", in.Kind).Msg("notificación de reposición falló")
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
