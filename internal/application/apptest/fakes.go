// Package apptest provee implementaciones en memoria de los puertos de
// persistencia para probar los casos de uso sin base de datos. Cada fake
// respeta el contrato del puerto real (incluido el piso atómico del stock y
// los centinelas de error del dominio).
package apptest

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo libro de stock en memoria.
type StockItemRepo struct {
	Items map[string]*entity.StockItem
}

// NewStockItemRepo construye el repositorio vacío.
func NewStockItemRepo() *StockItemRepo {
	return &StockItemRepo{Items: make(map[string]*entity.StockItem)}
}

// Seed registra un ítem tal cual, sin validación.
func (r *StockItemRepo) Seed(item *entity.StockItem) {
	cp := *item
	r.Items[item.ID] = &cp
}

func (r *StockItemRepo) Create(item *entity.StockItem) error {
	for _, it := range r.Items {
		if it.CompanyID == item.CompanyID && it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	r.Items[item.ID] = &cp
	return nil
}

func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	item, ok := r.Items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *StockItemRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.StockItem, error) {
	for _, it := range r.Items {
		if it.CompanyID == companyID && it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *StockItemRepo) Update(item *entity.StockItem) error {
	stored, ok := r.Items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	qty := stored.Quantity
	cp := *item
	cp.Quantity = qty // Update nunca toca la cantidad; eso es de las primitivas.
	r.Items[item.ID] = &cp
	return nil
}

func (r *StockItemRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	for _, it := range r.Items {
		if it.CompanyID == companyID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

func (r *StockItemRepo) ListBelowReorderLevel(companyID string, f repository.LowStockFilter) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	for _, it := range r.Items {
		if it.CompanyID != companyID || !it.IsLowStock() {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.SupplierID != "" && it.SupplierID != f.SupplierID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (r *StockItemRepo) CountLowStock(companyID string) (int, error) {
	n := 0
	for _, it := range r.Items {
		if it.CompanyID == companyID && it.IsLowStock() && !it.IsOutOfStock() {
			n++
		}
	}
	return n, nil
}

func (r *StockItemRepo) CountOutOfStock(companyID string) (int, error) {
	n := 0
	for _, it := range r.Items {
		if it.CompanyID == companyID && it.IsOutOfStock() {
			n++
		}
	}
	return n, nil
}

func (r *StockItemRepo) DecrementStock(itemID string, qty int) error {
	item, ok := r.Items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	if item.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	item.Quantity -= qty
	return nil
}

func (r *StockItemRepo) IncrementStock(itemID string, qty int) error {
	item, ok := r.Items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.Quantity += qty
	return nil
}

func (r *StockItemRepo) SetReorderState(itemID, status, pendingReorderID string) error {
	item, ok := r.Items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.ReorderStatus = status
	item.PendingReorder = pendingReorderID
	return nil
}

func (r *StockItemRepo) StampLastReorder(itemID string, at time.Time) error {
	item, ok := r.Items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	item.LastReorderDate = &at
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria. Sold controla la respuesta de TotalSoldSince
// por ítem; SoldErr fuerza la falla de esa consulta agregada.
type SaleRepo struct {
	Sales   map[string]*entity.Sale
	Sold    map[string]int
	SoldErr error
}

func NewSaleRepo() *SaleRepo {
	return &SaleRepo{Sales: make(map[string]*entity.Sale), Sold: make(map[string]int)}
}

func (r *SaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.Sales[sale.ID] = &cp
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.Sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sale
	return &cp, nil
}

func (r *SaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.Sales {
		if s.CompanyID == companyID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, limit, offset), nil
}

func (r *SaleRepo) Delete(id string) error {
	if _, ok := r.Sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Sales, id)
	return nil
}

func (r *SaleRepo) TotalSoldSince(itemID string, since time.Time) (int, error) {
	if r.SoldErr != nil {
		return 0, r.SoldErr
	}
	return r.Sold[itemID], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo órdenes de compra en memoria, con orden de inserción para
// resolver el último costo de compra de un ítem.
type PurchaseRepo struct {
	Purchases map[string]*entity.Purchase
	order     []string
}

func NewPurchaseRepo() *PurchaseRepo {
	return &PurchaseRepo{Purchases: make(map[string]*entity.Purchase)}
}

func (r *PurchaseRepo) Create(purchase *entity.Purchase) error {
	cp := *purchase
	cp.Items = append([]entity.PurchaseItem(nil), purchase.Items...)
	r.Purchases[purchase.ID] = &cp
	r.order = append(r.order, purchase.ID)
	return nil
}

func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	p, ok := r.Purchases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PurchaseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for i := len(r.order) - 1; i >= 0; i-- {
		if p, ok := r.Purchases[r.order[i]]; ok && p.CompanyID == companyID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *PurchaseRepo) UpdateStatus(id, status string) error {
	p, ok := r.Purchases[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (r *PurchaseRepo) Delete(id string) error {
	if _, ok := r.Purchases[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Purchases, id)
	return nil
}

func (r *PurchaseRepo) RecordPayment(id string, payment entity.PaymentEntry, paidAmount decimal.Decimal, paymentStatus string) error {
	p, ok := r.Purchases[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Payments = append(p.Payments, payment)
	p.PaidAmount = paidAmount
	p.PaymentStatus = paymentStatus
	return nil
}

func (r *PurchaseRepo) LastUnitCost(itemID string) (decimal.Decimal, bool, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.Purchases[r.order[i]]
		if !ok || p.Status == entity.PurchaseStatusCancelled {
			continue
		}
		for _, it := range p.Items {
			if it.ItemID == itemID {
				return it.UnitCost, true, nil
			}
		}
	}
	return decimal.Zero, false, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reposición
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.ReorderRepository = (*ReorderRepo)(nil)

// ReorderRepo solicitudes de reposición en memoria.
type ReorderRepo struct {
	Reorders map[string]*entity.Reorder
	order    []string
}

func NewReorderRepo() *ReorderRepo {
	return &ReorderRepo{Reorders: make(map[string]*entity.Reorder)}
}

func (r *ReorderRepo) Create(ro *entity.Reorder) error {
	cp := *ro
	r.Reorders[ro.ID] = &cp
	r.order = append(r.order, ro.ID)
	return nil
}

func (r *ReorderRepo) GetByID(id string) (*entity.Reorder, error) {
	ro, ok := r.Reorders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ro
	return &cp, nil
}

func (r *ReorderRepo) Update(ro *entity.Reorder) error {
	if _, ok := r.Reorders[ro.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *ro
	r.Reorders[ro.ID] = &cp
	return nil
}

func (r *ReorderRepo) ListByCompany(companyID, status string, limit, offset int) ([]*entity.Reorder, error) {
	var out []*entity.Reorder
	for i := len(r.order) - 1; i >= 0; i-- {
		ro, ok := r.Reorders[r.order[i]]
		if !ok || ro.CompanyID != companyID {
			continue
		}
		if status != "" && ro.Status != status {
			continue
		}
		cp := *ro
		out = append(out, &cp)
	}
	return page(out, limit, offset), nil
}

func (r *ReorderRepo) CountByStatus(companyID, status string) (int, error) {
	n := 0
	for _, ro := range r.Reorders {
		if ro.CompanyID == companyID && ro.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *ReorderRepo) GetByPurchaseAndStatus(purchaseID, status string) (*entity.Reorder, error) {
	for _, ro := range r.Reorders {
		if ro.PurchaseID == purchaseID && ro.Status == status {
			cp := *ro
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ──────────────────────────────────────────────────────────────────────────────
// Proveedores y secuencias
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo lookup de proveedores en memoria.
type SupplierRepo struct {
	Suppliers map[string]*entity.Supplier
}

func NewSupplierRepo() *SupplierRepo {
	return &SupplierRepo{Suppliers: make(map[string]*entity.Supplier)}
}

func (r *SupplierRepo) Seed(s *entity.Supplier) {
	cp := *s
	r.Suppliers[s.ID] = &cp
}

func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.Suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SupplierRepo) ListActive(companyID string) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.Suppliers {
		if s.CompanyID == companyID && s.Active {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de consecutivos en memoria.
type SequenceRepo struct {
	Values map[string]int64
}

func NewSequenceRepo() *SequenceRepo {
	return &SequenceRepo{Values: make(map[string]int64)}
}

func (r *SequenceRepo) Next(companyID, name string) (int64, error) {
	key := companyID + "/" + name
	r.Values[key]++
	return r.Values[key], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones y cache
// ──────────────────────────────────────────────────────────────────────────────

// TxRunner pasa los fakes compartidos a la función transaccional. No simula
// rollback: los casos de uso validan antes de mutar, y las pruebas que
// necesitan atomicidad real viven en la capa de almacenamiento.
type TxRunner struct {
	Items     *StockItemRepo
	Sales     *SaleRepo
	Purchases *PurchaseRepo
	Reorders  *ReorderRepo
	Seq       *SequenceRepo
	Err       error // si no es nil, toda transacción falla sin ejecutar fn
}

func (t *TxRunner) RunSale(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	saleRepo repository.SaleRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	if t.Err != nil {
		return t.Err
	}
	return fn(t.Items, t.Sales, t.Seq)
}

func (t *TxRunner) RunPurchase(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	purchaseRepo repository.PurchaseRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	if t.Err != nil {
		return t.Err
	}
	return fn(t.Items, t.Purchases, t.Seq)
}

func (t *TxRunner) RunReorder(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	reorderRepo repository.ReorderRepository,
	purchaseRepo repository.PurchaseRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	if t.Err != nil {
		return t.Err
	}
	return fn(t.Items, t.Reorders, t.Purchases, t.Seq)
}

// ReportCache cache de reporte en memoria con contadores para verificar usos.
type ReportCache struct {
	Data          map[string][]byte
	Gets          int
	Sets          int
	Invalidations int
}

func NewReportCache() *ReportCache {
	return &ReportCache{Data: make(map[string][]byte)}
}

func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.Gets++
	payload, ok := c.Data[key]
	return payload, ok, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, payload []byte) error {
	c.Sets++
	c.Data[key] = payload
	return nil
}

func (c *ReportCache) InvalidateAll(ctx context.Context) error {
	c.Invalidations++
	c.Data = make(map[string][]byte)
	return nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
