package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `
	id, company_id, number, supplier_id, supplier_name, supplier_contact,
	subtotal, tax_total, shipping_cost, grand_total,
	payment_status, paid_amount, status, created_by, created_at, updated_at`

// Create inserta la orden de compra y sus líneas.
func (r *PurchaseRepo) Create(purchase *entity.Purchase) error {
	ctx := context.Background()
	query := `
		INSERT INTO purchases (
			id, company_id, number, supplier_id, supplier_name, supplier_contact,
			subtotal, tax_total, shipping_cost, grand_total,
			payment_status, paid_amount, status, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())`
	_, err := r.q.Exec(ctx, query,
		purchase.ID, purchase.CompanyID, purchase.Number,
		purchase.SupplierID, purchase.SupplierName, purchase.SupplierContact,
		purchase.Subtotal, purchase.TaxTotal, purchase.ShippingCost, purchase.GrandTotal,
		purchase.PaymentStatus, purchase.PaidAmount, purchase.Status, purchase.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	lineQuery := `
		INSERT INTO purchase_items (purchase_id, item_id, item_name, quantity, unit_cost, line_total)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, line := range purchase.Items {
		if _, err := r.q.Exec(ctx, lineQuery,
			purchase.ID, line.ItemID, line.ItemName, line.Quantity, line.UnitCost, line.LineTotal,
		); err != nil {
			return fmt.Errorf("create purchase item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden de compra con líneas y abonos.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	ctx := context.Background()
	query := `SELECT` + purchaseColumns + ` FROM purchases WHERE id = $1`
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if err := r.loadDetails(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByCompany lista las órdenes de compra de una empresa, más recientes primero.
func (r *PurchaseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error) {
	ctx := context.Background()
	query := `SELECT` + purchaseColumns + `
		FROM purchases WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	for _, p := range purchases {
		if err := r.loadDetails(ctx, p); err != nil {
			return nil, err
		}
	}
	return purchases, nil
}

// UpdateStatus cambia el estado de la orden (pending | received | cancelled).
func (r *PurchaseRepo) UpdateStatus(id, status string) error {
	query := `UPDATE purchases SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la orden con sus líneas y abonos (FK ON DELETE CASCADE).
func (r *PurchaseRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordPayment persiste un abono y el nuevo estado de pago acumulado.
func (r *PurchaseRepo) RecordPayment(id string, payment entity.PaymentEntry, paidAmount decimal.Decimal, paymentStatus string) error {
	ctx := context.Background()
	insert := `
		INSERT INTO purchase_payments (purchase_id, amount, method, reference, paid_at, paid_by)
		VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.q.Exec(ctx, insert,
		id, payment.Amount, payment.Method, payment.Reference, payment.PaidAt, payment.PaidBy,
	); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	update := `UPDATE purchases SET paid_amount = $2, payment_status = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, update, id, paidAmount, paymentStatus)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LastUnitCost último costo unitario comprado del ítem (compra más reciente).
// found=false si el ítem nunca se ha comprado.
func (r *PurchaseRepo) LastUnitCost(itemID string) (decimal.Decimal, bool, error) {
	query := `
		SELECT pi.unit_cost
		FROM purchase_items pi
		JOIN purchases p ON p.id = pi.purchase_id
		WHERE pi.item_id = $1 AND p.status <> 'cancelled'
		ORDER BY p.created_at DESC
		LIMIT 1`
	var cost decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, itemID).Scan(&cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("last unit cost: %w", err)
	}
	return cost, true, nil
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Number, &p.SupplierID, &p.SupplierName, &p.SupplierContact,
		&p.Subtotal, &p.TaxTotal, &p.ShippingCost, &p.GrandTotal,
		&p.PaymentStatus, &p.PaidAmount, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepo) loadDetails(ctx context.Context, p *entity.Purchase) error {
	lineQuery := `
		SELECT item_id, item_name, quantity, unit_cost, line_total
		FROM purchase_items WHERE purchase_id = $1`
	rows, err := r.q.Query(ctx, lineQuery, p.ID)
	if err != nil {
		return fmt.Errorf("load purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ItemID, &it.ItemName, &it.Quantity, &it.UnitCost, &it.LineTotal); err != nil {
			return fmt.Errorf("scan purchase item: %w", err)
		}
		p.Items = append(p.Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate purchase items: %w", err)
	}

	payQuery := `
		SELECT amount, method, reference, paid_at, paid_by
		FROM purchase_payments WHERE purchase_id = $1
		ORDER BY paid_at`
	payRows, err := r.q.Query(ctx, payQuery, p.ID)
	if err != nil {
		return fmt.Errorf("load purchase payments: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var pay entity.PaymentEntry
		if err := payRows.Scan(&pay.Amount, &pay.Method, &pay.Reference, &pay.PaidAt, &pay.PaidBy); err != nil {
			return fmt.Errorf("scan purchase payment: %w", err)
		}
		p.Payments = append(p.Payments, pay)
	}
	if err := payRows.Err(); err != nil {
		return fmt.Errorf("iterate purchase payments: %w", err)
	}
	return nil
}
