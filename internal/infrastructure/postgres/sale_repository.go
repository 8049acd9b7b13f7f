package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta y sus líneas. Debe llamarse dentro de una tx para
// que venta y decrementos de stock queden como una sola unidad.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (id, company_id, number, customer_name, subtotal, tax_total, grand_total, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CompanyID, sale.Number, sale.CustomerName,
		sale.Subtotal, sale.TaxTotal, sale.GrandTotal, sale.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	lineQuery := `
		INSERT INTO sale_items (sale_id, item_id, item_name, quantity, unit_price, line_total)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, line := range sale.Items {
		if _, err := r.q.Exec(ctx, lineQuery,
			sale.ID, line.ItemID, line.ItemName, line.Quantity, line.UnitPrice, line.LineTotal,
		); err != nil {
			return fmt.Errorf("create sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, company_id, number, customer_name, subtotal, tax_total, grand_total, created_by, created_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.Number, &s.CustomerName,
		&s.Subtotal, &s.TaxTotal, &s.GrandTotal, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// ListByCompany lista las ventas de una empresa, más recientes primero.
func (r *SaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, company_id, number, customer_name, subtotal, tax_total, grand_total, created_by, created_at
		FROM sales WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Number, &s.CustomerName,
			&s.Subtotal, &s.TaxTotal, &s.GrandTotal, &s.CreatedBy, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	for _, s := range sales {
		items, err := r.loadItems(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	return sales, nil
}

// Delete elimina la venta y sus líneas (las líneas caen por FK ON DELETE CASCADE).
func (r *SaleRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TotalSoldSince suma las unidades vendidas del ítem desde la fecha dada.
// Alimenta el promedio diario de la analítica de reposición.
func (r *SaleRepo) TotalSoldSince(itemID string, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(si.quantity), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE si.item_id = $1 AND s.created_at >= $2`
	var total int
	if err := r.q.QueryRow(context.Background(), query, itemID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("total sold since: %w", err)
	}
	return total, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT item_id, item_name, quantity, unit_price, line_total
		FROM sale_items WHERE sale_id = $1`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ItemID, &it.ItemName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}
	return items, nil
}
