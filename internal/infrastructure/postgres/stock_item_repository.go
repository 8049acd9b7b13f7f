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

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

const stockItemColumns = `
	id, company_id, sku, name, category, price, cost, quantity,
	reorder_level, reorder_quantity, max_stock, lead_time_days, supplier_id,
	reorder_status, pending_reorder_id, last_reorder_date, created_at, updated_at`

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.CompanyID, &it.SKU, &it.Name, &it.Category, &it.Price, &it.Cost,
		&it.Quantity, &it.ReorderLevel, &it.ReorderQuantity, &it.MaxStock,
		&it.LeadTimeDays, &it.SupplierID, &it.ReorderStatus, &it.PendingReorder,
		&it.LastReorderDate, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta un ítem de stock.
func (r *StockItemRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (
			id, company_id, sku, name, category, price, cost, quantity,
			reorder_level, reorder_quantity, max_stock, lead_time_days, supplier_id,
			reorder_status, pending_reorder_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.CompanyID, item.SKU, item.Name, item.Category,
		item.Price, item.Cost, item.Quantity, item.ReorderLevel,
		item.ReorderQuantity, item.MaxStock, item.LeadTimeDays, item.SupplierID,
		item.ReorderStatus, item.PendingReorder,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por id.
func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	query := `SELECT` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	it, err := scanStockItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return it, nil
}

// GetByCompanyAndSKU obtiene un ítem por empresa y SKU (unicidad por empresa).
func (r *StockItemRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.StockItem, error) {
	query := `SELECT` + stockItemColumns + ` FROM stock_items WHERE company_id = $1 AND sku = $2`
	it, err := scanStockItem(r.q.QueryRow(context.Background(), query, companyID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock item by sku: %w", err)
	}
	return it, nil
}

// Update actualiza los campos editables del ítem (no toca quantity: eso lo
// hacen las primitivas atómicas).
func (r *StockItemRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET
			name = $2, category = $3, price = $4, cost = $5,
			reorder_level = $6, reorder_quantity = $7, max_stock = $8,
			lead_time_days = $9, supplier_id = $10, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Category, item.Price, item.Cost,
		item.ReorderLevel, item.ReorderQuantity, item.MaxStock,
		item.LeadTimeDays, item.SupplierID,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista los ítems de una empresa con paginación.
func (r *StockItemRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.StockItem, error) {
	query := `SELECT` + stockItemColumns + `
		FROM stock_items WHERE company_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	return collectStockItems(rows)
}

// ListBelowReorderLevel devuelve todos los ítems en o por debajo de su umbral
// de reorden. Sin paginación: el reporte ordena por prioridad global en el
// caso de uso y pagina después.
func (r *StockItemRepo) ListBelowReorderLevel(companyID string, f repository.LowStockFilter) ([]*entity.StockItem, error) {
	query := `SELECT` + stockItemColumns + `
		FROM stock_items
		WHERE company_id = $1 AND quantity <= reorder_level
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR supplier_id = $3)
		ORDER BY quantity ASC`
	rows, err := r.q.Query(context.Background(), query, companyID, f.Category, f.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("list below reorder level: %w", err)
	}
	defer rows.Close()
	return collectStockItems(rows)
}

// CountLowStock cuenta los ítems en o por debajo del umbral de reorden.
func (r *StockItemRepo) CountLowStock(companyID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM stock_items WHERE company_id = $1 AND quantity <= reorder_level`
	if err := r.q.QueryRow(context.Background(), query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return count, nil
}

// CountOutOfStock cuenta los ítems agotados.
func (r *StockItemRepo) CountOutOfStock(companyID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM stock_items WHERE company_id = $1 AND quantity <= 0`
	if err := r.q.QueryRow(context.Background(), query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count out of stock: %w", err)
	}
	return count, nil
}

// DecrementStock resta qty de forma atómica con piso en cero: el UPDATE solo
// aplica si quantity >= qty, así dos ventas concurrentes no pueden sobrevender.
func (r *StockItemRepo) DecrementStock(itemID string, qty int) error {
	query := `
		UPDATE stock_items
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`
	tag, err := r.q.Exec(context.Background(), query, itemID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguir ítem inexistente de stock insuficiente.
		var exists bool
		check := `SELECT EXISTS(SELECT 1 FROM stock_items WHERE id = $1)`
		if err := r.q.QueryRow(context.Background(), check, itemID).Scan(&exists); err != nil {
			return fmt.Errorf("decrement stock check: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// IncrementStock suma qty (recepción de compra, reversa de venta, reposición).
func (r *StockItemRepo) IncrementStock(itemID string, qty int) error {
	query := `
		UPDATE stock_items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetReorderState actualiza estado de reposición y referencia a la solicitud
// abierta en una sola operación.
func (r *StockItemRepo) SetReorderState(itemID, status, pendingReorderID string) error {
	query := `
		UPDATE stock_items
		SET reorder_status = $2, pending_reorder_id = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, status, pendingReorderID)
	if err != nil {
		return fmt.Errorf("set reorder state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// StampLastReorder fija la fecha de la última reposición recibida.
func (r *StockItemRepo) StampLastReorder(itemID string, at time.Time) error {
	query := `UPDATE stock_items SET last_reorder_date = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, at)
	if err != nil {
		return fmt.Errorf("stamp last reorder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectStockItems(rows pgx.Rows) ([]*entity.StockItem, error) {
	var items []*entity.StockItem
	for rows.Next() {
		it, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock items: %w", err)
	}
	return items, nil
}
