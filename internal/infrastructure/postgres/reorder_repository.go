package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

var _ repository.ReorderRepository = (*ReorderRepo)(nil)

// ReorderRepo implementación de ReorderRepository sobre PostgreSQL (usable con pool o tx).
type ReorderRepo struct {
	q Querier
}

// NewReorderRepository construye el adaptador de solicitudes de reposición.
func NewReorderRepository(q Querier) *ReorderRepo {
	return &ReorderRepo{q: q}
}

const reorderColumns = `
	id, company_id, number, item_id, supplier_id, trigger_kind, triggered_by,
	stock_level, reorder_level, suggested_qty, status, purchase_id,
	ordered_qty, received_qty, resolved_at, resolved_by, notes, created_at, updated_at`

func scanReorder(row pgx.Row) (*entity.Reorder, error) {
	var ro entity.Reorder
	err := row.Scan(
		&ro.ID, &ro.CompanyID, &ro.Number, &ro.ItemID, &ro.SupplierID,
		&ro.Trigger, &ro.TriggeredBy, &ro.StockLevel, &ro.ReorderLevel,
		&ro.SuggestedQty, &ro.Status, &ro.PurchaseID, &ro.OrderedQty,
		&ro.ReceivedQty, &ro.ResolvedAt, &ro.ResolvedBy, &ro.Notes,
		&ro.CreatedAt, &ro.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ro, nil
}

// Create inserta una solicitud de reposición.
func (r *ReorderRepo) Create(ro *entity.Reorder) error {
	query := `
		INSERT INTO reorders (
			id, company_id, number, item_id, supplier_id, trigger_kind, triggered_by,
			stock_level, reorder_level, suggested_qty, status, purchase_id,
			ordered_qty, received_qty, resolved_at, resolved_by, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())`
	_, err := r.q.Exec(context.Background(), query,
		ro.ID, ro.CompanyID, ro.Number, ro.ItemID, ro.SupplierID,
		ro.Trigger, ro.TriggeredBy, ro.StockLevel, ro.ReorderLevel,
		ro.SuggestedQty, ro.Status, ro.PurchaseID, ro.OrderedQty,
		ro.ReceivedQty, ro.ResolvedAt, ro.ResolvedBy, ro.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create reorder: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por id.
func (r *ReorderRepo) GetByID(id string) (*entity.Reorder, error) {
	query := `SELECT` + reorderColumns + ` FROM reorders WHERE id = $1`
	ro, err := scanReorder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reorder: %w", err)
	}
	return ro, nil
}

// Update persiste los campos mutables de la solicitud.
func (r *ReorderRepo) Update(ro *entity.Reorder) error {
	query := `
		UPDATE reorders SET
			supplier_id = $2, status = $3, purchase_id = $4, ordered_qty = $5,
			received_qty = $6, resolved_at = $7, resolved_by = $8, notes = $9,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		ro.ID, ro.SupplierID, ro.Status, ro.PurchaseID, ro.OrderedQty,
		ro.ReceivedQty, ro.ResolvedAt, ro.ResolvedBy, ro.Notes,
	)
	if err != nil {
		return fmt.Errorf("update reorder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista solicitudes, opcionalmente filtradas por estado.
func (r *ReorderRepo) ListByCompany(companyID string, status string, limit, offset int) ([]*entity.Reorder, error) {
	query := `SELECT` + reorderColumns + `
		FROM reorders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reorders: %w", err)
	}
	defer rows.Close()

	var reorders []*entity.Reorder
	for rows.Next() {
		ro, err := scanReorder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reorder: %w", err)
		}
		reorders = append(reorders, ro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reorders: %w", err)
	}
	return reorders, nil
}

// CountByStatus cuenta las solicitudes de una empresa en el estado dado.
func (r *ReorderRepo) CountByStatus(companyID, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reorders WHERE company_id = $1 AND status = $2`
	if err := r.q.QueryRow(context.Background(), query, companyID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reorders: %w", err)
	}
	return count, nil
}

// GetByPurchaseAndStatus busca la solicitud vinculada a una orden de compra en
// el estado dado. Devuelve ErrNotFound si no hay reorden vinculada (caso normal
// para compras creadas directamente).
func (r *ReorderRepo) GetByPurchaseAndStatus(purchaseID, status string) (*entity.Reorder, error) {
	query := `SELECT` + reorderColumns + ` FROM reorders WHERE purchase_id = $1 AND status = $2`
	ro, err := scanReorder(r.q.QueryRow(context.Background(), query, purchaseID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reorder by purchase: %w", err)
	}
	return ro, nil
}
