package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Comercial-api/internal/application/purchases"
	"github.com/jhoicas/Comercial-api/internal/application/reorder"
	"github.com/jhoicas/Comercial-api/internal/application/sales"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// Ensure TxRunner implements the application TxRunner ports.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ purchases.TxRunner = (*TxRunner)(nil)
var _ reorder.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	saleRepo repository.SaleRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewStockItemRepository(tx)
	saleRepo := NewSaleRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(itemRepo, saleRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPurchase inicia una transacción con repos de stock y compras (recepción de compra).
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	purchaseRepo repository.PurchaseRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewStockItemRepository(tx)
	purchaseRepo := NewPurchaseRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(itemRepo, purchaseRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReorder inicia una transacción con repos de stock, reposición y compras
// (reposición rápida y masiva: solicitud + compra + stock como una unidad).
func (r *TxRunner) RunReorder(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	reorderRepo repository.ReorderRepository,
	purchaseRepo repository.PurchaseRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewStockItemRepository(tx)
	reorderRepo := NewReorderRepository(tx)
	purchaseRepo := NewPurchaseRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(itemRepo, reorderRepo, purchaseRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
