package repository

import (
	"time"

	"github.com/jhoicas/Comercial-api/internal/domain/entity"
)

// LowStockFilter filtros del reporte de bajo stock. El reporte se ordena por
// prioridad global, así que la paginación se aplica después de ordenar, en el
// caso de uso.
type LowStockFilter struct {
	Category   string
	SupplierID string
}

// StockItemRepository puerto de persistencia del libro de stock (DIP).
// DecrementStock es la primitiva atómica "decrementar con piso": aplica el
// delta solo si la cantidad resultante no queda negativa, evitando lost
// updates entre ventas concurrentes sin read-modify-write.
type StockItemRepository interface {
	Create(item *entity.StockItem) error
	GetByID(id string) (*entity.StockItem, error)
	GetByCompanyAndSKU(companyID, sku string) (*entity.StockItem, error)
	Update(item *entity.StockItem) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.StockItem, error)
	ListBelowReorderLevel(companyID string, f LowStockFilter) ([]*entity.StockItem, error)
	CountLowStock(companyID string) (int, error)
	CountOutOfStock(companyID string) (int, error)

	// DecrementStock resta qty si quantity >= qty; devuelve ErrInsufficientStock
	// si el piso lo impide y ErrNotFound si el ítem no existe.
	DecrementStock(itemID string, qty int) error
	// IncrementStock suma qty (recepción de compra, reversa de venta, reposición).
	IncrementStock(itemID string, qty int) error

	// SetReorderState actualiza el estado de reposición y la referencia a la
	// solicitud abierta en una sola operación.
	SetReorderState(itemID, status, pendingReorderID string) error
	// StampLastReorder fija la fecha de la última reposición recibida.
	StampLastReorder(itemID string, at time.Time) error
}
