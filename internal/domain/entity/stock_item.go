package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de reposición de un ítem (ciclo: none → needed → pending → ordered → none).
const (
	ReorderStatusNone    = "none"    // Sin reposición en curso
	ReorderStatusNeeded  = "needed"  // Solicitud creada, pendiente de aprobación
	ReorderStatusPending = "pending" // Aprobada, sin orden de compra todavía
	ReorderStatusOrdered = "ordered" // Orden de compra generada, esperando recepción
)

// StockItem es el registro autoritativo de inventario: cantidad en mano,
// umbrales de reorden y vínculo con el proveedor preferido.
// Quantity nunca puede quedar negativa; los decrementos se aplican con
// primitiva atómica en la capa de almacenamiento.
type StockItem struct {
	ID              string
	CompanyID       string
	SKU             string // código único por empresa
	Name            string
	Category        string
	Price           decimal.Decimal // precio de venta unitario
	Cost            decimal.Decimal // costo unitario
	Quantity        int             // cantidad en mano (>= 0)
	ReorderLevel    int             // umbral de reorden
	ReorderQuantity int             // cantidad sugerida de pedido (hint)
	MaxStock        int
	LeadTimeDays    int
	SupplierID      string // proveedor preferido (opcional)
	ReorderStatus   string // none | needed | pending | ordered
	PendingReorder  string // id de la solicitud de reposición abierta
	LastReorderDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si el ítem está en o por debajo de su umbral de reorden.
func (s *StockItem) IsLowStock() bool {
	return s.Quantity <= s.ReorderLevel
}

// IsOutOfStock indica si el ítem está agotado.
func (s *StockItem) IsOutOfStock() bool {
	return s.Quantity <= 0
}
