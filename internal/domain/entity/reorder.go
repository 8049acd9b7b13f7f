package entity

import "time"

// Estados del ciclo de vida de una solicitud de reposición.
// Los terminales son received y cancelled.
const (
	ReorderPending   = "pending"
	ReorderApproved  = "approved"
	ReorderOrdered   = "ordered"
	ReorderReceived  = "received"
	ReorderCancelled = "cancelled"
)

// Disparadores de creación de una solicitud.
const (
	ReorderTriggerAuto       = "auto"
	ReorderTriggerManual     = "manual"
	ReorderTriggerOutOfStock = "out_of_stock"
)

// Reorder solicitud de reposición de stock. Registra el nivel de stock y el
// umbral al momento del disparo para poder auditar la decisión después.
type Reorder struct {
	ID            string
	CompanyID     string
	Number        string // RO-NNNNNN, consecutivo zero-padded a 6 dígitos
	ItemID        string
	SupplierID    string // opcional hasta generar la orden de compra
	Trigger       string // auto | manual | out_of_stock
	TriggeredBy   string
	StockLevel    int // stock al momento del disparo
	ReorderLevel  int // umbral al momento del disparo
	SuggestedQty  int
	Status        string // pending | approved | ordered | received | cancelled
	PurchaseID    string // orden de compra generada, si existe
	OrderedQty    int
	ReceivedQty   int
	ResolvedAt    *time.Time
	ResolvedBy    string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
