package entity

import (
	"encoding/json"
	"time"
)

// Tipos de notificación.
const (
	NotifPurchase         = "purchase"
	NotifSale             = "sale"
	NotifLowStock         = "low_stock"
	NotifOutOfStock       = "out_of_stock"
	NotifPaymentReceived  = "payment_received"
	NotifPaymentMade      = "payment_made"
	NotifReorderCreated   = "reorder_created"
	NotifReorderApproved  = "reorder_approved"
	NotifReorderCancelled = "reorder_cancelled"
	NotifReorderReceived  = "reorder_received"
	NotifLowStockPurchase = "low_stock_purchase"
	NotifSystem           = "system"
	NotifLogin            = "login"
	NotifSecurityAlert    = "security_alert"
	NotifExpiryWarning    = "expiry_warning"
)

// Notification es la entidad lógica de alerta. Vive proyectada en dos vistas
// que comparten el mismo ID: la vista "reciente" (acotada, feed de actividad)
// y el archivo (sin límite). Marcar leída en una debe propagarse a la otra;
// descartar del feed NO borra el archivo; el borrado permanente elimina ambas.
type Notification struct {
	ID          string
	CompanyID   string
	Kind        string
	Title       string
	Message     string
	Read        bool
	RelatedID   string // id de la entidad relacionada (ítem, compra, reorden…)
	RelatedType string // stock_item | sale | purchase | reorder
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArchivedNotification proyección de archivo: misma identidad que la reciente,
// más la marca de descarte del feed (el descarte conserva la fila archivada).
type ArchivedNotification struct {
	Notification
	DismissedFromLayoutBar bool
}
