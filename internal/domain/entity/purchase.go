package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// Estados de pago de una orden de compra.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// PurchaseItem línea de compra con snapshot del nombre del ítem.
type PurchaseItem struct {
	ItemID   string
	ItemName string
	Quantity int
	UnitCost decimal.Decimal
	LineTotal decimal.Decimal
}

// PaymentEntry abono registrado contra una orden de compra.
type PaymentEntry struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
	PaidBy    string
}

// Purchase orden de compra. El snapshot del proveedor (nombre/contacto) se
// denormaliza al crearla; la recepción es el evento que incrementa el stock
// y resuelve la solicitud de reposición vinculada, si existe.
type Purchase struct {
	ID              string
	CompanyID       string
	Number          string // PC-NNNNNN, consecutivo
	SupplierID      string
	SupplierName    string
	SupplierContact string
	Items           []PurchaseItem
	Subtotal        decimal.Decimal
	TaxTotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	GrandTotal      decimal.Decimal
	PaymentStatus   string // unpaid | partial | paid
	PaidAmount      decimal.Decimal
	Payments        []PaymentEntry
	Status          string // pending | received | cancelled
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Balance saldo pendiente de pago.
func (p *Purchase) Balance() decimal.Decimal {
	return p.GrandTotal.Sub(p.PaidAmount)
}

// TotalQuantity suma de unidades de todas las líneas.
func (p *Purchase) TotalQuantity() int {
	total := 0
	for _, it := range p.Items {
		total += it.Quantity
	}
	return total
}
