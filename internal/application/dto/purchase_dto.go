package dto

import "github.com/shopspring/decimal"

// PurchaseLineRequest línea de compra entrante.
type PurchaseLineRequest struct {
	ItemID   string           `json:"item_id"`
	Quantity int              `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"` // nil = costo del ítem
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID   string                `json:"supplier_id"`
	Lines        []PurchaseLineRequest `json:"lines"`
	TaxRate      *decimal.Decimal      `json:"tax_rate,omitempty"`
	ShippingCost *decimal.Decimal      `json:"shipping_cost,omitempty"`
}

// UpdatePurchaseStatusRequest body para PATCH /api/purchases/:id/status.
type UpdatePurchaseStatusRequest struct {
	Status string `json:"status"` // pending | received | cancelled
}

// RecordPaymentRequest body para POST /api/purchases/:id/payments.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// PurchaseDTO representación de una orden de compra en respuestas.
type PurchaseDTO struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	SupplierID    string          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}
