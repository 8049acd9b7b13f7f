package dto

import "github.com/shopspring/decimal"

// SaleLineRequest línea de venta entrante.
type SaleLineRequest struct {
	ItemID    string           `json:"item_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // nil = precio del ítem
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerName string            `json:"customer_name,omitempty"`
	Lines        []SaleLineRequest `json:"lines"`
	TaxRate      *decimal.Decimal  `json:"tax_rate,omitempty"`
}

// SaleDTO representación de una venta en respuestas.
type SaleDTO struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}
