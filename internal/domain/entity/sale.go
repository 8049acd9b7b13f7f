package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem línea de venta con snapshot del nombre del ítem al momento de vender.
type SaleItem struct {
	ItemID    string
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Sale venta confirmada. Cada línea decrementa el StockItem correspondiente
// de forma transaccional; una venta que sobrevendería se rechaza completa.
type Sale struct {
	ID           string
	CompanyID    string
	Number       string // VT-NNNNNN, consecutivo
	CustomerName string
	Items        []SaleItem
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	GrandTotal   decimal.Decimal
	CreatedBy    string
	CreatedAt    time.Time
}
