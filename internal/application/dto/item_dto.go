package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Cost            decimal.Decimal `json:"cost"`
	Quantity        int             `json:"quantity"`
	ReorderLevel    int             `json:"reorder_level"`
	ReorderQuantity int             `json:"reorder_quantity,omitempty"`
	MaxStock        int             `json:"max_stock,omitempty"`
	LeadTimeDays    int             `json:"lead_time_days,omitempty"`
	SupplierID      string          `json:"supplier_id,omitempty"`
}

// ItemDTO representación de un ítem de stock en respuestas.
type ItemDTO struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Cost            decimal.Decimal `json:"cost"`
	Quantity        int             `json:"quantity"`
	ReorderLevel    int             `json:"reorder_level"`
	ReorderQuantity int             `json:"reorder_quantity"`
	LeadTimeDays    int             `json:"lead_time_days"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	ReorderStatus   string          `json:"reorder_status"`
	PendingReorder  string          `json:"pending_reorder,omitempty"`
	LastReorderDate *time.Time      `json:"last_reorder_date,omitempty"`
}
