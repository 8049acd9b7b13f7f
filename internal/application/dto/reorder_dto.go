package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/domain/replenishment"
)

// CreateReorderRequest body para POST /api/reorders.
type CreateReorderRequest struct {
	ItemID     string `json:"item_id"`
	SupplierID string `json:"supplier_id,omitempty"`
	Quantity   int    `json:"quantity,omitempty"` // 0 = usar la cantidad sugerida
	Notes      string `json:"notes,omitempty"`
}

// QuickReorderRequest body para POST /api/reorders/quick. Caso "ya tengo la
// mercancía en mano": crea la solicitud, entra el stock y registra la compra
// recibida en una sola operación.
type QuickReorderRequest struct {
	ItemID     string           `json:"item_id"`
	Quantity   int              `json:"quantity"`
	SupplierID string           `json:"supplier_id,omitempty"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"` // nil = costo del ítem
	Notes      string           `json:"notes,omitempty"`
}

// BulkReorderLine una línea de reposición masiva.
type BulkReorderLine struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	SupplierID string `json:"supplier_id,omitempty"` // vacío = proveedor preferido del ítem
}

// BulkReorderRequest body para POST /api/reorders/bulk.
type BulkReorderRequest struct {
	Lines []BulkReorderLine `json:"lines"`
	Notes string            `json:"notes,omitempty"`
}

// BulkReorderResultDTO resumen de una reposición masiva: una orden de compra
// por proveedor y una solicitud por ítem.
type BulkReorderResultDTO struct {
	PurchaseIDs []string `json:"purchase_ids"`
	ReorderIDs  []string `json:"reorder_ids"`
}

// MarkReceivedRequest body para POST /api/reorders/:id/receive.
type MarkReceivedRequest struct {
	ReceivedQty int    `json:"received_qty,omitempty"` // 0 = cantidad ordenada
	Notes       string `json:"notes,omitempty"`
}

// ReorderDTO representación de una solicitud de reposición en respuestas.
type ReorderDTO struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	ItemID       string `json:"item_id"`
	SupplierID   string `json:"supplier_id,omitempty"`
	Trigger      string `json:"trigger"`
	TriggeredBy  string `json:"triggered_by"`
	StockLevel   int    `json:"stock_level"`
	ReorderLevel int    `json:"reorder_level"`
	SuggestedQty int    `json:"suggested_qty"`
	Status       string `json:"status"`
	PurchaseID   string `json:"purchase_id,omitempty"`
	OrderedQty   int    `json:"ordered_qty,omitempty"`
	ReceivedQty  int    `json:"received_qty,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// LowStockRowDTO fila del reporte de bajo stock, ordenado por prioridad
// descendente.
type LowStockRowDTO struct {
	ItemID       string               `json:"item_id"`
	SKU          string               `json:"sku"`
	Name         string               `json:"name"`
	Category     string               `json:"category,omitempty"`
	SupplierID   string               `json:"supplier_id,omitempty"`
	Quantity     int                  `json:"quantity"`
	ReorderLevel int                  `json:"reorder_level"`
	Price        decimal.Decimal      `json:"price"`
	Cost         decimal.Decimal      `json:"cost"`
	Analytics    replenishment.Result `json:"analytics"`
	Priority     int                  `json:"priority"`
	UrgencyLevel string               `json:"urgency_level"`
}

// LowStockReportDTO respuesta de GET /api/reorders/report.
type LowStockReportDTO struct {
	Rows  []LowStockRowDTO `json:"rows"`
	Total int              `json:"total"`
	Page  PageResponse     `json:"page"`
}

// ReorderStatsDTO respuesta de GET /api/reorders/stats.
type ReorderStatsDTO struct {
	LowStockItems         int             `json:"low_stock_items"`
	OutOfStockItems       int             `json:"out_of_stock_items"`
	PendingReorders       int             `json:"pending_reorders"`
	OrderedReorders       int             `json:"ordered_reorders"`
	EstimatedReorderValue decimal.Decimal `json:"estimated_reorder_value"`
}
