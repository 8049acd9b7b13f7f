// Package replenishment contiene la lógica pura del motor de reposición:
// el cálculo de analítica de demanda y el score de prioridad. Sin I/O.
package replenishment

import "math"

const (
	// ReviewPeriodDays periodo de revisión fijo del modelo de reposición.
	ReviewPeriodDays = 7

	// WindowDays ventana móvil de ventas usada para estimar la demanda.
	WindowDays = 90

	// StockoutSentinel "días hasta agotamiento" cuando no hay ventas en la
	// ventana: efectivamente infinito.
	StockoutSentinel = 999

	// DefaultSuggestedQty cantidad sugerida cuando el ítem no define hint.
	DefaultSuggestedQty = 10
)

// Input datos mínimos del ítem para calcular la analítica.
type Input struct {
	CurrentStock    int
	ReorderLevel    int
	ReorderQuantity int // hint del ítem; 0 = sin hint
	LeadTimeDays    int
	TotalSold90Days int // unidades vendidas en la ventana móvil
}

// Result analítica de reposición de un ítem.
type Result struct {
	SuggestedQuantity int     `json:"suggested_quantity"`
	AverageDailySales float64 `json:"average_daily_sales"`
	CurrentStock      int     `json:"current_stock"`
	ReorderLevel      int     `json:"reorder_level"`
	DaysUntilStockout int     `json:"days_until_stockout"`
	Calculations      Calc    `json:"calculations"`
}

// Calc detalle intermedio del cálculo, útil para auditar la sugerencia.
type Calc struct {
	TotalSold90Days int     `json:"total_sold_90_days"`
	AnnualDemand    float64 `json:"annual_demand"`
	SafetyStock     float64 `json:"safety_stock"`
	LeadTimeDays    int     `json:"lead_time_days"`
	ReviewPeriod    int     `json:"review_period"`
}

// Calculate computa la analítica de reposición a partir de la venta acumulada
// de los últimos 90 días:
//
//	avgDiario     = vendido90 / 90
//	safetyStock   = leadTime * avgDiario
//	díasAgotarse  = floor(stock / avgDiario), o 999 sin ventas
//	sugerido      = max(ceil((leadTime+revisión)*avgDiario + safetyStock - stock), hint o 10)
func Calculate(in Input) Result {
	avgDaily := float64(in.TotalSold90Days) / float64(WindowDays)
	safety := float64(in.LeadTimeDays) * avgDaily

	days := StockoutSentinel
	if in.TotalSold90Days > 0 {
		days = int(math.Floor(float64(in.CurrentStock) / avgDaily))
	}

	minQty := in.ReorderQuantity
	if minQty <= 0 {
		minQty = DefaultSuggestedQty
	}

	demand := float64(in.LeadTimeDays+ReviewPeriodDays)*avgDaily + safety - float64(in.CurrentStock)
	suggested := int(math.Ceil(demand))
	if suggested < minQty {
		suggested = minQty
	}
	if suggested < 1 {
		suggested = 1
	}

	return Result{
		SuggestedQuantity: suggested,
		AverageDailySales: avgDaily,
		CurrentStock:      in.CurrentStock,
		ReorderLevel:      in.ReorderLevel,
		DaysUntilStockout: days,
		Calculations: Calc{
			TotalSold90Days: in.TotalSold90Days,
			AnnualDemand:    avgDaily * 365,
			SafetyStock:     safety,
			LeadTimeDays:    in.LeadTimeDays,
			ReviewPeriod:    ReviewPeriodDays,
		},
	}
}

// Fallback analítica conservadora cuando el cálculo falla: sugiere el hint del
// ítem (o el default) y reporta agotamiento "infinito". Alimenta listados que
// no deben romperse por una fila mala.
func Fallback(in Input) Result {
	minQty := in.ReorderQuantity
	if minQty <= 0 {
		minQty = DefaultSuggestedQty
	}
	return Result{
		SuggestedQuantity: minQty,
		CurrentStock:      in.CurrentStock,
		ReorderLevel:      in.ReorderLevel,
		DaysUntilStockout: StockoutSentinel,
		Calculations: Calc{
			LeadTimeDays: in.LeadTimeDays,
			ReviewPeriod: ReviewPeriodDays,
		},
	}
}
