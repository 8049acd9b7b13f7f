package replenishment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Comercial-api/internal/domain/replenishment"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del cálculo de analítica de reposición (ventana de 90 días)
// ──────────────────────────────────────────────────────────────────────────────

// Caso base: 180 unidades vendidas en 90 días → 2/día. Con lead time de 5 días
// y revisión de 7: demanda = 12*2 + safety 10 - stock 4 = 30.
func TestCalculate_DemandaBasica(t *testing.T) {
	r := replenishment.Calculate(replenishment.Input{
		CurrentStock:    4,
		ReorderLevel:    10,
		ReorderQuantity: 0,
		LeadTimeDays:    5,
		TotalSold90Days: 180,
	})

	assert.InDelta(t, 2.0, r.AverageDailySales, 1e-9, "promedio diario debe ser 180/90")
	assert.InDelta(t, 10.0, r.Calculations.SafetyStock, 1e-9, "safety = leadTime * promedio")
	assert.Equal(t, 2, r.DaysUntilStockout, "floor(4/2) = 2 días")
	assert.Equal(t, 30, r.SuggestedQuantity, "ceil((5+7)*2 + 10 - 4) = 30")
	assert.Equal(t, 180, r.Calculations.TotalSold90Days)
	assert.Equal(t, replenishment.ReviewPeriodDays, r.Calculations.ReviewPeriod)
}

// Sin ventas en la ventana: días hasta agotamiento = centinela 999 y la
// sugerencia cae al hint del ítem.
func TestCalculate_SinVentasUsaCentinelaYHint(t *testing.T) {
	r := replenishment.Calculate(replenishment.Input{
		CurrentStock:    50,
		ReorderQuantity: 25,
		LeadTimeDays:    7,
		TotalSold90Days: 0,
	})

	assert.Equal(t, replenishment.StockoutSentinel, r.DaysUntilStockout,
		"sin ventas el agotamiento es efectivamente infinito")
	assert.Equal(t, 25, r.SuggestedQuantity, "sin demanda debe sugerir el hint del ítem")
	assert.Zero(t, r.AverageDailySales)
}

// Sin ventas y sin hint: la sugerencia usa el default de 10.
func TestCalculate_SinHintUsaDefault(t *testing.T) {
	r := replenishment.Calculate(replenishment.Input{
		CurrentStock:    100,
		ReorderQuantity: 0,
		LeadTimeDays:    3,
		TotalSold90Days: 0,
	})
	assert.Equal(t, replenishment.DefaultSuggestedQty, r.SuggestedQuantity)
}

// Stock sobrado: la fórmula da negativo pero la sugerencia nunca baja del
// hint (piso efectivo) ni de 1.
func TestCalculate_StockSobradoNoSugiereNegativo(t *testing.T) {
	r := replenishment.Calculate(replenishment.Input{
		CurrentStock:    500,
		ReorderQuantity: 15,
		LeadTimeDays:    2,
		TotalSold90Days: 9, // 0.1/día
	})
	assert.Equal(t, 15, r.SuggestedQuantity, "la sugerencia queda en el hint cuando la demanda es negativa")
}

// Fallback: defaults conservadores que no rompen el listado.
func TestFallback_DefaultsConservadores(t *testing.T) {
	r := replenishment.Fallback(replenishment.Input{
		CurrentStock:    3,
		ReorderLevel:    5,
		ReorderQuantity: 0,
		LeadTimeDays:    4,
	})

	assert.Equal(t, replenishment.DefaultSuggestedQty, r.SuggestedQuantity)
	assert.Equal(t, replenishment.StockoutSentinel, r.DaysUntilStockout)
	assert.Equal(t, 3, r.CurrentStock)
	assert.Equal(t, 5, r.ReorderLevel)
}
