package replenishment

import "github.com/shopspring/decimal"

// Niveles de urgencia derivados del score.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

// Score calcula la prioridad numérica de reposición de un ítem. Las reglas son
// aditivas e independientes entre sí; el resultado ordena el reporte de bajo
// stock de mayor a menor urgencia. stockValue es el valor inmovilizado
// (precio de venta * cantidad en mano).
//
//	stock <= 0: +100; agotamiento <= 3 días: +50; <= 7 días: +25
//	venta diaria promedio > 5: +30; > 2: +15
//	valor inmovilizado > 10000: +20; > 5000: +10
//	stock <= nivel de reorden: +15
func Score(stock, reorderLevel int, stockValue decimal.Decimal, a Result) int {
	score := 0

	switch {
	case stock <= 0:
		score += 100
	case a.DaysUntilStockout <= 3:
		score += 50
	case a.DaysUntilStockout <= 7:
		score += 25
	}

	switch {
	case a.AverageDailySales > 5:
		score += 30
	case a.AverageDailySales > 2:
		score += 15
	}

	switch {
	case stockValue.GreaterThan(decimal.NewFromInt(10000)):
		score += 20
	case stockValue.GreaterThan(decimal.NewFromInt(5000)):
		score += 10
	}

	if stock <= reorderLevel {
		score += 15
	}

	return score
}

// UrgencyLevel mapea el score a la banda categórica de urgencia.
func UrgencyLevel(score int) string {
	switch {
	case score >= 100:
		return UrgencyCritical
	case score >= 50:
		return UrgencyHigh
	case score >= 25:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
