package analytics_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/apptest"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/replenishment"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

const companyID = "co-1"

type fixture struct {
	uc       *analytics.UseCase
	items    *apptest.StockItemRepo
	sales    *apptest.SaleRepo
	reorders *apptest.ReorderRepo
	cache    *apptest.ReportCache
}

func newFixture() *fixture {
	f := &fixture{
		items:    apptest.NewStockItemRepo(),
		sales:    apptest.NewSaleRepo(),
		reorders: apptest.NewReorderRepo(),
		cache:    apptest.NewReportCache(),
	}
	f.uc = analytics.NewUseCase(f.items, f.sales, f.reorders, f.cache)
	return f
}

func (f *fixture) seedItem(id string, qty, level int, price, cost int64) {
	f.items.Seed(&entity.StockItem{
		ID: id, CompanyID: companyID, SKU: "SKU-" + id, Name: "Ítem " + id,
		Quantity: qty, ReorderLevel: level, ReorderQuantity: 10, LeadTimeDays: 5,
		Price: decimal.NewFromInt(price), Cost: decimal.NewFromInt(cost),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Analítica por ítem
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateForItem_UsaLaVentanaDeVentas(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 4, 10, 100, 40)
	f.sales.Sold["i1"] = 180 // 2/día en la ventana de 90

	a, err := f.uc.CalculateForItem(context.Background(), companyID, "i1")
	require.NoError(t, err)

	assert.InDelta(t, 2.0, a.AverageDailySales, 1e-9)
	assert.Equal(t, 2, a.DaysUntilStockout)
	assert.Equal(t, 30, a.SuggestedQuantity)
}

func TestCalculateForItem_NoExisteOAjeno(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 4, 10, 100, 40)

	_, err := f.uc.CalculateForItem(context.Background(), companyID, "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CalculateForItem(context.Background(), "otra-empresa", "i1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// La falla de la consulta de ventas degrada a los defaults conservadores en
// lugar de propagar: el listado no se rompe por una fila mala.
func TestCalculateForItem_DegradaAnteFalla(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 4, 10, 100, 40)
	f.sales.SoldErr = fmt.Errorf("consulta caída")

	a, err := f.uc.CalculateForItem(context.Background(), companyID, "i1")
	require.NoError(t, err, "la degradación no es un error")

	assert.Equal(t, 10, a.SuggestedQuantity, "cae al hint del ítem")
	assert.Equal(t, replenishment.StockoutSentinel, a.DaysUntilStockout)
	assert.Zero(t, a.AverageDailySales)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reporte de bajo stock
// ──────────────────────────────────────────────────────────────────────────────

func TestGetLowStockReport_OrdenGlobalPorPrioridad(t *testing.T) {
	f := newFixture()
	f.seedItem("agotado", 0, 10, 100, 40)   // +100 agotado, +15 bajo umbral
	f.seedItem("urgente", 4, 10, 100, 40)   // ventas altas, pocos días de margen
	f.seedItem("tranquilo", 9, 10, 100, 40) // sin ventas
	f.seedItem("sano", 50, 10, 100, 40)     // fuera del reporte
	f.sales.Sold["urgente"] = 540 // 6/día, floor(4/6) = 0 días hasta agotarse

	out, err := f.uc.GetLowStockReport(context.Background(), companyID, repository.LowStockFilter{}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)

	require.Len(t, out.Rows, 3, "solo los ítems en o bajo su umbral")
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, "agotado", out.Rows[0].ItemID, "el agotado encabeza el reporte")
	assert.Equal(t, "urgente", out.Rows[1].ItemID)
	assert.Equal(t, "tranquilo", out.Rows[2].ItemID)
	assert.Equal(t, replenishment.UrgencyCritical, out.Rows[0].UrgencyLevel)
	assert.Greater(t, out.Rows[0].Priority, out.Rows[1].Priority)
	assert.Greater(t, out.Rows[1].Priority, out.Rows[2].Priority)
}

// La paginación corta DESPUÉS de ordenar: la segunda página continúa el orden
// global de prioridad.
func TestGetLowStockReport_PaginaTrasOrdenar(t *testing.T) {
	f := newFixture()
	f.seedItem("agotado", 0, 10, 100, 40)
	f.seedItem("urgente", 4, 10, 100, 40)
	f.seedItem("tranquilo", 9, 10, 100, 40)
	f.sales.Sold["urgente"] = 540

	out, err := f.uc.GetLowStockReport(context.Background(), companyID, repository.LowStockFilter{}, dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "urgente", out.Rows[0].ItemID, "la segunda fila del orden global")
	assert.Equal(t, 3, out.Total, "el total reporta el conjunto completo")
}

func TestGetLowStockReport_UsaElCache(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 2, 10, 100, 40)
	ctx := context.Background()

	first, err := f.uc.GetLowStockReport(ctx, companyID, repository.LowStockFilter{}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, 1, f.cache.Sets, "la primera lectura puebla el cache")

	// Mutación directa sin invalidar: la segunda lectura sigue sirviendo lo
	// cacheado, prueba de que no se recalculó.
	f.items.Items["i1"].Quantity = 0

	second, err := f.uc.GetLowStockReport(ctx, companyID, repository.LowStockFilter{}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Rows[0].Quantity, "sirvió la instantánea cacheada")

	// Invalidado el cache, el reporte refleja la mutación.
	require.NoError(t, f.cache.InvalidateAll(ctx))
	third, err := f.uc.GetLowStockReport(ctx, companyID, repository.LowStockFilter{}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, third.Rows[0].Quantity)
}

func TestGetLowStockReport_FiltraPorCategoriaYProveedor(t *testing.T) {
	f := newFixture()
	f.items.Seed(&entity.StockItem{
		ID: "a", CompanyID: companyID, SKU: "A", Name: "A", Quantity: 1, ReorderLevel: 5,
		Category: "bebidas", SupplierID: "s-1",
		Price: decimal.NewFromInt(10), Cost: decimal.NewFromInt(5),
	})
	f.items.Seed(&entity.StockItem{
		ID: "b", CompanyID: companyID, SKU: "B", Name: "B", Quantity: 1, ReorderLevel: 5,
		Category: "lácteos", SupplierID: "s-2",
		Price: decimal.NewFromInt(10), Cost: decimal.NewFromInt(5),
	})

	out, err := f.uc.GetLowStockReport(context.Background(), companyID,
		repository.LowStockFilter{Category: "bebidas"}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "a", out.Rows[0].ItemID)

	out, err = f.uc.GetLowStockReport(context.Background(), companyID,
		repository.LowStockFilter{SupplierID: "s-2"}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "b", out.Rows[0].ItemID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetReorderStats(t *testing.T) {
	f := newFixture()
	f.seedItem("bajo", 2, 10, 100, 40)
	f.seedItem("agotado", 0, 10, 100, 40)
	f.seedItem("sano", 50, 10, 100, 40)
	require.NoError(t, f.reorders.Create(&entity.Reorder{ID: "r1", CompanyID: companyID, Status: entity.ReorderPending}))
	require.NoError(t, f.reorders.Create(&entity.Reorder{ID: "r2", CompanyID: companyID, Status: entity.ReorderPending}))
	require.NoError(t, f.reorders.Create(&entity.Reorder{ID: "r3", CompanyID: companyID, Status: entity.ReorderOrdered}))

	stats, err := f.uc.GetReorderStats(context.Background(), companyID)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OutOfStockItems)
	assert.Equal(t, 2, stats.PendingReorders)
	assert.Equal(t, 1, stats.OrderedReorders)
	// Dos ítems bajo umbral sin ventas: sugerido = hint 10 cada uno, costo 40.
	assert.True(t, stats.EstimatedReorderValue.Equal(decimal.NewFromInt(800)),
		"valor estimado = suma de sugerido * costo")
}
