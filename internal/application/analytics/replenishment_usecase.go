// Package analytics expone la analítica de reposición: el cálculo por ítem,
// el reporte de bajo stock priorizado y las estadísticas del motor.
package analytics

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/replenishment"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// UseCase calcula analítica de reposición sobre la ventana móvil de ventas.
type UseCase struct {
	itemRepo    repository.StockItemRepository
	saleRepo    repository.SaleRepository
	reorderRepo repository.ReorderRepository
	cache       ReportCache
}

// NewUseCase construye el caso de uso de analítica.
func NewUseCase(
	itemRepo repository.StockItemRepository,
	saleRepo repository.SaleRepository,
	reorderRepo repository.ReorderRepository,
	cache ReportCache,
) *UseCase {
	return &UseCase{itemRepo: itemRepo, saleRepo: saleRepo, reorderRepo: reorderRepo, cache: cache}
}

// CalculateForItem computa la analítica del ítem. Falla con ErrNotFound si el
// ítem no existe; ante una falla interna de la consulta de ventas degrada a
// los defaults conservadores en lugar de propagar (alimenta listados que no
// deben romperse por una fila mala).
func (uc *UseCase) CalculateForItem(ctx context.Context, companyID, itemID string) (replenishment.Result, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return replenishment.Result{}, err
	}
	if item.CompanyID != companyID {
		return replenishment.Result{}, domain.ErrForbidden
	}
	return uc.calculate(item), nil
}

// calculate analítica con degradación silenciosa ante fallas internas.
func (uc *UseCase) calculate(item *entity.StockItem) replenishment.Result {
	in := replenishment.Input{
		CurrentStock:    item.Quantity,
		ReorderLevel:    item.ReorderLevel,
		ReorderQuantity: item.ReorderQuantity,
		LeadTimeDays:    item.LeadTimeDays,
	}
	since := time.Now().AddDate(0, 0, -replenishment.WindowDays)
	sold, err := uc.saleRepo.TotalSoldSince(item.ID, since)
	if err != nil {
		log.Warn().Err(err).Str("item_id", item.ID).
			Msg("consulta de ventas para analítica falló; usando defaults conservadores")
		return replenishment.Fallback(in)
	}
	in.TotalSold90Days = sold
	return replenishment.Calculate(in)
}

// GetLowStockReport devuelve los ítems en o bajo su umbral, enriquecidos con
// analítica y score, ordenados por prioridad descendente y paginados después
// de ordenar. El resultado completo se cachea por filtro.
func (uc *UseCase) GetLowStockReport(ctx context.Context, companyID string, f repository.LowStockFilter, page dto.PageRequest) (dto.LowStockReportDTO, error) {
	page.DefaultPage()

	key := reportCacheKey(companyID, f)
	var rows []dto.LowStockRowDTO
	if uc.cache != nil {
		if payload, ok, err := uc.cache.Get(ctx, key); err != nil {
			log.Warn().Err(err).Msg("lectura de cache del reporte falló")
		} else if ok {
			if err := json.Unmarshal(payload, &rows); err != nil {
				rows = nil
			}
		}
	}

	if rows == nil {
		items, err := uc.itemRepo.ListBelowReorderLevel(companyID, f)
		if err != nil {
			return dto.LowStockReportDTO{}, err
		}
		rows = make([]dto.LowStockRowDTO, 0, len(items))
		for _, item := range items {
			a := uc.calculate(item)
			value := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			score := replenishment.Score(item.Quantity, item.ReorderLevel, value, a)
			rows = append(rows, dto.LowStockRowDTO{
				ItemID:       item.ID,
				SKU:          item.SKU,
				Name:         item.Name,
				Category:     item.Category,
				SupplierID:   item.SupplierID,
				Quantity:     item.Quantity,
				ReorderLevel: item.ReorderLevel,
				Price:        item.Price,
				Cost:         item.Cost,
				Analytics:    a,
				Priority:     score,
				UrgencyLevel: replenishment.UrgencyLevel(score),
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Priority > rows[j].Priority
		})

		if uc.cache != nil {
			if payload, err := json.Marshal(rows); err == nil {
				if err := uc.cache.Set(ctx, key, payload); err != nil {
					log.Warn().Err(err).Msg("escritura de cache del reporte falló")
				}
			}
		}
	}

	total := len(rows)
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	return dto.LowStockReportDTO{
		Rows:  rows[start:end],
		Total: total,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetReorderStats estadísticas agregadas del motor de reposición. El valor
// estimado suma cantidad sugerida * costo de cada ítem bajo umbral.
func (uc *UseCase) GetReorderStats(ctx context.Context, companyID string) (dto.ReorderStatsDTO, error) {
	low, err := uc.itemRepo.CountLowStock(companyID)
	if err != nil {
		return dto.ReorderStatsDTO{}, err
	}
	out, err := uc.itemRepo.CountOutOfStock(companyID)
	if err != nil {
		return dto.ReorderStatsDTO{}, err
	}
	pending, err := uc.reorderRepo.CountByStatus(companyID, entity.ReorderPending)
	if err != nil {
		return dto.ReorderStatsDTO{}, err
	}
	ordered, err := uc.reorderRepo.CountByStatus(companyID, entity.ReorderOrdered)
	if err != nil {
		return dto.ReorderStatsDTO{}, err
	}

	items, err := uc.itemRepo.ListBelowReorderLevel(companyID, repository.LowStockFilter{})
	if err != nil {
		return dto.ReorderStatsDTO{}, err
	}
	value := decimal.Zero
	for _, item := range items {
		a := uc.calculate(item)
		value = value.Add(item.Cost.Mul(decimal.NewFromInt(int64(a.SuggestedQuantity))))
	}

	return dto.ReorderStatsDTO{
		LowStockItems:         low,
		OutOfStockItems:       out,
		PendingReorders:       pending,
		OrderedReorders:       ordered,
		EstimatedReorderValue: value,
	}, nil
}

// reportCacheKey clave estable por empresa y filtro.
func reportCacheKey(companyID string, f repository.LowStockFilter) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s", companyID, f.Category, f.SupplierID)))
	return "low_stock:report:" + hex.EncodeToString(sum[:])
}
