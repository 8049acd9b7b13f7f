package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// ItemUseCase CRUD mínimo de ítems de stock. Las mutaciones de cantidad pasan
// por ventas, compras y reposiciones, nunca por aquí.
type ItemUseCase struct {
	repo repository.StockItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.StockItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un ítem nuevo. El SKU es único por empresa.
func (uc *ItemUseCase) Create(companyID string, in dto.CreateItemRequest) (*dto.ItemDTO, error) {
	if in.SKU == "" || in.Name == "" || in.Quantity < 0 || in.ReorderLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndSKU(companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.StockItem{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		SKU:             in.SKU,
		Name:            in.Name,
		Category:        in.Category,
		Price:           in.Price,
		Cost:            in.Cost,
		Quantity:        in.Quantity,
		ReorderLevel:    in.ReorderLevel,
		ReorderQuantity: in.ReorderQuantity,
		MaxStock:        in.MaxStock,
		LeadTimeDays:    in.LeadTimeDays,
		SupplierID:      in.SupplierID,
		ReorderStatus:   entity.ReorderStatusNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return toItemDTO(item), nil
}

// GetByID obtiene un ítem de la empresa.
func (uc *ItemUseCase) GetByID(companyID, id string) (*dto.ItemDTO, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toItemDTO(item), nil
}

// List lista los ítems de la empresa paginados.
func (uc *ItemUseCase) List(companyID string, page dto.PageRequest) ([]dto.ItemDTO, error) {
	page.DefaultPage()
	items, err := uc.repo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, *toItemDTO(item))
	}
	return out, nil
}

func toItemDTO(item *entity.StockItem) *dto.ItemDTO {
	return &dto.ItemDTO{
		ID:              item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Category:        item.Category,
		Price:           item.Price,
		Cost:            item.Cost,
		Quantity:        item.Quantity,
		ReorderLevel:    item.ReorderLevel,
		ReorderQuantity: item.ReorderQuantity,
		LeadTimeDays:    item.LeadTimeDays,
		SupplierID:      item.SupplierID,
		ReorderStatus:   item.ReorderStatus,
		PendingReorder:  item.PendingReorder,
		LastReorderDate: item.LastReorderDate,
	}
}
