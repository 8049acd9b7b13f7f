package repository

import "github.com/jhoicas/Comercial-api/internal/domain/entity"

// ReorderRepository persistencia de solicitudes de reposición.
type ReorderRepository interface {
	Create(r *entity.Reorder) error
	GetByID(id string) (*entity.Reorder, error)
	Update(r *entity.Reorder) error
	ListByCompany(companyID string, status string, limit, offset int) ([]*entity.Reorder, error)
	CountByStatus(companyID, status string) (int, error)

	// GetByPurchaseAndStatus busca la solicitud vinculada a una orden de compra
	// en el estado dado (disparador cruzado compra-recibida → reorden-recibida).
	GetByPurchaseAndStatus(purchaseID, status string) (*entity.Reorder, error)
}
