package repository

import (
	"time"

	"github.com/jhoicas/Comercial-api/internal/domain/entity"
)

// SaleRepository persistencia de ventas más la consulta agregada que alimenta
// la analítica de reposición (total vendido por ítem en una ventana).
type SaleRepository interface {
	Create(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error)
	Delete(id string) error

	// TotalSoldSince suma las unidades vendidas del ítem desde la fecha dada.
	TotalSoldSince(itemID string, since time.Time) (int, error)
}
