package repository

import "github.com/jhoicas/Comercial-api/internal/domain/entity"

// SupplierRepository lookup de proveedores. El motor solo lee; el CRUD de
// proveedores es un colaborador externo.
type SupplierRepository interface {
	GetByID(id string) (*entity.Supplier, error)
	ListActive(companyID string) ([]*entity.Supplier, error)
}
