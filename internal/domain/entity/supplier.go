package entity

import "time"

// Supplier proveedor de mercancía. El motor de reposición solo lo consulta
// (lookup por id y bandera de activo); su CRUD vive fuera de este módulo.
type Supplier struct {
	ID          string
	CompanyID   string
	Name        string
	ContactName string
	Email       string
	Phone       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
