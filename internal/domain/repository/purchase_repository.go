package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Comercial-api/internal/domain/entity"
)

// PurchaseRepository persistencia de órdenes de compra. El motor de reposición
// crea y actualiza compras como primitivas; la validación CRUD completa vive
// en el colaborador de compras.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	GetByID(id string) (*entity.Purchase, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error)
	UpdateStatus(id, status string) error
	Delete(id string) error

	// RecordPayment persiste un abono y el nuevo estado de pago acumulado.
	RecordPayment(id string, payment entity.PaymentEntry, paidAmount decimal.Decimal, paymentStatus string) error

	// LastUnitCost último costo unitario comprado del ítem; decimal.Zero y
	// found=false si nunca se compró.
	LastUnitCost(itemID string) (cost decimal.Decimal, found bool, err error)
}
