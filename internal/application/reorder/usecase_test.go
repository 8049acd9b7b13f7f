package reorder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/apptest"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/application/reorder"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
)

const (
	companyID = "co-1"
	userID    = "u-1"
)

type fixture struct {
	uc        *reorder.UseCase
	tx        *apptest.TxRunner
	notifier  *notification.UseCase
	items     *apptest.StockItemRepo
	sales     *apptest.SaleRepo
	purchases *apptest.PurchaseRepo
	reorders  *apptest.ReorderRepo
	suppliers *apptest.SupplierRepo
	recent    *apptest.RecentNotificationRepo
	archive   *apptest.ArchivedNotificationRepo
	cache     *apptest.ReportCache
}

func newFixture() *fixture {
	f := &fixture{
		items:     apptest.NewStockItemRepo(),
		sales:     apptest.NewSaleRepo(),
		purchases: apptest.NewPurchaseRepo(),
		reorders:  apptest.NewReorderRepo(),
		suppliers: apptest.NewSupplierRepo(),
		cache:     apptest.NewReportCache(),
	}
	f.recent, f.archive = apptest.NewNotificationStores()
	f.notifier = notification.NewUseCase(f.recent, f.archive)
	f.tx = &apptest.TxRunner{
		Items:     f.items,
		Sales:     f.sales,
		Purchases: f.purchases,
		Reorders:  f.reorders,
		Seq:       apptest.NewSequenceRepo(),
	}
	analyticsUC := analytics.NewUseCase(f.items, f.sales, f.reorders, f.cache)
	f.uc = reorder.NewUseCase(f.tx, f.items, f.reorders, f.purchases, f.suppliers, analyticsUC, f.notifier, f.cache)
	return f
}

func (f *fixture) seedItem(id string, qty, level, hint int) {
	f.items.Seed(&entity.StockItem{
		ID: id, CompanyID: companyID, SKU: "SKU-" + id, Name: "Ítem " + id,
		Quantity: qty, ReorderLevel: level, ReorderQuantity: hint, LeadTimeDays: 5,
		Price: decimal.NewFromInt(100), Cost: decimal.NewFromInt(40),
		SupplierID: "s-1", ReorderStatus: entity.ReorderStatusNone,
	})
}

func (f *fixture) seedSupplier(id, name string) {
	f.suppliers.Seed(&entity.Supplier{
		ID: id, CompanyID: companyID, Name: name, ContactName: "Contacto " + name, Active: true,
	})
}

func (f *fixture) hasNotification(kind string) bool {
	for _, n := range f.recent.Rows {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación manual
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SolicitudPendiente(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)

	r, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	assert.Equal(t, "RO-000001", r.Number)
	assert.Equal(t, entity.ReorderPending, r.Status)
	assert.Equal(t, entity.ReorderTriggerManual, r.Trigger)
	assert.Equal(t, 2, r.StockLevel, "registra el stock al momento del disparo")
	assert.Equal(t, 10, r.ReorderLevel)
	assert.Equal(t, 30, r.SuggestedQty, "sin ventas la sugerencia cae al hint del ítem")
	assert.Equal(t, "s-1", r.SupplierID, "sin proveedor explícito usa el preferido")

	item := f.items.Items["i1"]
	assert.Equal(t, entity.ReorderStatusNeeded, item.ReorderStatus)
	assert.Equal(t, r.ID, item.PendingReorder)
	assert.True(t, f.hasNotification(entity.NotifReorderCreated))
}

func TestCreate_ItemAgotadoMarcaDisparador(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 0, 10, 30)

	r, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReorderTriggerOutOfStock, r.Trigger)
}

func TestCreate_CantidadExplicitaManda(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)

	r, err := f.uc.Create(context.Background(), companyID, userID, dto.CreateReorderRequest{
		ItemID: "i1", Quantity: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, 99, r.SuggestedQty)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_PendingAprobadaOrdenadaRecibida(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	r, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReorderApproved, r.Status)
	assert.Equal(t, entity.ReorderStatusPending, f.items.Items["i1"].ReorderStatus)
	assert.True(t, f.hasNotification(entity.NotifReorderApproved))

	purchase, err := f.uc.CreatePurchaseFromReorder(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "PC-000001", purchase.Number)
	assert.Equal(t, entity.PurchaseStatusPending, purchase.Status)
	assert.Equal(t, "Proveedor Uno", purchase.SupplierName, "el snapshot del proveedor se denormaliza")
	require.Len(t, purchase.Items, 1)
	assert.Equal(t, 30, purchase.Items[0].Quantity)
	assert.True(t, purchase.Items[0].UnitCost.Equal(decimal.NewFromInt(40)), "sin compras previas usa el costo de catálogo")

	stored, _ := f.reorders.GetByID(r.ID)
	assert.Equal(t, entity.ReorderOrdered, stored.Status)
	assert.Equal(t, purchase.ID, stored.PurchaseID)
	assert.Equal(t, 30, stored.OrderedQty)
	assert.Equal(t, entity.ReorderStatusOrdered, f.items.Items["i1"].ReorderStatus)

	got, err := f.uc.MarkReceived(ctx, companyID, userID, r.ID, dto.MarkReceivedRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.ReorderReceived, got.Status)
	assert.Equal(t, 30, got.ReceivedQty, "por defecto se recibe la cantidad ordenada")
	assert.NotNil(t, got.ResolvedAt)

	item := f.items.Items["i1"]
	assert.Equal(t, 32, item.Quantity, "el stock entra en la recepción")
	assert.Equal(t, entity.ReorderStatusNone, item.ReorderStatus)
	assert.Empty(t, item.PendingReorder)
	assert.NotNil(t, item.LastReorderDate)

	p, _ := f.purchases.GetByID(purchase.ID)
	assert.Equal(t, entity.PurchaseStatusReceived, p.Status, "la orden vinculada pendiente se marca recibida")
	assert.True(t, f.hasNotification(entity.NotifReorderReceived))
}

func TestApprove_SoloDesdePending(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "aprobar dos veces es ilegal")
}

func TestCancel_RestableceElItem(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(ctx, companyID, userID, r.ID))

	stored, _ := f.reorders.GetByID(r.ID)
	assert.Equal(t, entity.ReorderCancelled, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
	assert.Equal(t, entity.ReorderStatusNone, f.items.Items["i1"].ReorderStatus)
	assert.True(t, f.hasNotification(entity.NotifReorderCancelled))
}

func TestEstadosTerminalesRechazanTransiciones(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	require.NoError(t, f.uc.Cancel(ctx, companyID, userID, r.ID))

	err = f.uc.Cancel(ctx, companyID, userID, r.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "cancelled es terminal")
	_, err = f.uc.MarkReceived(ctx, companyID, userID, r.ID, dto.MarkReceivedRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMarkReceived_CantidadExplicita(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	got, err := f.uc.MarkReceived(ctx, companyID, userID, r.ID, dto.MarkReceivedRequest{ReceivedQty: 12})
	require.NoError(t, err)

	assert.Equal(t, 12, got.ReceivedQty)
	assert.Equal(t, 14, f.items.Items["i1"].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reposición rápida
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateQuick_FusionaSolicitudCompraYStock(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 0, 10, 30)
	ctx := context.Background()

	// Alerta de agotado viva antes de reponer.
	item, _ := f.items.GetByID("i1")
	require.NoError(t, f.notifier.EvaluateStockLevel(ctx, item))

	r, err := f.uc.CreateQuick(ctx, companyID, userID, dto.QuickReorderRequest{
		ItemID: "i1", Quantity: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ReorderReceived, r.Status, "la reposición rápida nace ya recibida")
	assert.Equal(t, entity.ReorderTriggerOutOfStock, r.Trigger)
	assert.Equal(t, 20, r.ReceivedQty)
	assert.NotNil(t, r.ResolvedAt)
	assert.Equal(t, 20, f.items.Items["i1"].Quantity, "el stock entra de inmediato")
	assert.Equal(t, entity.ReorderStatusNone, f.items.Items["i1"].ReorderStatus)

	p, err := f.purchases.GetByID(r.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, p.Status, "la compra sintetizada nace recibida")
	assert.True(t, p.GrandTotal.Equal(decimal.NewFromInt(800)), "20 * costo 40")

	// La alerta de agotado quedó leída y se anunció la reposición.
	for _, n := range f.archive.Rows {
		if n.Kind == entity.NotifOutOfStock {
			assert.True(t, n.Read, "la alerta de stock del ítem repuesto se cierra")
		}
	}
	assert.True(t, f.hasNotification(entity.NotifLowStockPurchase))
	assert.GreaterOrEqual(t, f.cache.Invalidations, 1)
}

// Una alerta de stock ya descartada del feed sobrevive solo en el archivo; la
// reposición rápida debe cerrarla igual, sin abortar el cierre de las demás.
func TestCreateQuick_CierraAlertasDescartadasDelFeed(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 0, 10, 30)
	ctx := context.Background()

	item, _ := f.items.GetByID("i1")
	require.NoError(t, f.notifier.EvaluateStockLevel(ctx, item))
	var alertID string
	for id := range f.recent.Rows {
		alertID = id
	}
	require.NoError(t, f.notifier.Dismiss(ctx, alertID))

	_, err := f.uc.CreateQuick(ctx, companyID, userID, dto.QuickReorderRequest{
		ItemID: "i1", Quantity: 20,
	})
	require.NoError(t, err)

	require.Contains(t, f.archive.Rows, alertID)
	assert.True(t, f.archive.Rows[alertID].Read, "la alerta archivada queda leída")
}

func TestCreateQuick_ValidaEntrada(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 0, 10, 30)

	_, err := f.uc.CreateQuick(context.Background(), companyID, userID, dto.QuickReorderRequest{ItemID: "i1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad obligatoria")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reposición masiva
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBulk_UnaCompraPorProveedor(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedSupplier("s-2", "Proveedor Dos")
	f.seedItem("i1", 1, 10, 30) // preferido s-1
	f.seedItem("i2", 2, 10, 30) // preferido s-1
	f.seedItem("i3", 3, 10, 30) // se sobreescribe a s-2

	result, err := f.uc.CreateBulk(context.Background(), companyID, userID, dto.BulkReorderRequest{
		Lines: []dto.BulkReorderLine{
			{ItemID: "i1", Quantity: 5},
			{ItemID: "i2", Quantity: 6},
			{ItemID: "i3", Quantity: 7, SupplierID: "s-2"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.PurchaseIDs, 2, "una orden de compra por proveedor")
	assert.Len(t, result.ReorderIDs, 3, "una solicitud por ítem")

	for _, id := range result.ReorderIDs {
		r, err := f.reorders.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, entity.ReorderOrdered, r.Status, "las solicitudes masivas nacen ya ordenadas")
		assert.NotEmpty(t, r.PurchaseID)
		assert.Contains(t, result.PurchaseIDs, r.PurchaseID)
	}
	for _, id := range []string{"i1", "i2", "i3"} {
		assert.Equal(t, entity.ReorderStatusOrdered, f.items.Items[id].ReorderStatus)
	}

	// La orden de s-1 agrupa sus dos líneas.
	var forS1 *entity.Purchase
	for _, id := range result.PurchaseIDs {
		p, _ := f.purchases.GetByID(id)
		if p.SupplierID == "s-1" {
			forS1 = p
		}
	}
	require.NotNil(t, forS1)
	assert.Len(t, forS1.Items, 2)
	assert.True(t, forS1.Subtotal.Equal(decimal.NewFromInt(440)), "(5+6) * costo 40")
}

func TestCreateBulk_SinProveedorResoluble(t *testing.T) {
	f := newFixture()
	f.items.Seed(&entity.StockItem{
		ID: "i1", CompanyID: companyID, SKU: "SKU-i1", Name: "Huérfano",
		Quantity: 1, ReorderLevel: 10, Cost: decimal.NewFromInt(40),
	})

	_, err := f.uc.CreateBulk(context.Background(), companyID, userID, dto.BulkReorderRequest{
		Lines: []dto.BulkReorderLine{{ItemID: "i1", Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ítem sin proveedor explícito ni preferido")
}

func TestCreateBulk_ProveedorInexistente(t *testing.T) {
	f := newFixture()
	f.seedItem("i1", 1, 10, 30)

	_, err := f.uc.CreateBulk(context.Background(), companyID, userID, dto.BulkReorderRequest{
		Lines: []dto.BulkReorderLine{{ItemID: "i1", Quantity: 5, SupplierID: "fantasma"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consecutivos y costo
// ──────────────────────────────────────────────────────────────────────────────

func TestNumeracionSecuencial(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r1, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	require.NoError(t, f.uc.Cancel(ctx, companyID, userID, r1.ID))
	r2, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	assert.Equal(t, "RO-000001", r1.Number)
	assert.Equal(t, "RO-000002", r2.Number, "el consecutivo no se reutiliza tras cancelar")
}

// El costo de la orden generada usa el último precio de compra del ítem cuando
// existe, en lugar del costo de catálogo.
func TestCreatePurchaseFromReorder_UltimoCostoDeCompra(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	require.NoError(t, f.purchases.Create(&entity.Purchase{
		ID: "p-old", CompanyID: companyID, Number: "PC-000099", Status: entity.PurchaseStatusReceived,
		Items: []entity.PurchaseItem{{ItemID: "i1", Quantity: 10, UnitCost: decimal.NewFromInt(37)}},
	}))

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	require.NoError(t, err)

	purchase, err := f.uc.CreatePurchaseFromReorder(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	assert.True(t, purchase.Items[0].UnitCost.Equal(decimal.NewFromInt(37)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Disparador cruzado: compra recibida → solicitud resuelta
// ──────────────────────────────────────────────────────────────────────────────

func TestOnPurchaseReceived_ResuelveSinDobleConteo(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	purchase, err := f.uc.CreatePurchaseFromReorder(ctx, companyID, userID, r.ID)
	require.NoError(t, err)

	// El colaborador de compras ya incrementó el stock al recibir la orden;
	// el disparador solo resuelve la solicitud.
	require.NoError(t, f.items.IncrementStock("i1", 30))
	require.NoError(t, f.purchases.UpdateStatus(purchase.ID, entity.PurchaseStatusReceived))
	received, _ := f.purchases.GetByID(purchase.ID)

	require.NoError(t, f.uc.OnPurchaseReceived(ctx, received))

	stored, _ := f.reorders.GetByID(r.ID)
	assert.Equal(t, entity.ReorderReceived, stored.Status)
	assert.Equal(t, 30, stored.ReceivedQty)
	assert.Equal(t, "system", stored.ResolvedBy)
	assert.Equal(t, 32, f.items.Items["i1"].Quantity, "el stock entró una sola vez")
	assert.Equal(t, entity.ReorderStatusNone, f.items.Items["i1"].ReorderStatus)
	assert.NotNil(t, f.items.Items["i1"].LastReorderDate)
}

// La resolución del disparador es todo o nada: si la transacción falla, la
// solicitud sigue ordered y el ítem conserva su vinculación para reintentar.
func TestOnPurchaseReceived_ResolucionAtomica(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	purchase, err := f.uc.CreatePurchaseFromReorder(ctx, companyID, userID, r.ID)
	require.NoError(t, err)
	require.NoError(t, f.purchases.UpdateStatus(purchase.ID, entity.PurchaseStatusReceived))
	received, _ := f.purchases.GetByID(purchase.ID)

	f.tx.Err = errors.New("transacción caída")
	require.Error(t, f.uc.OnPurchaseReceived(ctx, received))

	stored, _ := f.reorders.GetByID(r.ID)
	assert.Equal(t, entity.ReorderOrdered, stored.Status, "la solicitud queda localizable para reintento")
	assert.Equal(t, entity.ReorderStatusOrdered, f.items.Items["i1"].ReorderStatus)

	f.tx.Err = nil
	require.NoError(t, f.uc.OnPurchaseReceived(ctx, received))
	stored, _ = f.reorders.GetByID(r.ID)
	assert.Equal(t, entity.ReorderReceived, stored.Status)
	assert.Equal(t, entity.ReorderStatusNone, f.items.Items["i1"].ReorderStatus)
}

// Una compra directa, sin solicitud vinculada, no es un error del disparador.
func TestOnPurchaseReceived_SinSolicitudVinculada(t *testing.T) {
	f := newFixture()
	p := &entity.Purchase{ID: "p-directa", CompanyID: companyID, Status: entity.PurchaseStatusReceived}
	require.NoError(t, f.purchases.Create(p))

	assert.NoError(t, f.uc.OnPurchaseReceived(context.Background(), p))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedad ajena
// ──────────────────────────────────────────────────────────────────────────────

func TestOperacionesSobreSolicitudAjena(t *testing.T) {
	f := newFixture()
	f.seedSupplier("s-1", "Proveedor Uno")
	f.seedItem("i1", 2, 10, 30)
	ctx := context.Background()

	r, err := f.uc.Create(ctx, companyID, userID, dto.CreateReorderRequest{ItemID: "i1"})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, "otra-empresa", userID, r.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = f.uc.Cancel(ctx, "otra-empresa", userID, r.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Get(ctx, "otra-empresa", r.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
