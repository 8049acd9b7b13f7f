package notification_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Comercial-api/internal/application/apptest"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

const companyID = "co-1"

func newNotifUC() (*notification.UseCase, *apptest.RecentNotificationRepo, *apptest.ArchivedNotificationRepo) {
	recent, archive := apptest.NewNotificationStores()
	return notification.NewUseCase(recent, archive), recent, archive
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de doble escritura
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EscribeAmbasProyecciones(t *testing.T) {
	uc, recent, archive := newNotifUC()

	n, err := uc.Create(context.Background(), companyID, notification.Input{
		Kind:    entity.NotifSystem,
		Title:   "Hola",
		Message: "mensaje",
	})
	require.NoError(t, err)

	assert.Contains(t, recent.Rows, n.ID, "la vista reciente debe tener la fila")
	assert.Contains(t, archive.Rows, n.ID, "el archivo debe tener la misma identidad")
	assert.False(t, archive.Rows[n.ID].DismissedFromLayoutBar)
}

// La falla de la escritura del archivo no tumba la creación; el barrido de
// reconciliación repone la fila faltante después.
func TestCreate_FallaDeArchivoEsRecuperable(t *testing.T) {
	uc, recent, archive := newNotifUC()
	archive.CreateErr = fmt.Errorf("archivo caído")

	n, err := uc.Create(context.Background(), companyID, notification.Input{
		Kind: entity.NotifSystem, Title: "t", Message: "m",
	})
	require.NoError(t, err, "la creación sobrevive a la falla del archivo")
	assert.Contains(t, recent.Rows, n.ID)
	assert.NotContains(t, archive.Rows, n.ID)

	archive.CreateErr = nil
	synced, err := uc.SyncMissingToArchive(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, synced, "el barrido debe reponer exactamente la fila perdida")
	assert.Contains(t, archive.Rows, n.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas de nivel de stock
// ──────────────────────────────────────────────────────────────────────────────

func stockItem(id string, qty, level int) *entity.StockItem {
	return &entity.StockItem{
		ID: id, CompanyID: companyID, SKU: "SKU-" + id, Name: "Ítem " + id,
		Quantity: qty, ReorderLevel: level,
	}
}

func TestEvaluateStockLevel_Agotado(t *testing.T) {
	uc, recent, _ := newNotifUC()

	require.NoError(t, uc.EvaluateStockLevel(context.Background(), stockItem("i1", 0, 5)))

	require.Len(t, recent.Rows, 1)
	for _, n := range recent.Rows {
		assert.Equal(t, entity.NotifOutOfStock, n.Kind)
		assert.Equal(t, "i1", n.RelatedID)
		assert.Equal(t, "stock_item", n.RelatedType)
		assert.JSONEq(t, `{"quantity":0,"reorder_level":5,"sku":"SKU-i1"}`, string(n.Metadata))
	}
}

func TestEvaluateStockLevel_BajoUmbral(t *testing.T) {
	uc, recent, _ := newNotifUC()

	require.NoError(t, uc.EvaluateStockLevel(context.Background(), stockItem("i1", 3, 5)))

	require.Len(t, recent.Rows, 1)
	for _, n := range recent.Rows {
		assert.Equal(t, entity.NotifLowStock, n.Kind)
	}
}

func TestEvaluateStockLevel_SobreUmbralNoAlerta(t *testing.T) {
	uc, recent, archive := newNotifUC()

	require.NoError(t, uc.EvaluateStockLevel(context.Background(), stockItem("i1", 10, 5)))

	assert.Empty(t, recent.Rows)
	assert.Empty(t, archive.Rows)
}

// Una alerta no leída del mismo tipo para el mismo ítem suprime la creación,
// aun cuando solo sobrevive en el archivo (ya descartada del feed).
func TestEvaluateStockLevel_DeduplicaNoLeidas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()
	item := stockItem("i1", 0, 5)

	require.NoError(t, uc.EvaluateStockLevel(ctx, item))
	require.NoError(t, uc.EvaluateStockLevel(ctx, item))
	assert.Len(t, archive.Rows, 1, "la segunda evaluación no debe duplicar la alerta")

	// Descartada del feed: la deduplicación sigue viendo la copia archivada.
	var id string
	for k := range recent.Rows {
		id = k
	}
	require.NoError(t, uc.Dismiss(ctx, id))
	require.NoError(t, uc.EvaluateStockLevel(ctx, item))
	assert.Empty(t, recent.Rows, "la alerta archivada no leída sigue suprimiendo")
	assert.Len(t, archive.Rows, 1)
}

// Marcar leída la alerta rehabilita la siguiente: solo las NO leídas deduplican.
func TestEvaluateStockLevel_LeidaNoSuprime(t *testing.T) {
	uc, _, archive := newNotifUC()
	ctx := context.Background()
	item := stockItem("i1", 0, 5)

	require.NoError(t, uc.EvaluateStockLevel(ctx, item))
	var id string
	for k := range archive.Rows {
		id = k
	}
	require.NoError(t, uc.MarkRead(ctx, id))

	require.NoError(t, uc.EvaluateStockLevel(ctx, item))
	assert.Len(t, archive.Rows, 2, "leída la anterior, la nueva alerta debe crearse")
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados
// ──────────────────────────────────────────────────────────────────────────────

func TestListRecent_SiempreAcotadoASiete(t *testing.T) {
	uc, _, _ := newNotifUC()
	ctx := context.Background()
	for i := 0; i < 9; i++ {
		_, err := uc.Create(ctx, companyID, notification.Input{
			Kind: entity.NotifSystem, Title: fmt.Sprintf("n%d", i), Message: "m",
		})
		require.NoError(t, err)
	}

	out, err := uc.ListRecent(ctx, companyID, nil)
	require.NoError(t, err)

	assert.Len(t, out.Notifications, notification.RecentFeedCap)
	assert.Equal(t, 9, out.Total)
	assert.True(t, out.HasMore)
	assert.Equal(t, "n8", out.Notifications[0].Title, "la más nueva va primero")
}

func TestListArchive_BarridoAntesDeLeer(t *testing.T) {
	uc, _, archive := newNotifUC()
	ctx := context.Background()

	archive.CreateErr = fmt.Errorf("archivo caído")
	_, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "perdida", Message: "m"})
	require.NoError(t, err)
	archive.CreateErr = nil
	_, err = uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "sana", Message: "m"})
	require.NoError(t, err)

	out, err := uc.ListArchive(ctx, companyID, repository.NotificationFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total, "el barrido debe reponer la fila perdida antes de listar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas y borrados cruzados
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkRead_PropagaYToleraDescartadas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	n, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, uc.MarkRead(ctx, n.ID))
	assert.True(t, recent.Rows[n.ID].Read)
	assert.True(t, archive.Rows[n.ID].Read)

	// Ya descartada del feed: marcar leída no debe fallar.
	n2, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t2", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, uc.Dismiss(ctx, n2.ID))
	require.NoError(t, uc.MarkRead(ctx, n2.ID))
	assert.True(t, archive.Rows[n2.ID].Read)
}

func TestMarkAllReadRecent_PropagaAlArchivo(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t", Message: "m"})
		require.NoError(t, err)
	}

	require.NoError(t, uc.MarkAllReadRecent(ctx, companyID))

	for id, n := range recent.Rows {
		assert.True(t, n.Read, "reciente %s debe quedar leída", id)
		assert.True(t, archive.Rows[id].Read, "archivo %s debe quedar leído", id)
	}
}

func TestMarkAllReadArchive_IncluyeDescartadas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	n1, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t1", Message: "m"})
	require.NoError(t, err)
	n2, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t2", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, uc.Dismiss(ctx, n1.ID))

	require.NoError(t, uc.MarkAllReadArchive(ctx, companyID))

	assert.True(t, archive.Rows[n1.ID].Read, "la descartada del feed también se marca en el archivo")
	assert.True(t, archive.Rows[n2.ID].Read)
	assert.True(t, recent.Rows[n2.ID].Read, "la viva en el feed se propaga")
}

func TestMarkRelatedRead_UneAmbasVistas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	// Alerta viva en ambas vistas.
	a, err := uc.Create(ctx, companyID, notification.Input{
		Kind: entity.NotifLowStock, Title: "t", Message: "m", RelatedID: "i1", RelatedType: "stock_item",
	})
	require.NoError(t, err)
	// Alerta solo archivada (descartada del feed).
	b, err := uc.Create(ctx, companyID, notification.Input{
		Kind: entity.NotifOutOfStock, Title: "t", Message: "m", RelatedID: "i1", RelatedType: "stock_item",
	})
	require.NoError(t, err)
	require.NoError(t, uc.Dismiss(ctx, b.ID))
	// Alerta de otro tipo para el mismo ítem: no debe tocarse.
	c, err := uc.Create(ctx, companyID, notification.Input{
		Kind: entity.NotifReorderCreated, Title: "t", Message: "m", RelatedID: "i1", RelatedType: "reorder",
	})
	require.NoError(t, err)

	require.NoError(t, uc.MarkRelatedRead(ctx, companyID, "i1",
		[]string{entity.NotifLowStock, entity.NotifOutOfStock}))

	assert.True(t, recent.Rows[a.ID].Read)
	assert.True(t, archive.Rows[a.ID].Read)
	assert.True(t, archive.Rows[b.ID].Read, "la alerta solo archivada también se cierra")
	assert.False(t, archive.Rows[c.ID].Read, "otros tipos quedan intactos")
}

func TestDismiss_ConservaElArchivo(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	n, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, uc.Dismiss(ctx, n.ID))

	assert.NotContains(t, recent.Rows, n.ID, "el descarte elimina la fila del feed")
	require.Contains(t, archive.Rows, n.ID, "el archivo conserva la suya")
	assert.True(t, archive.Rows[n.ID].DismissedFromLayoutBar)
}

func TestDeletePermanent_EliminaAmbas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	n, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, uc.DeletePermanent(ctx, n.ID))
	assert.NotContains(t, recent.Rows, n.ID)
	assert.NotContains(t, archive.Rows, n.ID)
}

func TestDeleteAllReadRecent_DescartaSoloLeidas(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	read, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "leída", Message: "m"})
	require.NoError(t, err)
	unread, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "no leída", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, uc.MarkRead(ctx, read.ID))

	deleted, err := uc.DeleteAllReadRecent(ctx, companyID)
	require.NoError(t, err)

	assert.Equal(t, 1, deleted)
	assert.NotContains(t, recent.Rows, read.ID)
	assert.Contains(t, recent.Rows, unread.ID, "las no leídas sobreviven en el feed")
	assert.True(t, archive.Rows[read.ID].DismissedFromLayoutBar, "la leída queda archivada con descarte")
}

func TestDeleteAllReadArchive_BorraPermanente(t *testing.T) {
	uc, recent, archive := newNotifUC()
	ctx := context.Background()

	read, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "leída", Message: "m"})
	require.NoError(t, err)
	unread, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "no leída", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, uc.MarkRead(ctx, read.ID))

	deleted, err := uc.DeleteAllReadArchive(ctx, companyID)
	require.NoError(t, err)

	assert.Equal(t, 1, deleted)
	assert.NotContains(t, archive.Rows, read.ID)
	assert.NotContains(t, recent.Rows, read.ID, "la contraparte reciente también cae")
	assert.Contains(t, archive.Rows, unread.ID)
}

func TestUnreadCount_SobreElArchivo(t *testing.T) {
	uc, _, _ := newNotifUC()
	ctx := context.Background()

	n1, err := uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t1", Message: "m"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, companyID, notification.Input{Kind: entity.NotifSystem, Title: "t2", Message: "m"})
	require.NoError(t, err)
	// Descartar del feed no la saca del conteo: el archivo manda.
	require.NoError(t, uc.Dismiss(ctx, n1.ID))

	count, err := uc.UnreadCount(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
