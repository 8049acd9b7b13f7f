// Package notification implementa el sincronizador de doble vista de alertas:
// un feed "reciente" acotado y un archivo sin límite que comparten identidad.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// RecentFeedCap tamaño fijo del feed reciente.
const RecentFeedCap = 7

// UseCase coordina las dos proyecciones de notificaciones. Las dos escrituras
// de la creación no son transaccionales entre sí: si falla la del archivo, el
// barrido SyncMissingToArchive la repone antes de cualquier lectura del
// archivo.
type UseCase struct {
	recent  repository.RecentNotificationRepository
	archive repository.ArchivedNotificationRepository
}

// NewUseCase construye el sincronizador.
func NewUseCase(
	recent repository.RecentNotificationRepository,
	archive repository.ArchivedNotificationRepository,
) *UseCase {
	return &UseCase{recent: recent, archive: archive}
}

// Input datos para crear una notificación.
type Input struct {
	Kind        string
	Title       string
	Message     string
	RelatedID   string
	RelatedType string
	Metadata    json.RawMessage
}

// Create asigna una sola identidad y escribe ambas proyecciones. La escritura
// del archivo es recuperable: si falla, se registra y la creación se considera
// exitosa (el barrido la repone).
func (uc *UseCase) Create(ctx context.Context, companyID string, in Input) (*entity.Notification, error) {
	now := time.Now()
	n := &entity.Notification{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Kind:        in.Kind,
		Title:       in.Title,
		Message:     in.Message,
		RelatedID:   in.RelatedID,
		RelatedType: in.RelatedType,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.recent.Create(n); err != nil {
		return nil, err
	}
	if err := uc.archive.Create(&entity.ArchivedNotification{Notification: *n}); err != nil {
		log.Warn().Err(err).Str("notification_id", n.ID).
			Msg("escritura del archivo de notificaciones falló; se repondrá en el barrido")
	}
	return n, nil
}

// EvaluateStockLevel decide si el nivel de stock del ítem amerita alerta
// (out_of_stock si <= 0, low_stock si <= umbral) y la crea con deduplicación:
// si ya existe una alerta NO leída del mismo tipo para el mismo ítem en
// cualquiera de las dos vistas, se suprime la creación.
func (uc *UseCase) EvaluateStockLevel(ctx context.Context, item *entity.StockItem) error {
	var kind, title, message string
	switch {
	case item.IsOutOfStock():
		kind = entity.NotifOutOfStock
		title = "Producto agotado"
		message = item.Name + " quedó sin existencias"
	case item.IsLowStock():
		kind = entity.NotifLowStock
		title = "Stock bajo"
		message = item.Name + " está en o por debajo de su nivel de reorden"
	default:
		return nil
	}

	dup, err := uc.recent.ExistsUnread(item.CompanyID, kind, item.ID)
	if err != nil {
		return err
	}
	if !dup {
		dup, err = uc.archive.ExistsUnread(item.CompanyID, kind, item.ID)
		if err != nil {
			return err
		}
	}
	if dup {
		return nil
	}

	meta, _ := json.Marshal(map[string]any{
		"quantity":      item.Quantity,
		"reorder_level": item.ReorderLevel,
		"sku":           item.SKU,
	})
	_, err = uc.Create(ctx, item.CompanyID, Input{
		Kind:        kind,
		Title:       title,
		Message:     message,
		RelatedID:   item.ID,
		RelatedType: "stock_item",
		Metadata:    meta,
	})
	return err
}

// ListRecent devuelve el feed reciente: siempre las 7 más nuevas que matchean
// el filtro de lectura, más el total y la bandera de "hay más".
func (uc *UseCase) ListRecent(ctx context.Context, companyID string, read *bool) (dto.RecentNotificationsDTO, error) {
	rows, total, err := uc.recent.List(companyID, repository.NotificationFilter{
		Read:  read,
		Limit: RecentFeedCap,
	})
	if err != nil {
		return dto.RecentNotificationsDTO{}, err
	}
	out := dto.RecentNotificationsDTO{
		Notifications: make([]dto.NotificationDTO, 0, len(rows)),
		Total:         total,
		HasMore:       total > len(rows),
	}
	for _, n := range rows {
		out.Notifications = append(out.Notifications, toDTO(n))
	}
	return out, nil
}

// ListArchive lista el archivo paginado. Antes de leer ejecuta el barrido de
// reconciliación para reponer cualquier identidad que haya quedado solo en la
// vista reciente.
func (uc *UseCase) ListArchive(ctx context.Context, companyID string, f repository.NotificationFilter) (dto.ArchiveNotificationsDTO, error) {
	if _, err := uc.SyncMissingToArchive(ctx, companyID); err != nil {
		log.Warn().Err(err).Msg("barrido de reconciliación de notificaciones falló")
	}

	rows, total, err := uc.archive.List(companyID, f)
	if err != nil {
		return dto.ArchiveNotificationsDTO{}, err
	}
	out := dto.ArchiveNotificationsDTO{
		Notifications: make([]dto.NotificationDTO, 0, len(rows)),
		Total:         total,
		Page:          dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}
	for _, n := range rows {
		out.Notifications = append(out.Notifications, toDTO(&n.Notification))
	}
	return out, nil
}

// SyncMissingToArchive repone en el archivo toda identidad presente en la
// vista reciente que falte allí. Idempotente; pensado para correr de forma
// oportunista antes de cualquier lectura del archivo.
func (uc *UseCase) SyncMissingToArchive(ctx context.Context, companyID string) (int, error) {
	missing, err := uc.archive.MissingIDs(companyID)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, id := range missing {
		n, err := uc.recent.GetByID(id)
		if err != nil {
			continue
		}
		if err := uc.archive.Create(&entity.ArchivedNotification{Notification: *n}); err != nil {
			log.Warn().Err(err).Str("notification_id", id).Msg("backfill de notificación falló")
			continue
		}
		synced++
	}
	return synced, nil
}

// UnreadCount cuenta las no leídas sobre la proyección de archivo.
func (uc *UseCase) UnreadCount(ctx context.Context, companyID string) (int, error) {
	return uc.archive.CountUnread(companyID)
}

// MarkRead marca leída una notificación en ambas proyecciones. La ausencia en
// la vista reciente (ya descartada) no es error.
func (uc *UseCase) MarkRead(ctx context.Context, id string) error {
	recentErr := uc.recent.MarkRead(id)
	if errors.Is(recentErr, domain.ErrNotFound) {
		recentErr = nil
	}
	archiveErr := uc.archive.MarkRead(id)
	if archiveErr != nil {
		return archiveErr
	}
	return recentErr
}

// MarkAllReadRecent marca leídas todas las no leídas del feed reciente y
// propaga el mismo conjunto de IDs al archivo.
func (uc *UseCase) MarkAllReadRecent(ctx context.Context, companyID string) error {
	ids, err := uc.recent.ListUnreadIDs(companyID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := uc.recent.MarkRead(id); err != nil {
			return err
		}
	}
	return uc.archive.MarkReadMany(ids)
}

// MarkAllReadArchive marca leídas todas las no leídas del archivo y propaga al
// feed reciente (que es subconjunto).
func (uc *UseCase) MarkAllReadArchive(ctx context.Context, companyID string) error {
	ids, err := uc.archive.MarkAllRead(companyID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		// Las ya descartadas del feed no están; se ignora.
		_ = uc.recent.MarkRead(id)
	}
	return nil
}

// MarkRelatedRead marca leídas las alertas no leídas de los tipos dados para
// una entidad relacionada, en ambas proyecciones. Lo usa la reposición rápida
// para cerrar las alertas de stock del ítem repuesto.
func (uc *UseCase) MarkRelatedRead(ctx context.Context, companyID, relatedID string, kinds []string) error {
	recentIDs, err := uc.recent.ListUnreadIDsByRelated(companyID, relatedID, kinds)
	if err != nil {
		return err
	}
	archiveIDs, err := uc.archive.ListUnreadIDsByRelated(companyID, relatedID, kinds)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(recentIDs)+len(archiveIDs))
	for _, id := range append(recentIDs, archiveIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := uc.MarkRead(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Dismiss descarta una notificación del feed reciente: la fila reciente se
// elimina y el archivo conserva la suya con la marca de descartada.
func (uc *UseCase) Dismiss(ctx context.Context, id string) error {
	if err := uc.recent.Delete(id); err != nil {
		return err
	}
	if err := uc.archive.SetDismissed(id); err != nil {
		log.Warn().Err(err).Str("notification_id", id).Msg("marca de descarte en archivo falló")
	}
	return nil
}

// DeletePermanent elimina la notificación de AMBAS proyecciones.
func (uc *UseCase) DeletePermanent(ctx context.Context, id string) error {
	// La fila reciente puede no existir si ya fue descartada.
	_ = uc.recent.Delete(id)
	return uc.archive.Delete(id)
}

// DeleteAllReadRecent descarta del feed todas las leídas (variante reciente de
// "borrar leídas"): cada una se elimina del feed y queda archivada con la
// marca de descarte.
func (uc *UseCase) DeleteAllReadRecent(ctx context.Context, companyID string) (int, error) {
	ids, err := uc.recent.ListReadIDs(companyID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := uc.Dismiss(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// DeleteAllReadArchive borra permanentemente todas las leídas del archivo,
// eliminando también su contraparte reciente si sigue viva.
func (uc *UseCase) DeleteAllReadArchive(ctx context.Context, companyID string) (int, error) {
	ids, err := uc.archive.ListReadIDs(companyID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := uc.DeletePermanent(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func toDTO(n *entity.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:          n.ID,
		Kind:        n.Kind,
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
	}
}
