package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

var _ repository.RecentNotificationRepository = (*RecentNotificationRepo)(nil)
var _ repository.ArchivedNotificationRepository = (*ArchivedNotificationRepo)(nil)

const notificationColumns = `
	id, company_id, kind, title, message, read, related_id, related_type,
	metadata, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// Vista reciente
// ─────────────────────────────────────────────────────────────────────────────

// RecentNotificationRepo proyección "reciente" sobre PostgreSQL. El descarte
// borra la fila de esta tabla solamente; el archivo conserva su copia.
type RecentNotificationRepo struct {
	q Querier
}

// NewRecentNotificationRepository construye el adaptador de la vista reciente.
func NewRecentNotificationRepository(q Querier) *RecentNotificationRepo {
	return &RecentNotificationRepo{q: q}
}

// Create inserta una notificación en la vista reciente.
func (r *RecentNotificationRepo) Create(n *entity.Notification) error {
	query := `
		INSERT INTO recent_notifications (
			id, company_id, kind, title, message, read, related_id, related_type,
			metadata, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.CompanyID, n.Kind, n.Title, n.Message, n.Read,
		n.RelatedID, n.RelatedType, n.Metadata,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create recent notification: %w", err)
	}
	return nil
}

// GetByID obtiene una notificación de la vista reciente.
func (r *RecentNotificationRepo) GetByID(id string) (*entity.Notification, error) {
	query := `SELECT` + notificationColumns + ` FROM recent_notifications WHERE id = $1`
	n, err := scanNotification(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get recent notification: %w", err)
	}
	return n, nil
}

// List devuelve hasta f.Limit filas más recientes y el total que matchea el filtro.
func (r *RecentNotificationRepo) List(companyID string, f repository.NotificationFilter) ([]*entity.Notification, int, error) {
	ctx := context.Background()
	where := ` WHERE company_id = $1 AND ($2 = '' OR kind = $2) AND ($3::bool IS NULL OR read = $3)`

	var total int
	countQuery := `SELECT COUNT(*) FROM recent_notifications` + where
	if err := r.q.QueryRow(ctx, countQuery, companyID, f.Kind, f.Read).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recent notifications: %w", err)
	}

	query := `SELECT` + notificationColumns + ` FROM recent_notifications` + where + `
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, companyID, f.Kind, f.Read, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list recent notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recent notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate recent notifications: %w", err)
	}
	return list, total, nil
}

// ListReadIDs devuelve los IDs leídos de la vista reciente.
func (r *RecentNotificationRepo) ListReadIDs(companyID string) ([]string, error) {
	return r.listIDs(companyID, true)
}

// ListUnreadIDs devuelve los IDs no leídos de la vista reciente.
func (r *RecentNotificationRepo) ListUnreadIDs(companyID string) ([]string, error) {
	return r.listIDs(companyID, false)
}

func (r *RecentNotificationRepo) listIDs(companyID string, read bool) ([]string, error) {
	query := `SELECT id FROM recent_notifications WHERE company_id = $1 AND read = $2`
	rows, err := r.q.Query(context.Background(), query, companyID, read)
	if err != nil {
		return nil, fmt.Errorf("list recent notification ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ListUnreadIDsByRelated devuelve los IDs no leídos vinculados a una entidad,
// restringidos a los tipos dados.
func (r *RecentNotificationRepo) ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error) {
	query := `
		SELECT id FROM recent_notifications
		WHERE company_id = $1 AND related_id = $2 AND NOT read AND kind = ANY($3)`
	rows, err := r.q.Query(context.Background(), query, companyID, relatedID, kinds)
	if err != nil {
		return nil, fmt.Errorf("list recent unread by related: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ExistsUnread indica si ya hay una alerta no leída del mismo tipo para la
// misma entidad (deduplicación de alertas de stock).
func (r *RecentNotificationRepo) ExistsUnread(companyID, kind, relatedID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM recent_notifications
			WHERE company_id = $1 AND kind = $2 AND related_id = $3 AND NOT read
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, companyID, kind, relatedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists unread recent: %w", err)
	}
	return exists, nil
}

// MarkRead marca una notificación como leída.
func (r *RecentNotificationRepo) MarkRead(id string) error {
	query := `UPDATE recent_notifications SET read = true, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark recent read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la notificación de la vista reciente (descarte del feed).
func (r *RecentNotificationRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM recent_notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recent notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Archivo
// ─────────────────────────────────────────────────────────────────────────────

// ArchivedNotificationRepo proyección de archivo sobre PostgreSQL: sin límite,
// soporta borrado permanente y la marca de descartada-del-feed.
type ArchivedNotificationRepo struct {
	q Querier
}

// NewArchivedNotificationRepository construye el adaptador del archivo.
func NewArchivedNotificationRepository(q Querier) *ArchivedNotificationRepo {
	return &ArchivedNotificationRepo{q: q}
}

const archivedColumns = `
	id, company_id, kind, title, message, read, related_id, related_type,
	metadata, dismissed_from_layout_bar, created_at, updated_at`

func scanArchived(row pgx.Row) (*entity.ArchivedNotification, error) {
	var n entity.ArchivedNotification
	err := row.Scan(
		&n.ID, &n.CompanyID, &n.Kind, &n.Title, &n.Message, &n.Read,
		&n.RelatedID, &n.RelatedType, &n.Metadata, &n.DismissedFromLayoutBar,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserta una notificación en el archivo (misma identidad que la reciente).
func (r *ArchivedNotificationRepo) Create(n *entity.ArchivedNotification) error {
	query := `
		INSERT INTO archived_notifications (
			id, company_id, kind, title, message, read, related_id, related_type,
			metadata, dismissed_from_layout_bar, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.CompanyID, n.Kind, n.Title, n.Message, n.Read,
		n.RelatedID, n.RelatedType, n.Metadata, n.DismissedFromLayoutBar, n.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create archived notification: %w", err)
	}
	return nil
}

// GetByID obtiene una notificación del archivo.
func (r *ArchivedNotificationRepo) GetByID(id string) (*entity.ArchivedNotification, error) {
	query := `SELECT` + archivedColumns + ` FROM archived_notifications WHERE id = $1`
	n, err := scanArchived(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get archived notification: %w", err)
	}
	return n, nil
}

// List lista el archivo con filtros y paginación, devolviendo también el total.
func (r *ArchivedNotificationRepo) List(companyID string, f repository.NotificationFilter) ([]*entity.ArchivedNotification, int, error) {
	ctx := context.Background()
	where := ` WHERE company_id = $1 AND ($2 = '' OR kind = $2) AND ($3::bool IS NULL OR read = $3)`

	var total int
	countQuery := `SELECT COUNT(*) FROM archived_notifications` + where
	if err := r.q.QueryRow(ctx, countQuery, companyID, f.Kind, f.Read).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count archived notifications: %w", err)
	}

	query := `SELECT` + archivedColumns + ` FROM archived_notifications` + where + `
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, companyID, f.Kind, f.Read, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list archived notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.ArchivedNotification
	for rows.Next() {
		n, err := scanArchived(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan archived notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate archived notifications: %w", err)
	}
	return list, total, nil
}

// ListReadIDs devuelve los IDs leídos del archivo.
func (r *ArchivedNotificationRepo) ListReadIDs(companyID string) ([]string, error) {
	query := `SELECT id FROM archived_notifications WHERE company_id = $1 AND read`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list archived read ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ListUnreadIDsByRelated devuelve los IDs no leídos vinculados a una entidad.
func (r *ArchivedNotificationRepo) ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error) {
	query := `
		SELECT id FROM archived_notifications
		WHERE company_id = $1 AND related_id = $2 AND NOT read AND kind = ANY($3)`
	rows, err := r.q.Query(context.Background(), query, companyID, relatedID, kinds)
	if err != nil {
		return nil, fmt.Errorf("list archived unread by related: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// ExistsUnread indica si hay una alerta no leída del mismo tipo y entidad en el archivo.
func (r *ArchivedNotificationRepo) ExistsUnread(companyID, kind, relatedID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM archived_notifications
			WHERE company_id = $1 AND kind = $2 AND related_id = $3 AND NOT read
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, companyID, kind, relatedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists unread archived: %w", err)
	}
	return exists, nil
}

// CountUnread cuenta las no leídas del archivo (badge del layout).
func (r *ArchivedNotificationRepo) CountUnread(companyID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM archived_notifications WHERE company_id = $1 AND NOT read`
	if err := r.q.QueryRow(context.Background(), query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread archived: %w", err)
	}
	return count, nil
}

// MarkRead marca una notificación del archivo como leída.
func (r *ArchivedNotificationRepo) MarkRead(id string) error {
	query := `UPDATE archived_notifications SET read = true, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark archived read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkReadMany marca varias notificaciones del archivo como leídas.
func (r *ArchivedNotificationRepo) MarkReadMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE archived_notifications SET read = true, updated_at = now() WHERE id = ANY($1)`
	if _, err := r.q.Exec(context.Background(), query, ids); err != nil {
		return fmt.Errorf("mark archived read many: %w", err)
	}
	return nil
}

// MarkAllRead marca todas las no leídas de la empresa y devuelve sus IDs
// (para propagar a la vista reciente).
func (r *ArchivedNotificationRepo) MarkAllRead(companyID string) ([]string, error) {
	query := `
		UPDATE archived_notifications SET read = true, updated_at = now()
		WHERE company_id = $1 AND NOT read
		RETURNING id`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("mark all archived read: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

// SetDismissed marca la notificación como descartada del feed (conserva la fila).
func (r *ArchivedNotificationRepo) SetDismissed(id string) error {
	query := `UPDATE archived_notifications SET dismissed_from_layout_bar = true, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("set dismissed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra permanentemente la notificación del archivo.
func (r *ArchivedNotificationRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM archived_notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete archived notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MissingIDs devuelve los IDs presentes en la vista reciente que faltan en el
// archivo (anti-join). Alimenta el barrido de reconciliación idempotente.
func (r *ArchivedNotificationRepo) MissingIDs(companyID string) ([]string, error) {
	query := `
		SELECT rn.id FROM recent_notifications rn
		LEFT JOIN archived_notifications an ON an.id = rn.id
		WHERE rn.company_id = $1 AND an.id IS NULL`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("missing archived ids: %w", err)
	}
	defer rows.Close()
	return collectIDs(rows)
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(
		&n.ID, &n.CompanyID, &n.Kind, &n.Title, &n.Message, &n.Read,
		&n.RelatedID, &n.RelatedType, &n.Metadata, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
