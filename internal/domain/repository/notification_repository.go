package repository

import "github.com/jhoicas/Comercial-api/internal/domain/entity"

// NotificationFilter filtro de listados de notificaciones.
type NotificationFilter struct {
	Read   *bool // nil = todas
	Kind   string
	Limit  int
	Offset int
}

// RecentNotificationRepository proyección "reciente": feed acotado de
// actividad. El descarte elimina la fila de esta vista solamente.
type RecentNotificationRepository interface {
	Create(n *entity.Notification) error
	GetByID(id string) (*entity.Notification, error)
	// List devuelve hasta f.Limit filas más recientes y el total que matchea.
	List(companyID string, f NotificationFilter) ([]*entity.Notification, int, error)
	ListReadIDs(companyID string) ([]string, error)
	ListUnreadIDs(companyID string) ([]string, error)
	ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error)
	ExistsUnread(companyID, kind, relatedID string) (bool, error)
	MarkRead(id string) error
	Delete(id string) error
}

// ArchivedNotificationRepository proyección de archivo: sin límite, soporta
// borrado permanente y la marca de descartada-del-feed.
type ArchivedNotificationRepository interface {
	Create(n *entity.ArchivedNotification) error
	GetByID(id string) (*entity.ArchivedNotification, error)
	List(companyID string, f NotificationFilter) ([]*entity.ArchivedNotification, int, error)
	ListReadIDs(companyID string) ([]string, error)
	ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error)
	ExistsUnread(companyID, kind, relatedID string) (bool, error)
	CountUnread(companyID string) (int, error)
	MarkRead(id string) error
	MarkReadMany(ids []string) error
	MarkAllRead(companyID string) ([]string, error)
	SetDismissed(id string) error
	Delete(id string) error

	// MissingIDs devuelve los IDs presentes en la vista reciente que faltan en
	// el archivo (barrido de reconciliación idempotente).
	MissingIDs(companyID string) ([]string, error)
}
