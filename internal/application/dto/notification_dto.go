package dto

import (
	"encoding/json"
	"time"
)

// NotificationDTO representación de una notificación en respuestas.
type NotificationDTO struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Read        bool            `json:"read"`
	RelatedID   string          `json:"related_id,omitempty"`
	RelatedType string          `json:"related_type,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecentNotificationsDTO respuesta del feed reciente: siempre acotado a las 7
// más nuevas, con el total y la bandera de "hay más".
type RecentNotificationsDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int               `json:"total"`
	HasMore       bool              `json:"has_more"`
}

// ArchiveNotificationsDTO respuesta del archivo paginado.
type ArchiveNotificationsDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int               `json:"total"`
	Page          PageResponse      `json:"page"`
}

// UnreadCountDTO respuesta de GET /api/notifications/unread-count.
type UnreadCountDTO struct {
	Count int `json:"count"`
}
