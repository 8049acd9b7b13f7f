package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// NotificationHandler maneja las peticiones HTTP de notificaciones (protegido).
// El feed reciente y el archivo son dos vistas de la misma notificación; las
// operaciones de lectura se propagan entre ambas en el caso de uso.
type NotificationHandler struct {
	uc *notification.UseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *notification.UseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// ListRecent godoc
// @Summary      Feed reciente de notificaciones
// @Description  Devuelve las 7 más nuevas, el total y la bandera de "hay más".
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        read  query  bool  false  "Filtrar por leída/no leída"
// @Success      200  {object}  dto.RecentNotificationsDTO
// @Router       /api/notifications/recent [get]
func (h *NotificationHandler) ListRecent(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	read := parseOptionalBool(c.Query("read"))
	out, err := h.uc.ListRecent(c.Context(), companyID, read)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListArchive godoc
// @Summary      Archivo de notificaciones
// @Description  Historial completo paginado. Antes de listar ejecuta el barrido
//
//	de reconciliación que repone en el archivo las notificaciones
//	que solo existen en el feed reciente.
//
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        read    query  bool    false  "Filtrar por leída/no leída"
// @Param        kind    query  string  false  "Filtrar por tipo"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.ArchiveNotificationsDTO
// @Router       /api/notifications/archive [get]
func (h *NotificationHandler) ListArchive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	filter := repository.NotificationFilter{
		Read:   parseOptionalBool(c.Query("read")),
		Kind:   c.Query("kind"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	out, err := h.uc.ListArchive(c.Context(), companyID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// UnreadCount godoc
// @Summary      Conteo de no leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UnreadCountDTO
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	count, err := h.uc.UnreadCount(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.UnreadCountDTO{Count: count})
}

// MarkRead godoc
// @Summary      Marcar notificación como leída (ambas vistas)
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.MarkRead(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "notificación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "notificación leída"})
}

// MarkAllReadRecent godoc
// @Summary      Marcar todo el feed reciente como leído
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllReadRecent(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.MarkAllReadRecent(c.Context(), companyID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "feed marcado como leído"})
}

// MarkAllReadArchive godoc
// @Summary      Marcar todo el archivo como leído
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/notifications/archive/read-all [post]
func (h *NotificationHandler) MarkAllReadArchive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.MarkAllReadArchive(c.Context(), companyID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "archivo marcado como leído"})
}

// Dismiss godoc
// @Summary      Descartar del feed reciente
// @Description  Elimina la notificación del feed; el archivo conserva su copia
//
//	con la marca de descartada.
//
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Dismiss(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Dismiss(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "notificación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "notificación descartada del feed"})
}

// DeletePermanent godoc
// @Summary      Borrado permanente (ambas vistas)
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/permanent [delete]
func (h *NotificationHandler) DeletePermanent(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.DeletePermanent(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "notificación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "notificación eliminada permanentemente"})
}

// DeleteAllReadRecent godoc
// @Summary      Descartar todas las leídas del feed
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notifications/read [delete]
func (h *NotificationHandler) DeleteAllReadRecent(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	n, err := h.uc.DeleteAllReadRecent(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": n})
}

// DeleteAllReadArchive godoc
// @Summary      Borrar permanentemente todas las leídas del archivo
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notifications/archive/read [delete]
func (h *NotificationHandler) DeleteAllReadArchive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	n, err := h.uc.DeleteAllReadArchive(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": n})
}

// Sync godoc
// @Summary      Reconciliar feed reciente y archivo
// @Description  Repone en el archivo las notificaciones que solo existen en el
//
//	feed (recuperación tras fallas de escritura). Idempotente.
//
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/notifications/sync [post]
func (h *NotificationHandler) Sync(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	n, err := h.uc.SyncMissingToArchive(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"synced": n})
}

func parseOptionalBool(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
