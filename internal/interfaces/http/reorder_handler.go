package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
	"github.com/jhoicas/Comercial-api/internal/application/reorder"
	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// ReorderHandler maneja las peticiones HTTP del motor de reposición (protegido).
type ReorderHandler struct {
	uc        *reorder.UseCase
	analytics *analytics.UseCase
}

// NewReorderHandler construye el handler.
func NewReorderHandler(uc *reorder.UseCase, analyticsUC *analytics.UseCase) *ReorderHandler {
	return &ReorderHandler{uc: uc, analytics: analyticsUC}
}

// Create godoc
// @Summary      Crear solicitud de reposición
// @Description  Crea una solicitud pendiente de aprobación. Si quantity es 0 se
//
//	usa la cantidad sugerida por la analítica de ventas.
//
// @Tags         reorders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReorderRequest  true  "item_id, supplier_id opcional, quantity opcional"
// @Success      201   {object}  dto.ReorderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reorders [post]
func (h *ReorderHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReorderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ro, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReorderDTO(ro))
}

// CreateQuick godoc
// @Summary      Reposición rápida
// @Description  Caso "la mercancía ya está en mano": crea la solicitud ya
//
//	recibida, entra el stock y registra la compra recibida en una
//	sola operación transaccional.
//
// @Tags         reorders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickReorderRequest  true  "item_id, quantity, supplier_id opcional, unit_cost opcional"
// @Success      201   {object}  dto.ReorderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reorders/quick [post]
func (h *ReorderHandler) CreateQuick(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.QuickReorderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ro, err := h.uc.CreateQuick(c.Context(), companyID, userID, in)
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReorderDTO(ro))
}

// CreateBulk godoc
// @Summary      Reposición masiva
// @Description  Agrupa las líneas por proveedor: genera una orden de compra por
//
//	proveedor y una solicitud de reposición por ítem, vinculadas.
//
// @Tags         reorders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkReorderRequest  true  "lines (item_id, quantity, supplier_id opcional)"
// @Success      201   {object}  dto.BulkReorderResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reorders/bulk [post]
func (h *ReorderHandler) CreateBulk(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.BulkReorderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.CreateBulk(c.Context(), companyID, userID, in)
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// List godoc
// @Summary      Listar solicitudes de reposición
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | approved | ordered | received | cancelled"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}  dto.ReorderDTO
// @Router       /api/reorders [get]
func (h *ReorderHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), companyID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ReorderDTO, 0, len(list))
	for _, ro := range list {
		out = append(out, toReorderDTO(ro))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ReorderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reorders/{id} [get]
func (h *ReorderHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ro, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.JSON(toReorderDTO(ro))
}

// Approve godoc
// @Summary      Aprobar solicitud pendiente
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ReorderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reorders/{id}/approve [post]
func (h *ReorderHandler) Approve(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ro, err := h.uc.Approve(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.JSON(toReorderDTO(ro))
}

// Order godoc
// @Summary      Generar orden de compra desde la solicitud
// @Description  Requiere proveedor asignado. El costo unitario sale del último
//
//	costo comprado del ítem, o de su costo de catálogo si nunca se compró.
//
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      201  {object}  dto.PurchaseDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reorders/{id}/order [post]
func (h *ReorderHandler) Order(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	purchase, err := h.uc.CreatePurchaseFromReorder(c.Context(), companyID, userID, c.Params("id"))
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseDTO(purchase))
}

// Cancel godoc
// @Summary      Cancelar solicitud
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la solicitud"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reorders/{id}/cancel [post]
func (h *ReorderHandler) Cancel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Cancel(c.Context(), companyID, userID, c.Params("id")); err != nil {
		return respondReorderError(c, err)
	}
	return c.JSON(fiber.Map{"message": "solicitud cancelada"})
}

// Receive godoc
// @Summary      Marcar solicitud como recibida
// @Description  Entra el stock recibido, estampa la fecha de reposición y marca
//
//	la orden de compra vinculada como recibida si seguía pendiente.
//
// @Tags         reorders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.MarkReceivedRequest  false  "received_qty opcional (0 = cantidad ordenada)"
// @Success      200   {object}  dto.ReorderDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reorders/{id}/receive [post]
func (h *ReorderHandler) Receive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MarkReceivedRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ro, err := h.uc.MarkReceived(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondReorderError(c, err)
	}
	return c.JSON(toReorderDTO(ro))
}

// Report godoc
// @Summary      Reporte de bajo stock
// @Description  Ítems en o por debajo de su umbral de reorden con analítica de
//
//	ventas y prioridad, ordenados por prioridad descendente. Cacheado.
//
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        category     query  string  false  "Filtrar por categoría"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        limit        query  int     false  "Límite (default 20)"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {object}  dto.LowStockReportDTO
// @Router       /api/reorders/report [get]
func (h *ReorderHandler) Report(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	filter := repository.LowStockFilter{
		Category:   c.Query("category"),
		SupplierID: c.Query("supplier_id"),
	}
	report, err := h.analytics.GetLowStockReport(c.Context(), companyID, filter, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}

// Stats godoc
// @Summary      Estadísticas del motor de reposición
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReorderStatsDTO
// @Router       /api/reorders/stats [get]
func (h *ReorderHandler) Stats(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	stats, err := h.analytics.GetReorderStats(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(stats)
}

// ItemAnalytics godoc
// @Summary      Analítica de reposición de un ítem
// @Description  Cantidad sugerida, promedio diario de ventas (90 días) y días
//
//	hasta el agotamiento.
//
// @Tags         reorders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  replenishment.Result
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/analytics [get]
func (h *ReorderHandler) ItemAnalytics(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	result, err := h.analytics.CalculateForItem(c.Context(), companyID, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ítem no encontrado"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(result)
}

func respondReorderError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "transición de estado inválida"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toReorderDTO(ro *entity.Reorder) dto.ReorderDTO {
	return dto.ReorderDTO{
		ID:           ro.ID,
		Number:       ro.Number,
		ItemID:       ro.ItemID,
		SupplierID:   ro.SupplierID,
		Trigger:      ro.Trigger,
		TriggeredBy:  ro.TriggeredBy,
		StockLevel:   ro.StockLevel,
		ReorderLevel: ro.ReorderLevel,
		SuggestedQty: ro.SuggestedQty,
		Status:       ro.Status,
		PurchaseID:   ro.PurchaseID,
		OrderedQty:   ro.OrderedQty,
		ReceivedQty:  ro.ReceivedQty,
		Notes:        ro.Notes,
	}
}
