package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/application/purchases"
	"github.com/jhoicas/Comercial-api/internal/application/reorder"
	"github.com/jhoicas/Comercial-api/internal/application/sales"
	"github.com/jhoicas/Comercial-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC         *usecase.ItemUseCase
	SalesUC        *sales.UseCase
	PurchasesUC    *purchases.UseCase
	ReorderUC      *reorder.UseCase
	AnalyticsUC    *analytics.UseCase
	NotificationUC *notification.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todas las rutas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items (libro de stock)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	reorderHandler := NewReorderHandler(deps.ReorderUC, deps.AnalyticsUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Get("/:id/analytics", reorderHandler.ItemAnalytics)

	// Sales (ventas, decrementan stock). Vender es de vendedores; la reversa
	// es destructiva y queda reservada al administrador.
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", RequireRole("admin", "vendedor"), saleHandler.Create)
	salesGroup.Delete("/:id", RequireRole("admin"), saleHandler.Delete)

	// Purchases (órdenes de compra): todo el grupo es de compradores; la
	// reversa además exige administrador.
	purchasesGroup := protected.Group("/purchases", RequireRole("admin", "comprador"))
	purchaseHandler := NewPurchaseHandler(deps.PurchasesUC)
	purchasesGroup.Post("/", purchaseHandler.Create)
	purchasesGroup.Patch("/:id/status", purchaseHandler.UpdateStatus)
	purchasesGroup.Post("/:id/payments", purchaseHandler.RecordPayment)
	purchasesGroup.Delete("/:id", RequireRole("admin"), purchaseHandler.Delete)

	// Reorders (motor de reposición)
	reorders := protected.Group("/reorders")
	reorders.Post("/", reorderHandler.Create)
	reorders.Get("/", reorderHandler.List)
	reorders.Post("/quick", RequireRole("admin", "comprador"), reorderHandler.CreateQuick)
	reorders.Post("/bulk", RequireRole("admin", "comprador"), reorderHandler.CreateBulk)
	reorders.Get("/report", reorderHandler.Report)
	reorders.Get("/stats", reorderHandler.Stats)
	reorders.Get("/:id", reorderHandler.GetByID)
	reorders.Post("/:id/approve", RequireRole("admin", "comprador"), reorderHandler.Approve)
	reorders.Post("/:id/order", RequireRole("admin", "comprador"), reorderHandler.Order)
	reorders.Post("/:id/cancel", reorderHandler.Cancel)
	reorders.Post("/:id/receive", reorderHandler.Receive)

	// Notifications (feed reciente + archivo)
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/recent", notificationHandler.ListRecent)
	notifications.Get("/archive", notificationHandler.ListArchive)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllReadRecent)
	notifications.Post("/archive/read-all", notificationHandler.MarkAllReadArchive)
	notifications.Post("/sync", notificationHandler.Sync)
	notifications.Delete("/read", notificationHandler.DeleteAllReadRecent)
	notifications.Delete("/archive/read", notificationHandler.DeleteAllReadArchive)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id/permanent", notificationHandler.DeletePermanent)
	notifications.Delete("/:id", notificationHandler.Dismiss)
}
