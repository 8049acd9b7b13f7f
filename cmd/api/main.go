package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Comercial-api/internal/application/analytics"
	"github.com/jhoicas/Comercial-api/internal/application/notification"
	"github.com/jhoicas/Comercial-api/internal/application/purchases"
	"github.com/jhoicas/Comercial-api/internal/application/reorder"
	"github.com/jhoicas/Comercial-api/internal/application/sales"
	"github.com/jhoicas/Comercial-api/internal/application/usecase"
	infracache "github.com/jhoicas/Comercial-api/internal/infrastructure/cache"
	"github.com/jhoicas/Comercial-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Comercial-api/internal/interfaces/http"
	"github.com/jhoicas/Comercial-api/pkg/config"
	"github.com/jhoicas/Comercial-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewStockItemRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	reorderRepo := postgres.NewReorderRepository(pool)
	recentRepo := postgres.NewRecentNotificationRepository(pool)
	archiveRepo := postgres.NewArchivedNotificationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	reportCache, err := infracache.NewReportCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}

	notificationUC := notification.NewUseCase(recentRepo, archiveRepo)
	analyticsUC := analytics.NewUseCase(itemRepo, saleRepo, reorderRepo, reportCache)
	salesUC := sales.NewUseCase(txRunner, itemRepo, saleRepo, notificationUC, reportCache)
	purchasesUC := purchases.NewUseCase(txRunner, itemRepo, purchaseRepo, supplierRepo, notificationUC, reportCache)
	reorderUC := reorder.NewUseCase(txRunner, itemRepo, reorderRepo, purchaseRepo, supplierRepo, analyticsUC, notificationUC, reportCache)
	itemUC := usecase.NewItemUseCase(itemRepo)

	// Recepción de compra → resuelve la solicitud de reposición vinculada.
	purchasesUC.SubscribeReceipt(reorderUC)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Comercial API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:         itemUC,
		SalesUC:        salesUC,
		PurchasesUC:    purchasesUC,
		ReorderUC:      reorderUC,
		AnalyticsUC:    analyticsUC,
		NotificationUC: notificationUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
