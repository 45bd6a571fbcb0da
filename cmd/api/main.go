package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-commerce-ledger/internal/handler"
	"go-commerce-ledger/internal/metrics"
	"go-commerce-ledger/internal/middleware"
	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/payment"
	"go-commerce-ledger/internal/repository"
	"go-commerce-ledger/internal/service"
	"go-commerce-ledger/internal/ws"
	"go-commerce-ledger/pkg/config"
	"go-commerce-ledger/pkg/database"
	applog "go-commerce-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config and init observability
	cfg := config.Load()
	log := applog.Get()
	defer applog.Sync()
	metrics.Init(cfg)

	// 2. Setup Database
	db := database.Connect(cfg)
	if err := db.AutoMigrate(
		&model.Outlet{}, &model.Privilege{}, &model.Role{}, &model.User{},
		&model.Category{}, &model.Product{},
		&model.Order{}, &model.OrderItem{},
		&model.RestockRequest{},
		&model.CreditTransaction{}, &model.CreditPayment{},
		&model.Subscription{},
	); err != nil {
		log.Fatal("auto migration failed", zap.Error(err))
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, log)

	// 4. WebSocket hub and redis notifier
	wsHub := ws.NewHub()
	go wsHub.Run()

	rdb := notify.NewRedisClient(cfg)
	notifier := notify.NewRedisNotifier(rdb, wsHub)

	// 5. Dependency injection
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	restockRepo := repository.NewRestockRepo(db)
	creditRepo := repository.NewCreditRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	outletRepo := repository.NewOutletRepo(db)
	subscriptionRepo := repository.NewSubscriptionRepo(db)

	verifier := payment.NewGatewayVerifier(cfg)

	inventoryService := service.NewInventoryService(productRepo, db, notifier)
	creditService := service.NewCreditService(creditRepo, orderRepo, userRepo, verifier, db, notifier)
	orderService := service.NewOrderService(orderRepo, productRepo, inventoryService, creditService, db, notifier)
	restockService := service.NewRestockService(restockRepo, productRepo, inventoryService, db, notifier, cfg.Restock.AutoApprove)
	reportService := service.NewReportService(orderRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, roleRepo, privilegeRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo)

	productHandler := handler.NewProductHandler(inventoryService)
	orderHandler := handler.NewOrderHandler(orderService)
	creditHandler := handler.NewCreditHandler(creditService)
	restockHandler := handler.NewRestockHandler(restockService)
	reportHandler := handler.NewReportHandler(reportService, creditService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	outletHandler := handler.NewOutletHandler(outletRepo)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Commerce Ledger v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// Guest checkout does not require authentication
	api.Post("/orders/guest", orderHandler.PlaceOrder)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Catalog
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)

	protected.Get("/categories", categoryHandler.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege("category:manage"), categoryHandler.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege("category:manage"), categoryHandler.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege("category:manage"), categoryHandler.DeleteCategory)

	// Outlets
	protected.Get("/outlets", outletHandler.GetOutlets)
	protected.Get("/outlets/:id", outletHandler.GetOutlet)
	protected.Post("/outlets", middleware.RequirePrivilege("user:create"), outletHandler.CreateOutlet)
	protected.Put("/outlets/:id", middleware.RequirePrivilege("user:update"), outletHandler.UpdateOutlet)

	// Orders
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.GetOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.PlaceOrder)
	protected.Put("/orders/:id/status", middleware.RequirePrivilege("order:update_status"), orderHandler.UpdateStatus)
	protected.Post("/orders/:id/cancel", middleware.RequireAnyPrivilege("order:create", "order:update_status"), orderHandler.CancelOrder)

	// Restocking
	protected.Get("/restocks", middleware.RequireAnyPrivilege("restock:create", "restock:process"), restockHandler.GetRequests)
	protected.Get("/restocks/:id", middleware.RequireAnyPrivilege("restock:create", "restock:process"), restockHandler.GetRequest)
	protected.Post("/restocks", middleware.RequirePrivilege("restock:create"), restockHandler.CreateRequest)
	protected.Put("/restocks/:id/process", middleware.RequirePrivilege("restock:process"), restockHandler.ProcessRequest)

	// Credit ledger
	protected.Post("/credits", middleware.RequirePrivilege("credit:open"), creditHandler.Open)
	protected.Get("/credits/:id", creditHandler.GetCredit)
	protected.Post("/credits/:id/payments", middleware.RequirePrivilege("credit:pay"), creditHandler.RecordPayment)
	protected.Put("/credits/:id/terms", middleware.RequirePrivilege("credit:override"), creditHandler.UpdateTerms)
	protected.Get("/users/:userId/credits", creditHandler.GetCreditsByUser)

	// Reporting
	protected.Get("/reports/sales", middleware.RequirePrivilege("report:view"), reportHandler.GetSalesByDay)
	protected.Get("/reports/dashboard", middleware.RequirePrivilege("report:view"), reportHandler.GetDashboardStats)
	protected.Get("/reports/financial", middleware.RequirePrivilege("report:view"), reportHandler.GetFinancialSummary)
	protected.Get("/reports/overdue", middleware.RequirePrivilege("report:view"), reportHandler.GetOverdueCredits)

	// Subscriptions
	protected.Get("/subscriptions/expiring", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.GetExpiring)
	protected.Get("/subscriptions/:id", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.Get)
	protected.Post("/subscriptions", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.Create)
	protected.Put("/subscriptions/:id", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.Update)
	protected.Post("/subscriptions/:id/cancel", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.Cancel)
	protected.Get("/users/:userId/subscriptions", middleware.RequirePrivilege("subscription:manage"), subscriptionHandler.GetByUser)

	// User management
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles and privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		log.Warn("redis close failed", zap.Error(err))
	}
	log.Info("server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the
// initial admin user if they don't exist.
func seedPrivilegesRolesAndAdmin(db *gorm.DB, log *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Assign seeded privileges to roles that have none yet
	for _, defaultRole := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(defaultRole.Code)
		if err != nil || len(role.Privileges) > 0 {
			continue
		}

		var privileges []model.Privilege
		if codes := model.PrivilegeCodesForRole(role.Code); codes == nil {
			privileges, err = privilegeRepo.FindAll()
		} else {
			privileges, err = privilegeRepo.FindByCodes(codes)
		}
		if err != nil {
			log.Warn("failed to load privileges for role", zap.String("role", role.Code), zap.Error(err))
			continue
		}
		if err := roleRepo.SetPrivileges(role, privileges); err != nil {
			log.Warn("failed to assign role privileges", zap.String("role", role.Code), zap.Error(err))
		}
	}

	// 4. Create default admin user
	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		adminRole, rerr := roleRepo.FindByCode(model.RoleAdmin)
		if rerr != nil {
			log.Warn("admin role missing, skipping admin seed", zap.Error(rerr))
			return
		}

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Warn("failed to hash admin password", zap.Error(err))
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Warn("failed to create admin user", zap.Error(err))
		} else {
			log.Info("admin user created", zap.String("email", admin.Email))
		}
	}
}
