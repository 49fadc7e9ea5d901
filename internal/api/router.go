package api

import (
	"statement-analyzer/docs"
	"statement-analyzer/internal/api/handlers"
	"statement-analyzer/pkg/auth"
	"statement-analyzer/pkg/config"
	"statement-analyzer/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Statement *handlers.StatementHandler
	Report    *handlers.ReportHandler
	Health    *handlers.HealthHandler
}

func SetupRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	serverCfg *config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		BodyLimit:    serverCfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	docs.SwaggerInfo.BasePath = "/"
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", h.Health.Health)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	statements := protected.Group("/statements")
	statements.Post("/preview", h.Statement.PreviewStatement)
	statements.Post("", h.Statement.UploadStatement)
	statements.Get("", h.Statement.ListStatements)
	statements.Get("/:id", h.Statement.GetStatement)
	statements.Get("/:id/tokens", h.Statement.CountTokens)
	statements.Post("/:id/ask", h.Report.AskStatement)
	statements.Get("/:id/reports", h.Report.ListReports)

	reports := protected.Group("/reports")
	reports.Get("/:id/export", h.Report.ExportReport)

	appLogger.Info("Routes registered", zap.Int("count", len(app.GetRoutes(true))))
	return app
}
