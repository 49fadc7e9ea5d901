package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statement-analyzer/internal/analysis"
	"statement-analyzer/internal/api"
	"statement-analyzer/internal/api/handlers"
	"statement-analyzer/internal/repository"
	"statement-analyzer/internal/service"
	"statement-analyzer/pkg/auth"
	"statement-analyzer/pkg/config"
	"statement-analyzer/pkg/logger"
	"statement-analyzer/pkg/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Statement Analyzer API
// @version 1.0
// @description Bank statement normalization, analysis and LLM-assisted reporting
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting statement analyzer service",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewPool(ctx, &cfg.Database, logger.Named("postgres"))
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.RunMigrations(db, logger.Named("migrate")); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	statementRepo := repository.NewStatementRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	reportRepo := repository.NewReportRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	completer, err := service.NewCompleter(ctx, &cfg.LLM, logger.Named("llm"))
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}
	llmService := service.NewLLMService(completer, logger.Named("llm"))
	defer llmService.Close()

	authService := service.NewAuthService(userRepo, jwtManager, logger.Named("auth"))
	statementService := service.NewStatementService(
		statementRepo,
		txRepo,
		analysis.RenderOptions{Currency: cfg.Report.Currency},
		logger.Named("statement"),
	)
	reportService := service.NewReportService(statementRepo, reportRepo, llmService, cfg.Report.ExportDir, logger.Named("report"))

	// Initialize handlers
	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, appLogger),
		Statement: handlers.NewStatementHandler(statementService, appLogger),
		Report:    handlers.NewReportHandler(reportService, appLogger),
		Health:    handlers.NewHealthHandler(db, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, jwtManager, &cfg.Server, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server stopped with error", zap.Error(err))
	}
}
