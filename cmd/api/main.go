package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}

	docRepo := repositories.NewDocumentRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		return err
	}

	roles, err := app.NewRoleStore(ctx, cfg, db, log.Named("roles"))
	if err != nil {
		return fmt.Errorf("load role catalog: %w", err)
	}
	go roles.Run(ctx, cfg.Roles.RefreshInterval)

	orchestrator, err := app.NewOrchestrator(ctx, cfg, roles, log,
		services.WithRecorder(services.NewEvaluationRecorder(evalRepo)))
	if err != nil {
		return err
	}

	worker := services.NewWorker(evalRepo, docRepo, storageService, orchestrator, services.WorkerConfig{
		Concurrency: cfg.Worker.Concurrency,
	}, log.Named("worker"))
	worker.Start(ctx)

	server := fiber.New(fiber.Config{
		AppName:      "Résumé Screener API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Scoring.AugmentTotalTimeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(server, handlers.Handlers{
		Screen:     handlers.NewScreenHandler(orchestrator, roles, docRepo, evalRepo, storageService, cfg.Storage.MaxFileSize, log),
		Roles:      handlers.NewRolesHandler(roles),
		Upload:     handlers.NewUploadHandler(docRepo, storageService, cfg.Storage.MaxFileSize, log),
		Evaluation: handlers.NewEvaluationHandler(evalRepo, docRepo, roles, worker),
		Result:     handlers.NewResultHandler(evalRepo),
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		worker.Stop()
		if err := server.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.Int("roles", len(roles.List())))

	return server.Listen(addr)
}
