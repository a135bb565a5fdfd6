package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tools/internal/api/http"
	"github.com/spec-kit/ticket-tools/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tools/internal/api/mcpserver"
	"github.com/spec-kit/ticket-tools/internal/auth"
	"github.com/spec-kit/ticket-tools/internal/config"
	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
	"github.com/spec-kit/ticket-tools/internal/observability"
	"github.com/spec-kit/ticket-tools/internal/persistence"
	"github.com/spec-kit/ticket-tools/internal/repository"
	"github.com/spec-kit/ticket-tools/internal/service"
	"github.com/spec-kit/ticket-tools/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// stdout carries the MCP protocol when serving over stdio.
	logOutput := "stdout"
	if cfg.MCP.Enabled && cfg.MCP.Transport == mcpserver.TransportStdio {
		logOutput = "stderr"
	}
	logger, err := observability.NewLogger(cfg.Logger, logOutput)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	auditDeps := service.AuditDependencies{Dispatcher: dispatcher, Logger: logger}
	if pg.Enabled() {
		auditDeps.Repo = repository.NewToolEventRepository(pg.Pool)
	}
	if redis.Enabled() {
		auditDeps.Stream = redis
	}
	auditService := service.NewAuditService(auditDeps)
	if cfg.Audit.Enabled {
		worker.StartAuditWorker(auditService)
	}

	client := hubspot.NewClient(cfg.HubSpot, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Records:          client,
		Dispatcher:       dispatcher,
		Logger:           logger,
		GroupProperty:    cfg.HubSpot.GroupProperty,
		FetchConcurrency: cfg.HubSpot.FetchConcurrency,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		Directory:  client,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	registry := auth.NewClientRegistry(cfg.Auth.Clients, cfg.Auth.ReadOnlyClients, tokens)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(registry),
		Tools:          handlers.NewToolsHandler(ticketService, directoryService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	var mcp *mcpserver.Server
	if cfg.MCP.Enabled {
		mcp = mcpserver.New(mcpserver.Dependencies{
			Name:      cfg.App.Name,
			Version:   cfg.App.Version,
			Transport: cfg.MCP.Transport,
			Tickets:   ticketService,
			Owners:    directoryService,
			Tokens:    tokens,
			Metrics:   metrics,
			Logger:    logger,
		})
		go func() {
			if err := mcp.Serve(cfg.MCP.Addr); err != nil {
				logger.Fatal("mcp serve", zap.Error(err))
			}
			if cfg.MCP.Transport == mcpserver.TransportStdio {
				logger.Info("mcp stdio closed")
				cancel()
			}
		}()
	}

	if ticketService.TestConnection(ctx) {
		logger.Info("ticketing system reachable")
	} else {
		logger.Warn("ticketing system unreachable; check HUBSPOT_ACCESS_TOKEN")
	}

	waitForShutdown(ctx, logger)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if mcp != nil {
		if err := mcp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp shutdown", zap.Error(err))
		}
	}
	_ = app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}
