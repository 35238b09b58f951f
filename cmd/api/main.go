package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/aivt-api/internal/bootstrap"
	"github.com/noah-isme/aivt-api/internal/config"
	"github.com/noah-isme/aivt-api/internal/database"
	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/handler"
	"github.com/noah-isme/aivt-api/internal/middleware"
	"github.com/noah-isme/aivt-api/internal/router"
	"github.com/noah-isme/aivt-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	rt, err := bootstrap.Open(context.Background(), cfg, logger, cfg.SeedSamples)
	if err != nil {
		log.Fatalf("failed to open case store: %v", err)
	}
	defer rt.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, case events will not be published to redis")
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, case events will not be published to nats")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := dto.NewValidator()
	events := service.NewCaseEventPublisher(redisClient, natsConn, cfg.EventsChannel, logger)

	caseService := service.NewCaseService(rt.Registry, events, validate, logger)
	exportService := service.NewExportService(rt.Registry, rt.Store, logger)
	seedService := service.NewSeedService(rt.Registry, cfg.SeedSamples, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CaseHandler:   handler.NewCaseHandler(caseService, logger),
		ReportHandler: handler.NewReportHandler(caseService, exportService, cfg.ExportPath, cfg.BackupPath, logger),
		SeedHandler:   handler.NewSeedHandler(seedService, logger),
	})

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("driver", cfg.DatabaseDriver).
		Int("cases", rt.Registry.TotalCases()).
		Bool("restored", rt.Loaded).
		Msg("starting academic integrity tracker")

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, rt)
}

func waitForShutdown(app *fiber.App, rt *bootstrap.Runtime) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if err := rt.Registry.Save(ctx); err != nil {
		log.Printf("final save failed: %v", err)
	}

	log.Println("server stopped")
}
