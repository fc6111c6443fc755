package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg-vaultgate/internal/bot"
	"tg-vaultgate/internal/config"
	"tg-vaultgate/internal/crash"
	"tg-vaultgate/internal/dispatch"
	"tg-vaultgate/internal/gate"
	"tg-vaultgate/internal/handler"
	"tg-vaultgate/internal/logger"
	"tg-vaultgate/internal/models"
	"tg-vaultgate/internal/reaper"
	"tg-vaultgate/internal/storage"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")

	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	// The delivery ledger is mandatory; without it expired copies would leak
	if err := storage.Initialize(cfg); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	ledger := storage.NewDeliveryRepository(storage.DB)
	if err := ledger.MigrateTable(); err != nil {
		logger.Fatalf("Failed to migrate delivery ledger: %v", err)
	}

	if outstanding, err := ledger.CountOutstanding(); err == nil {
		logger.Infof("Ledger holds %d outstanding deliveries", outstanding)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	botService, server, err := bot.Initialize(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize bot: %v", err)
	}

	previews := models.NewPendingPreviewManager(cfg.Retention.PreviewTTL)
	membershipGate := gate.NewChecker(botService.Bot, cfg.Vault.ForceJoinChannel)
	dispatcher := dispatch.NewDispatcher(botService.Bot, ledger, membershipGate, previews, cfg, botService.Username)

	handler.Initialize(cfg)
	handler.SetupMessageHandlers(botService.Handler, botService.Bot, dispatcher)

	crash.SafeGoroutine("http-server", func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	})

	// Give server time to start
	time.Sleep(500 * time.Millisecond)
	logger.Info("HTTP server is ready, starting bot handler...")

	// The reaper runs on its own schedule, independent of update handling
	expiry := reaper.New(botService.Bot, ledger, cfg)
	crash.SafeGoroutine("reaper", func() {
		expiry.Run(ctx)
	})

	botService.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)

	// Stop the reaper and update dispatch; ledger records persist for restart
	cancel()
	botService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("HTTP server shutdown error: %v", err)
	}

	logger.Info("Server gracefully stopped")
}
