package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/goods"
	"github.com/MaxConsolas/marzban-shop/internal/handlers"
	"github.com/MaxConsolas/marzban-shop/internal/payments"
	"github.com/MaxConsolas/marzban-shop/internal/services"
	"github.com/MaxConsolas/marzban-shop/internal/storage"
	"github.com/MaxConsolas/marzban-shop/internal/tasks"
	"github.com/MaxConsolas/marzban-shop/internal/webhook"
	"github.com/MaxConsolas/marzban-shop/pkg/marzban"
	"github.com/MaxConsolas/marzban-shop/pkg/telegrambot"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}

	// Initialize storage and catalog
	store := storage.NewStore(cfg.Storage.File, logger)
	catalog := goods.NewCatalog(cfg.Shop.GoodsFile, logger)

	// Initialize panel client
	panel := marzban.NewClient(cfg.Panel, logger)

	// Initialize payment gateways
	yookassa := payments.NewYookassa(cfg.Yookassa, store, cfg.Shop.Name, logger)
	cryptomus := payments.NewCryptomus(cfg.Cryptomus, store, cfg.Webhook.URL, logger)
	stars := payments.NewStars(cfg.Telegram.StarsEnabled)

	qrService := services.NewQRService(logger)

	// Initialize bot with the storefront handler
	shop := handlers.NewShopHandler(store, catalog, yookassa, cryptomus, stars, panel, qrService, cfg, logger)
	bot, err := telegrambot.NewBot(cfg, shop, logger)
	if err != nil {
		logger.Fatal("Failed to create bot:", err)
	}
	if cfg.Telegram.BotUsername == "" {
		cfg.Telegram.BotUsername = bot.Username()
	}

	// Initialize webhook server and scheduler
	server := webhook.NewServer(cfg, store, store, catalog, panel, bot, logger)
	notifier := tasks.NewNotifier(panel, store, bot, logger)
	scheduler := tasks.NewScheduler(panel, notifier, cfg.Notify, logger)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Prime the panel token before serving webhooks
	if err := panel.Authenticate(ctx); err != nil {
		logger.Warnf("Initial panel authentication failed: %v", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := server.Run(ctx); err != nil {
			logger.Errorf("Webhook server failed: %v", err)
			cancel()
		}
	}()

	// Start bot
	logger.Info("Starting shop bot")
	bot.Start(ctx)
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	// Set log level from environment variable or default to info
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
