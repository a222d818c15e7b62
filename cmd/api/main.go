package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	appcart "github.com/voicecart/voicecart/app/cart"
	appcatalog "github.com/voicecart/voicecart/app/catalog"
	applogs "github.com/voicecart/voicecart/app/logs"
	appvoice "github.com/voicecart/voicecart/app/voice"
	"github.com/voicecart/voicecart/assistant"
	"github.com/voicecart/voicecart/cart"
	"github.com/voicecart/voicecart/catalog"
	"github.com/voicecart/voicecart/config"
	"github.com/voicecart/voicecart/models"
	"github.com/voicecart/voicecart/nlu"
	"github.com/voicecart/voicecart/speech"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		logger.Error("cannot create audio directory", "dir", cfg.AudioDir, "error", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.CartLine{},
		&models.InteractionLog{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	cat := catalog.Load(cfg.CatalogPath, logger)
	extractor := nlu.NewExtractor(cat)

	cartRepo := models.NewCartRepository(db)
	ordersRepo := models.NewOrdersRepository(db)
	logsRepo := models.NewLogsRepository(db)

	cartSvc := cart.NewService(cartRepo, ordersRepo, cat, logger)

	orchestrator := assistant.NewOrchestrator(
		&speech.CommandTranscriber{Command: cfg.TranscribeCommand, Logger: logger},
		&speech.CommandClassifier{Command: cfg.SentimentCommand, Logger: logger},
		&speech.CommandSynthesizer{Command: cfg.SynthesizeCommand, Logger: logger},
		extractor,
		cartSvc,
		logsRepo,
		cfg.ProcessTimeout,
		cfg.AudioDir,
		logger,
	)

	voiceHandler := appvoice.NewVoiceHandler(orchestrator, extractor, cartSvc, cfg.AudioDir, logger)
	cartHandler := appcart.NewCartHandler(cartSvc)
	catalogHandler := appcatalog.NewCatalogHandler(cat)
	logsHandler := applogs.NewLogsHandler(logsRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", voiceHandler.HandleUpload)
	mux.HandleFunc("POST /api/debug", voiceHandler.HandleDebug)
	mux.HandleFunc("GET /api/cart", cartHandler.HandleGet)
	mux.HandleFunc("POST /api/checkout", cartHandler.HandleCheckout)
	mux.HandleFunc("GET /api/products", catalogHandler.HandleGet)
	mux.HandleFunc("GET /api/logs", logsHandler.HandleGetLogs)
	mux.HandleFunc("GET /api/sentiment", logsHandler.HandleGetSentiment)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
		// Uploads run the whole interaction inline; leave generous room
		// beyond the per-interaction timeout.
		ReadTimeout:  cfg.ProcessTimeout + 30*time.Second,
		WriteTimeout: cfg.ProcessTimeout + 30*time.Second,
	}

	logger.Info("listening", "addr", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
