package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/pronob/libvision/internal/api"
	"github.com/pronob/libvision/internal/database"
	"github.com/pronob/libvision/internal/gateway"
	"github.com/pronob/libvision/internal/state"
	"github.com/pronob/libvision/internal/storage"
	"github.com/pronob/libvision/internal/validator"
	"github.com/pronob/libvision/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadSize := os.Getenv("MAX_UPLOAD_SIZE")
	if maxUploadSize == "" {
		maxUploadSize = "52428800"
	}
	maxSize, err := strconv.ParseInt(maxUploadSize, 10, 64)
	if err != nil {
		logger.Error("invalid MAX_UPLOAD_SIZE", "error", err)
		os.Exit(1)
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "./media"
	}

	gatewayCfg := gateway.Config{
		BaseURL: os.Getenv("ANALYSIS_API_URL"),
	}
	if timeoutStr := os.Getenv("ANALYSIS_API_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			logger.Error("invalid ANALYSIS_API_TIMEOUT", "error", err)
			os.Exit(1)
		}
		gatewayCfg.Timeout = timeout
	}

	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var dbConfig database.Config
	dbConfig.Type = dbType

	if dbType == "postgres" {
		dbConfig.Host = os.Getenv("DB_HOST")
		if dbConfig.Host == "" {
			dbConfig.Host = "localhost"
		}

		dbPortStr := os.Getenv("DB_PORT")
		if dbPortStr == "" {
			dbPortStr = "5432"
		}
		dbPort, err := strconv.Atoi(dbPortStr)
		if err != nil {
			logger.Error("invalid DB_PORT", "error", err)
			os.Exit(1)
		}
		dbConfig.Port = dbPort

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			dbConfig.User = "libvision"
		}

		dbConfig.Password = os.Getenv("DB_PASSWORD")
		if dbConfig.Password == "" {
			dbConfig.Password = "libvision_dev"
		}

		dbConfig.Name = os.Getenv("DB_NAME")
		if dbConfig.Name == "" {
			dbConfig.Name = "libvision"
		}
	} else {
		dbConfig.SQLitePath = os.Getenv("DB_PATH")
		if dbConfig.SQLitePath == "" {
			dbConfig.SQLitePath = "./libvision.db"
		}
	}

	mediaStorage, err := storage.NewLocalStorage(mediaDir)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(dbConfig)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	historyRepo := database.NewHistoryRepository(db)
	analysisRepo := database.NewAnalysisRepository(db)

	// Session-lifetime state: created here, torn down with the process.
	store := state.NewStore()
	client := gateway.NewClient(gatewayCfg)
	navigator := api.NewRouteRecorder()
	preview := api.NewPreviewCache()

	uploadFlow := workflow.NewUpload(validator.NewConfig(), client, store, navigator, preview, logger)
	queryFlow := workflow.NewQuery(client, store, historyRepo, logger)

	app := &api.App{
		Store:         store,
		Upload:        uploadFlow,
		Query:         queryFlow,
		Storage:       mediaStorage,
		HistoryRepo:   historyRepo,
		AnalysisRepo:  analysisRepo,
		Navigator:     navigator,
		Preview:       preview,
		MaxUploadSize: maxSize,
		Logger:        logger,
	}

	router := api.NewRouter(app)

	logger.Info("server starting",
		"port", port,
		"media_dir", mediaDir,
		"db_type", dbType,
		"analysis_api", gatewayCfg.BaseURL,
		"max_upload_size", maxSize)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
