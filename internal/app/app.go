package app

import (
	"fmt"

	"modelhub_backend/internal/config"
	"modelhub_backend/internal/handlers"
	"modelhub_backend/internal/logger"
	"modelhub_backend/internal/models"
	"modelhub_backend/internal/repositories"
	"modelhub_backend/internal/routes"
	"modelhub_backend/internal/services"
	"modelhub_backend/internal/storage"
	"modelhub_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(&models.User{}, &models.Asset{}); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full gin engine with all dependencies wired.
// The storage client is constructed once here and injected everywhere;
// no component reaches for it implicitly.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// Repositories
	userRepo := repositories.NewUserRepository(gormDB)
	assetRepo := repositories.NewAssetRepository(gormDB)

	// Services
	authService := services.NewAuthService(userRepo)
	assetService := services.NewAssetService(assetRepo, userRepo, storageInstance, services.AssetConfig{
		MaxFileSize:       cfg.Upload.MaxSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
	})

	// Handlers
	v := validator.New()
	base := handlers.NewBaseHandler(v)
	appHandlers := &handlers.AppHandlers{
		AuthHandler:  handlers.NewAuthHandler(base, authService),
		AssetHandler: handlers.NewAssetHandler(base, assetService, cfg.Upload.MaxSize),
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.Default()

	routes.RegisterRoutes(ginRouter, appHandlers)

	// Local storage serves its objects straight from disk
	if cfg.Storage.Type == "local" {
		ginRouter.Static("/files", cfg.Storage.BasePath)
	}

	return ginRouter
}
