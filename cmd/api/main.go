package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filemanager/internal/config"
	"filemanager/internal/database"
	"filemanager/internal/middleware"
	"filemanager/internal/modules/auth"
	"filemanager/internal/modules/file"
	"filemanager/internal/modules/folder"
	"filemanager/internal/modules/share"
	jwtsvc "filemanager/internal/pkg/jwt"
	"filemanager/internal/pkg/token"
	"filemanager/internal/repository"
	"filemanager/internal/storage"
	"filemanager/internal/storage/local"
	"filemanager/internal/storage/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	shareRepo := repository.NewShareRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	tokens := token.NewRandom()

	authService := auth.NewService(userRepo, j, cfg.DefaultStorageLimit)
	authHandler := auth.NewHandler(authService)

	fileService := file.NewService(fileRepo, folderRepo, userRepo, store, tokens)
	fileHandler := file.NewHandler(fileService)

	folderService := folder.NewService(folderRepo, fileRepo, fileService)
	folderHandler := folder.NewHandler(folderService)

	shareService := share.NewService(shareRepo, fileRepo, folderRepo, fileService, tokens)
	shareHandler := share.NewHandler(shareService)

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(), middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.StorageDriver == "local" {
		r.Static(cfg.URLPrefix, cfg.UploadDir)
	}

	api := r.Group("/api")
	{
		// public: registration, login and guest share access
		authHandler.RegisterPublicRoutes(api)
		shareHandler.RegisterPublicRoutes(api)

		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			fileHandler.RegisterRoutes(protected)
			folderHandler.RegisterRoutes(protected)
			shareHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func buildStorage(cfg *config.Config) (storage.Backend, error) {
	if cfg.StorageDriver == "s3" {
		return s3.New(context.Background(), s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return local.New(cfg.UploadDir, cfg.URLPrefix), nil
}
