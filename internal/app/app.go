// Package app wires configuration, storage backends and HTTP routes into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/santiyer/core/internal/config"
	"github.com/santiyer/core/internal/database"
	"github.com/santiyer/core/internal/middleware"
	"github.com/santiyer/core/internal/modules/auth"
	"github.com/santiyer/core/internal/modules/gateway"
	"github.com/santiyer/core/internal/modules/media"
	"github.com/santiyer/core/internal/pkg/jwt"
	pkgredis "github.com/santiyer/core/internal/pkg/redis"
	"github.com/santiyer/core/internal/storage"
	"github.com/santiyer/core/internal/store"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	mongo   *mongo.Database
	hub     *gateway.Hub
	watcher *gateway.Watcher
	cancel  context.CancelFunc
	closeDB func()
}

// New initializes the application: config → Mongo → Redis → S3 → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	jwt.SetSecret(cfg.JWTSecret)

	mongoDB, closeDB, err := database.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(context.Background(), mongoDB); err != nil {
		logger.Warn("index bootstrap incomplete", zap.Error(err))
	}
	db := store.NewMongoDatabase(mongoDB)

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("redis: %w", err)
	}

	blobs, err := storage.NewS3Store(storage.S3Config{
		Endpoint:      cfg.S3.Endpoint,
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
		PathStyle:     cfg.S3.PathStyle,
	})
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("storage: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	authSvc := auth.NewService(db, logger)
	guard := auth.NewGuard(db, authSvc, logger)

	hub := gateway.NewHub(rc, logger, func(token string) bool {
		claims, err := jwt.Parse(token)
		if err != nil {
			return false
		}
		active, err := authSvc.SessionActive(context.Background(), claims.SessionID)
		if err != nil || !active {
			return false
		}
		return guard.Authorize(context.Background(), auth.Identity{
			UserID:    claims.UserID,
			Email:     claims.Email,
			SessionID: claims.SessionID,
		}) == nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	watcher := gateway.NewWatcher(db, hub, logger)
	if err := watcher.Start(ctx, "services", "projects", "posts", "sliders"); err != nil {
		// Change streams need a replica set; run without live updates.
		logger.Warn("live updates disabled", zap.Error(err))
	}

	app := &App{
		cfg:     cfg,
		router:  router,
		logger:  logger,
		mongo:   mongoDB,
		hub:     hub,
		watcher: watcher,
		cancel:  cancel,
		closeDB: closeDB,
	}

	pipeline := media.NewPipeline(blobs, media.CompressOptions{
		MaxSizeMB:        cfg.Media.MaxSizeMB,
		MaxWidthOrHeight: cfg.Media.MaxWidthOrHeight,
	}, logger)
	reconciler := media.NewReconciler(blobs, logger)

	app.registerRoutes(db, rc, authSvc, guard, pipeline, reconciler)
	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return a.cfg.Addr() }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown tears down subscriptions and background goroutines.
func (a *App) Shutdown() {
	a.watcher.Stop()
	a.cancel()
	a.closeDB()
}
