package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/santiyer/core/internal/middleware"
	"github.com/santiyer/core/internal/modules/auth"
	"github.com/santiyer/core/internal/modules/content/post"
	"github.com/santiyer/core/internal/modules/content/project"
	"github.com/santiyer/core/internal/modules/content/service"
	"github.com/santiyer/core/internal/modules/content/slider"
	"github.com/santiyer/core/internal/modules/gateway"
	"github.com/santiyer/core/internal/modules/media"
	pkgredis "github.com/santiyer/core/internal/pkg/redis"
	"github.com/santiyer/core/internal/pkg/response"
	"github.com/santiyer/core/internal/store"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(db store.Database, rc *pkgredis.Client, authSvc *auth.Service, guard *auth.Guard, pipeline *media.Pipeline, reconciler *media.Reconciler) {
	r := a.router

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "santiyer-core",
			"version": "1.0.0",
		})
	})

	adminMW := middleware.Admin(authSvc, guard)

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(authSvc))
	api.Use(middleware.RateLimit(rc.Raw()))
	api.Use(middleware.Idempotence(rc.Raw()))
	api.Use(middleware.HTTPCache(rc.Raw(), time.Duration(a.cfg.Cache.TTLSeconds)*time.Second))

	api.GET("/health", a.health(rc))

	auth.NewHandler(authSvc).RegisterRoutes(api, adminMW)
	service.NewHandler(service.NewService(db, pipeline, reconciler)).RegisterRoutes(api, adminMW)
	project.NewHandler(project.NewService(db, pipeline, reconciler)).RegisterRoutes(api, adminMW)
	post.NewHandler(post.NewService(db, pipeline, reconciler)).RegisterRoutes(api, adminMW)
	slider.NewHandler(slider.NewService(db, pipeline, reconciler)).RegisterRoutes(api, adminMW)

	gateway.RegisterRoutes(api, a.hub)

	// Admins purge the public response cache after bulk edits.
	api.POST("/cache/purge", adminMW, func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"deleted": deleted})
	})
}

func (a *App) health(rc *pkgredis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		mongoOK := a.mongo.Client().Ping(ctx, nil) == nil
		redisOK := rc.Raw().Ping(ctx).Err() == nil

		status := http.StatusOK
		if !mongoOK || !redisOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"mongo": mongoOK,
			"redis": redisOK,
			"s3":    a.cfg.S3.Bucket != "",
		})
	}
}
