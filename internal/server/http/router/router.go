package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/stampcard/internal/server/http/handlers"
	"github.com/polkiloo/stampcard/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StampCardFacade, verifier middleware.KeyVerifier, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	settingsHandler := handlers.NewSettingsHandler(facade)
	cardHandler := handlers.NewStampCardHandler(facade)
	activityHandler := handlers.NewActivityHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.OperatorRequired(verifier))
	api.GET("/settings", settingsHandler.Get)
	api.POST("/stampcard/fetch", cardHandler.Fetch)
	api.POST("/stampcard/update", cardHandler.Update)
	api.GET("/activity/:member_id", activityHandler.List)

	return engine
}
