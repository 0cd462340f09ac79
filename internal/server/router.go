package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the dashboard API. The UI is an external SPA served
// elsewhere, hence the permissive localhost CORS set.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.GET("/dataset", h.Dataset)
		api.GET("/dashboard", h.Dashboard)
		api.GET("/export", h.Export)

		api.POST("/ingest/file", h.IngestFile)
		api.POST("/ingest/manual", h.IngestManual)
		api.POST("/ingest/remote", h.IngestRemote)
		api.POST("/ingest/vision", h.IngestVision)

		api.POST("/chat", h.Chat)
		api.GET("/chat/:session", h.ChatHistory)
		api.DELETE("/chat/:session", h.ChatEnd)
	}

	return router
}
