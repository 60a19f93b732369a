package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/handlers"
)

type RouterConfig struct {
	VideosHandler      *handlers.VideosHandler
	TranscriptsHandler *handlers.TranscriptsHandler
	JobsHandler        *handlers.JobsHandler
	EmbeddingsHandler  *handlers.EmbeddingsHandler
	SearchHandler      *handlers.SearchHandler
	ClustersHandler    *handlers.ClustersHandler
	ChatHandler        *handlers.ChatHandler
	SettingsHandler    *handlers.SettingsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Videos
		api.GET("/videos", cfg.VideosHandler.List)
		api.POST("/videos", cfg.VideosHandler.Create)
		api.GET("/videos/:video_id", cfg.VideosHandler.Get)
		api.DELETE("/videos/:video_id", cfg.VideosHandler.Delete)

		// Transcripts
		api.GET("/transcripts/search", cfg.TranscriptsHandler.Search)
		api.GET("/transcripts/:video_id", cfg.TranscriptsHandler.Get)
		api.GET("/transcripts/:video_id/status", cfg.TranscriptsHandler.Status)
		api.POST("/transcripts/:video_id/summary", cfg.TranscriptsHandler.GenerateSummary)

		// Transcription jobs
		api.POST("/transcribe/:video_id", cfg.JobsHandler.StartTranscription)
		api.GET("/jobs/:id", cfg.JobsHandler.GetJobByID)
		api.GET("/jobs/video/:video_id", cfg.JobsHandler.GetActiveByVideo)
		api.GET("/jobs/video/:video_id/history", cfg.JobsHandler.ListByVideo)

		// Embeddings
		api.POST("/embeddings/video/:video_id", cfg.EmbeddingsHandler.EmbedVideo)
		api.POST("/embeddings/embed-all", cfg.EmbeddingsHandler.EmbedAll)
		api.POST("/embeddings/rebuild", cfg.EmbeddingsHandler.Rebuild)
		api.GET("/embeddings/status", cfg.EmbeddingsHandler.Status)

		// Similarity search
		api.GET("/search", cfg.SearchHandler.Search)
		api.GET("/search/grouped", cfg.SearchHandler.SearchGrouped)

		// Clusters
		api.POST("/clusters/build", cfg.ClustersHandler.Build)
		api.GET("/clusters", cfg.ClustersHandler.Get)

		// Chat
		api.POST("/chat", cfg.ChatHandler.Stream)

		// Settings
		api.GET("/settings", cfg.SettingsHandler.Get)
		api.PUT("/settings", cfg.SettingsHandler.Set)
	}

	return router
}
