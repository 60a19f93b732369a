package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/db"
	"github.com/yungbote/tubebase-backend/internal/handlers"
	"github.com/yungbote/tubebase-backend/internal/platform/envutil"
	"github.com/yungbote/tubebase-backend/internal/platform/gemini"
	"github.com/yungbote/tubebase-backend/internal/platform/localmedia"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
	"github.com/yungbote/tubebase-backend/internal/server"
	"github.com/yungbote/tubebase-backend/internal/services"
	"github.com/yungbote/tubebase-backend/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	gormDB := dbService.DB()

	// Repos
	log.Info("Setting up repos...")
	videoRepo := repos.NewVideoRepo(gormDB, log)
	transcriptRepo := repos.NewTranscriptRepo(gormDB, log)
	chunkRepo := repos.NewChunkRepo(gormDB, log)
	jobRepo := repos.NewJobRepo(gormDB, log)
	clusterRepo := repos.NewClusterRepo(gormDB, log)
	settingRepo := repos.NewSettingRepo(gormDB, log)

	// Vector store
	vectors := vectorstore.New(gormDB, log)

	// External clients
	log.Info("Setting up clients...")
	geminiClient, err := gemini.NewClient(log)
	if err != nil {
		log.Error("Could not init Gemini client", "error", err)
		os.Exit(1)
	}
	mediaTools := localmedia.NewTools(log)
	providerFactory := services.NewProviderFactory(log)

	// Services
	log.Info("Setting up services...")
	embeddingService := services.NewEmbeddingService(gormDB, transcriptRepo, chunkRepo, vectors, geminiClient, log)
	searchService := services.NewSearchService(videoRepo, chunkRepo, vectors, geminiClient, log)
	clusteringService := services.NewClusteringService(gormDB, videoRepo, transcriptRepo, clusterRepo, vectors, geminiClient, log)
	transcriptionService := services.NewTranscriptionService(
		gormDB,
		videoRepo,
		transcriptRepo,
		chunkRepo,
		jobRepo,
		clusterRepo,
		settingRepo,
		vectors,
		mediaTools,
		providerFactory,
		embeddingService,
		log,
	)
	summaryService := services.NewSummaryService(videoRepo, transcriptRepo, settingRepo, geminiClient, log)
	chatService := services.NewChatService(transcriptRepo, settingRepo, searchService, geminiClient, log)
	videoService := services.NewVideoService(gormDB, videoRepo, transcriptRepo, chunkRepo, jobRepo, clusterRepo, vectors, log)

	// Handlers
	log.Info("Setting up handlers...")
	videosHandler := handlers.NewVideosHandler(videoService)
	transcriptsHandler := handlers.NewTranscriptsHandler(videoService, summaryService)
	jobsHandler := handlers.NewJobsHandler(transcriptionService)
	embeddingsHandler := handlers.NewEmbeddingsHandler(embeddingService)
	searchHandler := handlers.NewSearchHandler(searchService)
	clustersHandler := handlers.NewClustersHandler(clusteringService)
	chatHandler := handlers.NewChatHandler(chatService)
	settingsHandler := handlers.NewSettingsHandler(settingRepo)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		VideosHandler:      videosHandler,
		TranscriptsHandler: transcriptsHandler,
		JobsHandler:        jobsHandler,
		EmbeddingsHandler:  embeddingsHandler,
		SearchHandler:      searchHandler,
		ClustersHandler:    clustersHandler,
		ChatHandler:        chatHandler,
		SettingsHandler:    settingsHandler,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := server.Run(ctx, ":"+port, router); err != nil {
		log.Error("Server failed", "error", err)
	}

	log.Info("Draining in-flight transcription jobs...")
	transcriptionService.Wait()
}
