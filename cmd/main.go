package main

import (
	"fmt"
	"os"

	"github.com/yungbote/threadstream-backend/internal/clients/litellm"
	"github.com/yungbote/threadstream-backend/internal/db"
	"github.com/yungbote/threadstream-backend/internal/handlers"
	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/repos"
	"github.com/yungbote/threadstream-backend/internal/server"
	"github.com/yungbote/threadstream-backend/internal/services"
	"github.com/yungbote/threadstream-backend/internal/utils"
)

func main() {
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

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	threadRepo := repos.NewThreadRepo(thePG, log)
	messageRepo := repos.NewMessageRepo(thePG, log)

	// Clients
	llmClient, err := litellm.NewClient(log)
	if err != nil {
		log.Error("Could not init litellm client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	chatService := services.NewChatService(thePG, log, threadRepo, messageRepo, llmClient)
	threadService := services.NewThreadService(thePG, log, threadRepo, messageRepo)
	modelCatalogService := services.NewModelCatalogService(log)
	spendService, err := services.NewSpendService(log)
	if err != nil {
		log.Error("Could not init SpendService", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	chatHandler := handlers.NewChatHandler(log, chatService)
	threadHandler := handlers.NewThreadHandler(log, threadService)
	modelsHandler := handlers.NewModelsHandler(log, modelCatalogService)
	spendHandler := handlers.NewSpendHandler(log, spendService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ChatHandler:   chatHandler,
		ThreadHandler: threadHandler,
		ModelsHandler: modelsHandler,
		SpendHandler:  spendHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
