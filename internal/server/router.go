package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/threadstream-backend/internal/handlers"
)

type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	ThreadHandler *handlers.ThreadHandler
	ModelsHandler *handlers.ModelsHandler
	SpendHandler  *handlers.SpendHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:3001",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Chat
		api.POST("/chat", cfg.ChatHandler.Chat)
		// Catalog
		api.GET("/models", cfg.ModelsHandler.ListModels)
		// Spend
		api.GET("/spend", cfg.SpendHandler.GetSpend)
		// Threads
		api.POST("/threads", cfg.ThreadHandler.CreateThread)
		api.GET("/threads", cfg.ThreadHandler.ListThreads)
		api.DELETE("/threads", cfg.ThreadHandler.DeleteAllThreads)
		api.GET("/threads/:thread_id", cfg.ThreadHandler.GetThread)
		api.PUT("/threads/:thread_id/title", cfg.ThreadHandler.UpdateThread)
		api.DELETE("/threads/:thread_id", cfg.ThreadHandler.DeleteThread)
		api.GET("/threads/:thread_id/messages", cfg.ThreadHandler.ListMessages)
		api.POST("/threads/:thread_id/messages", cfg.ThreadHandler.AddMessages)
		// Messages
		api.PUT("/messages/:message_id", cfg.ThreadHandler.UpdateMessage)
	}

	return router
}
