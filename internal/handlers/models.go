package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/services"
)

type ModelsHandler struct {
	log    *logger.Logger
	models services.ModelCatalogService
}

func NewModelsHandler(baseLog *logger.Logger, models services.ModelCatalogService) *ModelsHandler {
	return &ModelsHandler{log: baseLog.With("handler", "ModelsHandler"), models: models}
}

// GET /api/models
func (h *ModelsHandler) ListModels(c *gin.Context) {
	RespondOK(c, h.models.Catalog())
}
