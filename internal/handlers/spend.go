package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/services"
)

type SpendHandler struct {
	log   *logger.Logger
	spend services.SpendService
}

func NewSpendHandler(baseLog *logger.Logger, spend services.SpendService) *SpendHandler {
	return &SpendHandler{log: baseLog.With("handler", "SpendHandler"), spend: spend}
}

// GET /api/spend?start_date=...&end_date=...
//
// Proxies the gateway's spend report. The upstream JSON body passes through
// untouched; an upstream failure surfaces as a 502 with the upstream detail.
func (h *SpendHandler) GetSpend(c *gin.Context) {
	raw, err := h.spend.GetSpend(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			RespondError(c, http.StatusBadGateway, "spend_upstream_error", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "spend_failed", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
