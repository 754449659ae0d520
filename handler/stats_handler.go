package handler

import (
	"selfie/middleware"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *usecase.StatsService
}

func NewStatsHandler(stats *usecase.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Get)
}

func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.stats.ForUser(c.Request.Context(), middleware.UserID(c), middleware.Now(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, stats)
}
