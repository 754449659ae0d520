package handler

import (
	"selfie/middleware"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type TwoFactorHandler struct {
	twoFactor *usecase.TwoFactorService
}

func NewTwoFactorHandler(twoFactor *usecase.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

func (h *TwoFactorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tfa := rg.Group("/2fa")
	tfa.POST("/setup", h.Setup)
	tfa.POST("/enable", h.Enable)
	tfa.POST("/disable", h.Disable)
}

type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *TwoFactorHandler) Setup(c *gin.Context) {
	setup, err := h.twoFactor.Setup(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, setup)
}

func (h *TwoFactorHandler) Enable(c *gin.Context) {
	var req TwoFactorCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	codes, err := h.twoFactor.Enable(c.Request.Context(), middleware.UserID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"recovery_codes": codes})
}

func (h *TwoFactorHandler) Disable(c *gin.Context) {
	var req TwoFactorCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.twoFactor.Disable(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}
