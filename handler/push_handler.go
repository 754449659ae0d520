package handler

import (
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	push *usecase.PushService
}

func NewPushHandler(push *usecase.PushService) *PushHandler {
	return &PushHandler{push: push}
}

func (h *PushHandler) RegisterRoutes(rg *gin.RouterGroup) {
	push := rg.Group("/push")
	push.GET("/public-key", h.PublicKey)
	push.POST("/subscriptions", h.Subscribe)
	push.DELETE("/subscriptions", h.Unsubscribe)
	push.POST("/test", h.SendTest)
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

func (h *PushHandler) PublicKey(c *gin.Context) {
	key, err := h.push.PublicKey()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"public_key": key})
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	var sub model.PushSubscription
	if !bindJSON(c, &sub) {
		return
	}
	sub.UserAgent = c.Request.UserAgent()

	if err := h.push.Subscribe(c.Request.Context(), middleware.UserID(c), sub); err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, gin.H{"endpoint": sub.Endpoint})
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req UnsubscribeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.push.Unsubscribe(c.Request.Context(), middleware.UserID(c), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}

func (h *PushHandler) SendTest(c *gin.Context) {
	sent, err := h.push.SendTest(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"delivered": sent})
}
