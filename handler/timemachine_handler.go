package handler

import (
	"selfie/middleware"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type TimeMachineHandler struct {
	users *usecase.UserService
}

func NewTimeMachineHandler(users *usecase.UserService) *TimeMachineHandler {
	return &TimeMachineHandler{users: users}
}

func (h *TimeMachineHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/timemachine", h.Get)
	rg.PUT("/timemachine", h.Travel)
	rg.DELETE("/timemachine", h.Reset)
}

type TravelRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *TimeMachineHandler) Get(c *gin.Context) {
	state, err := h.users.TimeMachine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, state)
}

func (h *TimeMachineHandler) Travel(c *gin.Context) {
	var req TravelRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := parseTime("date", req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := h.users.TravelTo(c.Request.Context(), middleware.UserID(c), target)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, state)
}

func (h *TimeMachineHandler) Reset(c *gin.Context) {
	state, err := h.users.ResetTimeMachine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, state)
}
