package handler

import (
	"selfie/dto"
	"selfie/middleware"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	auth *usecase.AuthService
}

func NewSessionHandler(auth *usecase.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	sessions.GET("", h.List)
	sessions.DELETE("/:id", middleware.ValidateIDParam("id"), h.End)
	sessions.POST("/logout-all", h.LogoutAll)
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.auth.ListSessions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToSessionResponses(sessions, middleware.SessionID(c)))
}

func (h *SessionHandler) End(c *gin.Context) {
	if err := h.auth.EndSession(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}

// LogoutAll ends every session of the user, the current one included.
func (h *SessionHandler) LogoutAll(c *gin.Context) {
	ended, err := h.auth.LogoutAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"ended_sessions": ended})
}
