package handler

import (
	"errors"
	"net/http"
	"strconv"

	"selfie/dto"
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *usecase.UserService
}

func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.GET("", h.Search)
	users.GET("/me", h.Profile)
	users.PATCH("/me", h.UpdateProfile)
	users.POST("/me/password", h.ChangePassword)
	users.DELETE("/me", h.Delete)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,password"`
}

func (h *UserHandler) respondProfile(c *gin.Context, user *model.User) {
	utils.Success(c, dto.ToUserProfileResponse(user, utils.GetBaseURL(c), dto.ProfileLinks()))
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in model.UserUpdate
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user)
}

// ChangePassword answers a wrong current password with 400, not 401, so
// clients do not mistake it for an expired access token.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), middleware.UserID(c), middleware.SessionID(c),
		req.CurrentPassword, req.NewPassword)
	if errors.Is(err, model.ErrInvalidCredentials) {
		utils.BadRequest(c, "Current password is incorrect")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, &utils.Response{Message: "Password updated, other sessions were ended"})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}

// Search lists usernames starting with q, for group lists and note sharing.
func (h *UserHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	names, err := h.users.SearchUsernames(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	utils.Success(c, names)
}
