package handler

import (
	"net/http"
	"strings"

	"selfie/config"
	"selfie/dto"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

// RefreshCookiePath scopes the refresh cookie to the auth endpoints.
const RefreshCookiePath = "/auth"

type AuthHandler struct {
	auth *usecase.AuthService
	cfg  config.AuthConfig
}

func NewAuthHandler(auth *usecase.AuthService, cfg config.AuthConfig) *AuthHandler {
	if cfg.CookieName == "" {
		cfg.CookieName = "refresh_token"
	}
	return &AuthHandler{auth: auth, cfg: cfg}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

func clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(h.cfg.RefreshTokenTTL.Seconds()),
		RefreshCookiePath, h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, RefreshCookiePath, h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *AuthHandler) authResponse(c *gin.Context, res *usecase.AuthResult) dto.AuthResponse {
	profile := dto.ToUserProfileResponse(res.User, utils.GetBaseURL(c), dto.ProfileLinks())
	session := dto.ToSessionResponse(res.Session, res.Session.SessionID)
	return dto.AuthResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(res.AccessExpiresIn.Seconds()),
		User:        &profile,
		Session:     &session,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	utils.Created(c, h.authResponse(c, res))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if res.RequiresTwoFactor {
		c.JSON(http.StatusOK, &utils.Response{
			Message: "Two-factor code required",
			Data:    gin.H{"requires_2fa": true},
		})
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	utils.Success(c, h.authResponse(c, res))
}

// Refresh trades the refresh cookie for a new access token. Rejected refresh
// tokens clear the cookie so the client falls back to a full login; other
// failures leave it in place for a later retry.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(h.cfg.CookieName)
	if token == "" {
		utils.Unauthorized(c, model.ErrTokenMissing.Error())
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		if tokenRejected(err) {
			h.clearRefreshCookie(c)
		}
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	utils.Success(c, dto.AuthResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(res.AccessExpiresIn.Seconds()),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(h.cfg.CookieName)
	access := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		access = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if err := h.auth.Logout(c.Request.Context(), refresh, access); err != nil {
		respondError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	utils.NoContent(c)
}
