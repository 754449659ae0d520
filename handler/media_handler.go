package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"selfie/dto"
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	media *usecase.MediaService
}

func NewMediaHandler(media *usecase.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	media := rg.Group("/media")
	media.GET("", h.List)
	media.POST("", h.Upload)
	media.DELETE("/:id", middleware.ValidateIDParam("id"), h.Delete)
}

// RegisterPublicRoutes mounts the unauthenticated blob endpoint, so media
// can back <img> tags.
func (h *MediaHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/media/:id", middleware.ValidateIDParam("id"),
		middleware.CacheControlMiddleware(365*24*time.Hour), h.Serve)
}

func (h *MediaHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Missing file field")
		return
	}
	if header.Size > h.media.MaxBytes() {
		respondError(c, model.ErrMediaTooLarge)
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.BadRequest(c, "Unreadable upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.media.MaxBytes()+1))
	if err != nil {
		utils.BadRequest(c, "Unreadable upload")
		return
	}

	media, err := h.media.Upload(c.Request.Context(), middleware.Username(c), header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, dto.ToMediaResponse(media, utils.GetBaseURL(c)))
}

func (h *MediaHandler) List(c *gin.Context) {
	media, err := h.media.List(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToMediaResponses(media, utils.GetBaseURL(c)))
}

func (h *MediaHandler) Serve(c *gin.Context) {
	media, err := h.media.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Header("Cache-Control", "no-store")
		respondError(c, err)
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(media.Filename))
	c.Data(http.StatusOK, media.MimeType, media.Data)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.media.Delete(c.Request.Context(), middleware.Username(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}
