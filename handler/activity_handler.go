package handler

import (
	"selfie/dto"
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activities *usecase.ActivityService
}

func NewActivityHandler(activities *usecase.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	activities := rg.Group("/activities")
	activities.GET("", h.List)
	activities.POST("", h.Create)
	activities.GET("/:id", middleware.ValidateIDParam("id"), h.Get)
	activities.PATCH("/:id", middleware.ValidateIDParam("id"), h.Update)
	activities.DELETE("/:id", middleware.ValidateIDParam("id"), h.Delete)
	activities.POST("/:id/toggle", middleware.ValidateIDParam("id"), h.Toggle)
}

func (h *ActivityHandler) respond(c *gin.Context, created bool, a *model.Activity) {
	resp := dto.ToActivityResponses([]*model.Activity{a}, middleware.Now(c))[0]
	if created {
		utils.Created(c, resp)
		return
	}
	utils.Success(c, resp)
}

func (h *ActivityHandler) List(c *gin.Context) {
	status, err := usecase.ParseActivityStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	now := middleware.Now(c)
	activities, err := h.activities.List(c.Request.Context(), middleware.Username(c), status, now)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToActivityResponses(activities, now))
}

func (h *ActivityHandler) Get(c *gin.Context) {
	a, err := h.activities.Get(c.Request.Context(), middleware.Username(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, false, a)
}

func (h *ActivityHandler) Create(c *gin.Context) {
	var in model.ActivityInput
	if !bindJSON(c, &in) {
		return
	}

	a, err := h.activities.Create(c.Request.Context(), middleware.Username(c), in, middleware.Now(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, true, a)
}

func (h *ActivityHandler) Update(c *gin.Context) {
	var in model.ActivityInput
	if !bindJSON(c, &in) {
		return
	}

	a, err := h.activities.Update(c.Request.Context(), middleware.Username(c), c.Param("id"), in, middleware.Now(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, false, a)
}

func (h *ActivityHandler) Toggle(c *gin.Context) {
	a, err := h.activities.Toggle(c.Request.Context(), middleware.Username(c), c.Param("id"), middleware.Now(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respond(c, false, a)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.activities.Delete(c.Request.Context(), middleware.Username(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}
