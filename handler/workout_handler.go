package handler

import (
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type WorkoutHandler struct {
	workouts *usecase.WorkoutService
}

func NewWorkoutHandler(workouts *usecase.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts}
}

func (h *WorkoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	workouts := rg.Group("/workouts")
	workouts.GET("", h.List)
	workouts.POST("", h.Create)
	workouts.GET("/:id", middleware.ValidateIDParam("id"), h.Get)
	workouts.PATCH("/:id", middleware.ValidateIDParam("id"), h.Update)
	workouts.DELETE("/:id", middleware.ValidateIDParam("id"), h.Delete)
}

func (h *WorkoutHandler) List(c *gin.Context) {
	workouts, err := h.workouts.List(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if workouts == nil {
		workouts = []*model.Workout{}
	}
	utils.Success(c, workouts)
}

func (h *WorkoutHandler) Get(c *gin.Context) {
	w, err := h.workouts.Get(c.Request.Context(), middleware.Username(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, w)
}

func (h *WorkoutHandler) Create(c *gin.Context) {
	var in model.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}

	w, err := h.workouts.Create(c.Request.Context(), middleware.Username(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, w)
}

func (h *WorkoutHandler) Update(c *gin.Context) {
	var in model.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}

	w, err := h.workouts.Update(c.Request.Context(), middleware.Username(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, w)
}

func (h *WorkoutHandler) Delete(c *gin.Context) {
	if err := h.workouts.Delete(c.Request.Context(), middleware.Username(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}
