package handler

import (
	"strconv"
	"time"

	"selfie/dto"
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

// defaultWindow is how far past "from" expansion runs when "to" is omitted.
const defaultWindow = 31 * 24 * time.Hour

type EventHandler struct {
	events *usecase.EventService
}

func NewEventHandler(events *usecase.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/events")
	events.GET("", h.List)
	events.POST("", h.Create)
	events.POST("/pomodoro/carry-over", h.CarryOver)
	events.GET("/:id", middleware.ValidateIDParam("id"), h.Get)
	events.PATCH("/:id", middleware.ValidateIDParam("id"), h.Update)
	events.DELETE("/:id", middleware.ValidateIDParam("id"), h.Delete)
	events.GET("/:id/occurrences", middleware.ValidateIDParam("id"), h.Occurrences)
	events.PATCH("/:id/pomodoro", middleware.ValidateIDParam("id"), h.RecordPomodoro)

	rg.GET("/pomodoro/plan", h.PlanPomodoro)
}

// window reads the from/to query pair. Missing bounds default to the start
// of the caller's virtual day and a month after from.
func window(c *gin.Context) (from, to time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		if from, err = parseTime("from", raw); err != nil {
			return
		}
	} else {
		y, m, d := middleware.Now(c).UTC().Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = parseTime("to", raw); err != nil {
			return
		}
	} else {
		to = from.Add(defaultWindow)
	}
	return
}

// List returns the visible events, or their expanded occurrences when a
// from/to window is given.
func (h *EventHandler) List(c *gin.Context) {
	username := middleware.Username(c)
	if c.Query("from") == "" && c.Query("to") == "" {
		events, err := h.events.List(c.Request.Context(), username)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, events)
		return
	}

	from, to, err := window(c)
	if err != nil {
		respondError(c, err)
		return
	}
	occ, err := h.events.Occurrences(c.Request.Context(), username, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToOccurrenceResponses(occ))
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), middleware.Username(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, event)
}

func (h *EventHandler) Occurrences(c *gin.Context) {
	from, to, err := window(c)
	if err != nil {
		respondError(c, err)
		return
	}
	occ, err := h.events.EventOccurrences(c.Request.Context(), middleware.Username(c), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToOccurrenceResponses(occ))
}

func (h *EventHandler) Create(c *gin.Context) {
	var in model.EventInput
	if !bindJSON(c, &in) {
		return
	}

	event, err := h.events.Create(c.Request.Context(), middleware.Username(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	var in model.EventInput
	if !bindJSON(c, &in) {
		return
	}

	event, err := h.events.Update(c.Request.Context(), middleware.Username(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), middleware.Username(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}

type PomodoroProgressRequest struct {
	CompletedCycles *int `json:"completed_cycles" binding:"required,min=0"`
}

func (h *EventHandler) RecordPomodoro(c *gin.Context) {
	var req PomodoroProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.events.RecordPomodoro(c.Request.Context(), middleware.Username(c), c.Param("id"), *req.CompletedCycles)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, event)
}

func (h *EventHandler) PlanPomodoro(c *gin.Context) {
	total, err := strconv.Atoi(c.Query("total"))
	if err != nil {
		utils.BadRequest(c, "total must be a number of minutes")
		return
	}
	plans, err := usecase.PlanPomodoro(total)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, plans)
}

// CarryOver moves the caller's unfinished Pomodoro sessions to today.
func (h *EventHandler) CarryOver(c *gin.Context) {
	moved, err := h.events.CarryOver(c.Request.Context(), middleware.Username(c), middleware.Now(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, moved)
}
