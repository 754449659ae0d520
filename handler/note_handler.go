package handler

import (
	"selfie/dto"
	"selfie/middleware"
	"selfie/model"
	"selfie/usecase"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	notes *usecase.NotesService
}

func NewNoteHandler(notes *usecase.NotesService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func (h *NoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notes := rg.Group("/notes")
	notes.GET("", h.List)
	notes.POST("", h.Create)
	notes.GET("/categories", h.Categories)
	notes.GET("/:id", middleware.ValidateIDParam("id"), h.Get)
	notes.PATCH("/:id", middleware.ValidateIDParam("id"), h.Update)
	notes.DELETE("/:id", middleware.ValidateIDParam("id"), h.Delete)
	notes.POST("/:id/duplicate", middleware.ValidateIDParam("id"), h.Duplicate)
}

func (h *NoteHandler) List(c *gin.Context) {
	username := middleware.Username(c)
	opts, err := usecase.ParseNoteListOptions(username, c.Query("category"), c.Query("sort"), c.Query("order"))
	if err != nil {
		respondError(c, err)
		return
	}

	notes, err := h.notes.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToNoteResponses(notes, username))
}

func (h *NoteHandler) Categories(c *gin.Context) {
	categories, err := h.notes.Categories(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	utils.Success(c, categories)
}

func (h *NoteHandler) Get(c *gin.Context) {
	username := middleware.Username(c)
	note, err := h.notes.Get(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToNoteResponse(note, username))
}

func (h *NoteHandler) Create(c *gin.Context) {
	var in model.NoteInput
	if !bindJSON(c, &in) {
		return
	}

	username := middleware.Username(c)
	note, err := h.notes.Create(c.Request.Context(), username, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, dto.ToNoteResponse(note, username))
}

func (h *NoteHandler) Update(c *gin.Context) {
	var in model.NoteInput
	if !bindJSON(c, &in) {
		return
	}

	username := middleware.Username(c)
	note, err := h.notes.Update(c.Request.Context(), username, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.ToNoteResponse(note, username))
}

func (h *NoteHandler) Duplicate(c *gin.Context) {
	username := middleware.Username(c)
	note, err := h.notes.Duplicate(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, dto.ToNoteResponse(note, username))
}

func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), middleware.Username(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.NoContent(c)
}
