package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory/notes"
)

// NoteHandlers provides HTTP handlers for notes
type NoteHandlers struct {
	notes  notes.NoteManager
	logger *zap.Logger
}

func NewNoteHandlers(manager notes.NoteManager, logger *zap.Logger) *NoteHandlers {
	return &NoteHandlers{notes: manager, logger: logger}
}

func (h *NoteHandlers) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/notes")
	{
		group.GET("", h.ListNotes)
		group.POST("", h.CreateNote)
		group.DELETE("", h.DeleteNote)
	}
}

func (h *NoteHandlers) ListNotes(c *gin.Context) {
	list, err := h.notes.ListNotes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NoteHandlers) CreateNote(c *gin.Context) {
	var req notes.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	if _, err := h.notes.CreateNote(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "New note created"})
}

func (h *NoteHandlers) DeleteNote(c *gin.Context) {
	var req notes.DeleteNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Note ID required"})
		return
	}

	if err := h.notes.DeleteNote(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
