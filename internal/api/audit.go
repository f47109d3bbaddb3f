package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory/audit"
)

// maxAuditLimit caps a single audit page
const maxAuditLimit = 1000

type AuditHandlers struct {
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewAuditHandlers(recorder audit.Recorder, logger *zap.Logger) *AuditHandlers {
	return &AuditHandlers{recorder: recorder, logger: logger}
}

func (h *AuditHandlers) RegisterRoutes(router gin.IRouter) {
	router.GET("/audit", h.ListEntries)
}

// ListEntries serves GET /audit?user_id=&limit=
func (h *AuditHandlers) ListEntries(c *gin.Context) {
	req := &audit.ListRequest{}

	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "user_id is malformed"})
			return
		}
		req.UserID = id
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a non-negative integer"})
			return
		}
		if limit > maxAuditLimit {
			limit = maxAuditLimit
		}
		req.Limit = limit
	}

	entries, err := h.recorder.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
