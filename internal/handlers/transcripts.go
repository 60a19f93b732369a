package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/services"
)

type TranscriptsHandler struct {
	videos    services.VideoService
	summaries services.SummaryService
}

func NewTranscriptsHandler(videos services.VideoService, summaries services.SummaryService) *TranscriptsHandler {
	return &TranscriptsHandler{videos: videos, summaries: summaries}
}

// GET /api/transcripts/:video_id
func (h *TranscriptsHandler) Get(c *gin.Context) {
	transcript, err := h.videos.GetTranscript(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"transcript": transcript})
}

// GET /api/transcripts/:video_id/status
func (h *TranscriptsHandler) Status(c *gin.Context) {
	status, err := h.videos.GetTranscriptStatus(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, status)
}

// GET /api/transcripts/search?q=...&limit=...
func (h *TranscriptsHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	results, err := h.videos.SearchTranscripts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"query":   c.Query("q"),
		"results": results,
		"count":   len(results),
	})
}

type summaryRequest struct {
	SummaryType string `json:"summary_type"`
}

// POST /api/transcripts/:video_id/summary
func (h *TranscriptsHandler) GenerateSummary(c *gin.Context) {
	var req summaryRequest
	// Body is optional; default is the structured extraction.
	_ = c.ShouldBindJSON(&req)

	summary, err := h.summaries.GenerateSummary(c.Request.Context(), c.Param("video_id"), req.SummaryType)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}
