package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tubebase-backend/internal/services"
)

type JobsHandler struct {
	transcription services.TranscriptionService
}

func NewJobsHandler(transcription services.TranscriptionService) *JobsHandler {
	return &JobsHandler{transcription: transcription}
}

type transcribeRequest struct {
	Provider string `json:"provider"`
	Force    bool   `json:"force"`
}

// POST /api/transcribe/:video_id
func (h *JobsHandler) StartTranscription(c *gin.Context) {
	var req transcribeRequest
	// Body is optional; defaults come from the settings table.
	_ = c.ShouldBindJSON(&req)

	job, err := h.transcription.StartTranscription(c.Request.Context(), c.Param("video_id"), req.Provider, req.Force)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondAccepted(c, gin.H{"job": job})
}

// GET /api/jobs/:id
func (h *JobsHandler) GetJobByID(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.transcription.GetJob(c.Request.Context(), jobID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs/video/:video_id
func (h *JobsHandler) GetActiveByVideo(c *gin.Context) {
	job, err := h.transcription.GetActiveJob(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs/video/:video_id/history
func (h *JobsHandler) ListByVideo(c *gin.Context) {
	jobs, err := h.transcription.ListJobs(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"jobs": jobs})
}
