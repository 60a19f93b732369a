package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/services"
)

type EmbeddingsHandler struct {
	embedding services.EmbeddingService
}

func NewEmbeddingsHandler(embedding services.EmbeddingService) *EmbeddingsHandler {
	return &EmbeddingsHandler{embedding: embedding}
}

// POST /api/embeddings/video/:video_id
func (h *EmbeddingsHandler) EmbedVideo(c *gin.Context) {
	count, err := h.embedding.EmbedVideo(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"video_id": c.Param("video_id"),
		"chunks":   count,
	})
}

// POST /api/embeddings/embed-all
func (h *EmbeddingsHandler) EmbedAll(c *gin.Context) {
	result, err := h.embedding.EmbedAllUnembedded(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/embeddings/rebuild
func (h *EmbeddingsHandler) Rebuild(c *gin.Context) {
	result, err := h.embedding.RebuildAllEmbeddings(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/embeddings/status
func (h *EmbeddingsHandler) Status(c *gin.Context) {
	status, err := h.embedding.Status(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, status)
}
