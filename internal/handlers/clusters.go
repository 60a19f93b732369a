package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/services"
)

type ClustersHandler struct {
	clustering services.ClusteringService
}

func NewClustersHandler(clustering services.ClusteringService) *ClustersHandler {
	return &ClustersHandler{clustering: clustering}
}

type buildClustersRequest struct {
	K int `json:"k"`
}

// POST /api/clusters/build
func (h *ClustersHandler) Build(c *gin.Context) {
	var req buildClustersRequest
	// Body is optional; k defaults from the video count.
	_ = c.ShouldBindJSON(&req)

	result, err := h.clustering.BuildClusters(c.Request.Context(), req.K)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/clusters
func (h *ClustersHandler) Get(c *gin.Context) {
	clusters, err := h.clustering.GetClusters(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"clusters": clusters})
}
