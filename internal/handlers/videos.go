package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/services"
)

type VideosHandler struct {
	videos services.VideoService
}

func NewVideosHandler(videos services.VideoService) *VideosHandler {
	return &VideosHandler{videos: videos}
}

type createVideoRequest struct {
	VideoID         string `json:"video_id" binding:"required"`
	VideoTitle      string `json:"video_title" binding:"required"`
	VideoURL        string `json:"video_url"`
	ChannelID       string `json:"channel_id"`
	ChannelIDSource string `json:"channel_id_source"`
	ChannelName     string `json:"channel_name"`
	ChannelURL      string `json:"channel_url"`
	ScrapedAt       string `json:"scraped_at"`
}

// POST /api/videos
func (h *VideosHandler) Create(c *gin.Context) {
	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	video, err := h.videos.CreateVideo(c.Request.Context(), &domain.Video{
		VideoID:         req.VideoID,
		VideoTitle:      req.VideoTitle,
		VideoURL:        req.VideoURL,
		ChannelID:       req.ChannelID,
		ChannelIDSource: req.ChannelIDSource,
		ChannelName:     req.ChannelName,
		ChannelURL:      req.ChannelURL,
		ScrapedAt:       req.ScrapedAt,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondCreated(c, gin.H{"video": video})
}

// GET /api/videos
func (h *VideosHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	result, err := h.videos.ListVideos(c.Request.Context(), page, perPage)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"videos": result.Videos,
		"pagination": gin.H{
			"page":        result.Page,
			"per_page":    result.PerPage,
			"total":       result.Total,
			"total_pages": result.TotalPages,
			"has_prev":    result.Page > 1,
			"has_next":    result.Page < result.TotalPages,
		},
	})
}

// GET /api/videos/:video_id
func (h *VideosHandler) Get(c *gin.Context) {
	video, err := h.videos.GetVideo(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"video": video})
}

// DELETE /api/videos/:video_id
func (h *VideosHandler) Delete(c *gin.Context) {
	videoID := c.Param("video_id")
	if err := h.videos.DeleteVideo(c.Request.Context(), videoID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": videoID})
}
