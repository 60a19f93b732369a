package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/data/repos"
	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/services"
)

type SettingsHandler struct {
	settings repos.SettingRepo
}

func NewSettingsHandler(settings repos.SettingRepo) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	all, err := h.settings.GetAll(c.Request.Context(), nil)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"settings": all})
}

type setSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// PUT /api/settings
func (h *SettingsHandler) Set(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := validateSetting(req.Key, req.Value); err != nil {
		RespondError(c, http.StatusBadRequest, "configuration_error", err)
		return
	}

	if err := h.settings.Set(c.Request.Context(), nil, req.Key, req.Value); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"key": req.Key, "value": req.Value})
}

// Unrecognized keys and values are configuration errors, not free-form
// storage.
func validateSetting(key, value string) error {
	switch key {
	case domain.SettingTranscriptionProvider:
		if value != services.ProviderAssemblyAI && value != services.ProviderGemini {
			return fmt.Errorf("unknown transcription provider %q", value)
		}
		return nil
	case domain.SettingGeminiModel:
		return nil
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}
