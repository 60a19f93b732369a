package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message string              `json:"message" binding:"required"`
	History []services.ChatTurn `json:"history"`
}

// POST /api/chat
//
// Streams the answer as SSE data events carrying {"delta": "..."} chunks,
// closed by a {"done": true} event. Errors before the first delta surface as
// a normal JSON error response.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, _ := c.Writer.(http.Flusher)
	wroteAny := false

	writeEvent := func(payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		_, _ = c.Writer.Write([]byte("data: "))
		_, _ = c.Writer.Write(data)
		_, _ = c.Writer.Write([]byte("\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	}

	_, err := h.chat.StreamAnswer(c.Request.Context(), req.Message, req.History, func(delta string) {
		wroteAny = true
		writeEvent(gin.H{"delta": delta})
	})
	if err != nil {
		if !wroteAny {
			// Headers not flushed yet only when nothing streamed; still
			// answer on the event stream to keep the protocol uniform.
			writeEvent(gin.H{"error": err.Error()})
			return
		}
		writeEvent(gin.H{"error": err.Error()})
		return
	}

	writeEvent(gin.H{"done": true})
}
