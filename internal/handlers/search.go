package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tubebase-backend/internal/services"
)

var errMissingQuery = errors.New("query parameter q is required")

type SearchHandler struct {
	search services.SearchService
}

func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// GET /api/search?q=...&k=...
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", errMissingQuery)
		return
	}
	k, _ := strconv.Atoi(c.Query("k"))

	results, err := h.search.SearchSimilar(c.Request.Context(), query, k)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// GET /api/search/grouped?q=...&k=...
func (h *SearchHandler) SearchGrouped(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", errMissingQuery)
		return
	}
	k, _ := strconv.Atoi(c.Query("k"))

	results, err := h.search.SearchSimilarGrouped(c.Request.Context(), query, k)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
