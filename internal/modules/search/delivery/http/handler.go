package handler

import (
	"net/http"

	searchDto "anoa.com/studyhub/internal/modules/search/dto"
	search "anoa.com/studyhub/internal/modules/search/service"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var query searchDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
