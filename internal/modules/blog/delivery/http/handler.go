package handler

import (
	"net/http"

	blogDto "anoa.com/studyhub/internal/modules/blog/dto"
	blog "anoa.com/studyhub/internal/modules/blog/service"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	service blog.BlogService
}

func NewBlogHandler(service blog.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

func (h *BlogHandler) ListBlogs(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	blogs, err := h.service.ListBlogs(c.Request.Context(), response.GetViewer(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, blogs)
}

func (h *BlogHandler) GetBlog(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	b, err := h.service.GetBlog(c.Request.Context(), id, response.GetViewer(c), c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": b})
}

func (h *BlogHandler) CreateBlog(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req blogDto.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.CreateBlog(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": b})
}

func (h *BlogHandler) UpdateBlog(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req blogDto.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.UpdateBlog(c.Request.Context(), response.GetViewer(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": b})
}

func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteBlog(c.Request.Context(), response.GetViewer(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "blog deleted successfully"})
}
