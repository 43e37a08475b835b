package handler

import (
	"net/http"

	commentDto "anoa.com/studyhub/internal/modules/comment/dto"
	comment "anoa.com/studyhub/internal/modules/comment/service"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	resourceID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), resourceID, response.GetViewer(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	resourceID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commentDto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.service.CreateComment(c.Request.Context(), resourceID, response.GetViewer(c), c.ClientIP(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commentDto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.service.UpdateComment(c.Request.Context(), id, response.GetViewer(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, response.GetViewer(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
