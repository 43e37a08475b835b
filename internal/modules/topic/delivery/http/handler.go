package handler

import (
	"net/http"

	"anoa.com/studyhub/internal/modules/topic/dto"
	topic "anoa.com/studyhub/internal/modules/topic/service"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	service topic.TopicService
}

func NewTopicHandler(service topic.TopicService) *TopicHandler {
	return &TopicHandler{service: service}
}

func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics, err := h.service.ListTopics(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": topics})
}

func (h *TopicHandler) GetTopic(c *gin.Context) {
	t, err := h.service.GetTopic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	t, err := h.service.CreateTopic(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": t})
}

func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	t, err := h.service.UpdateTopic(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var q dto.DeleteTopicQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.DeleteTopic(c.Request.Context(), id, q.Cascade); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "topic deleted successfully"})
}

func (h *TopicHandler) CreateSubTopic(c *gin.Context) {
	topicID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	sub, err := h.service.CreateSubTopic(c.Request.Context(), topicID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sub})
}

func (h *TopicHandler) UpdateSubTopic(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	sub, err := h.service.UpdateSubTopic(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (h *TopicHandler) DeleteSubTopic(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteSubTopic(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subtopic deleted successfully"})
}
