package handler

import (
	"net/http"

	resourceDto "anoa.com/studyhub/internal/modules/resource/dto"
	resource "anoa.com/studyhub/internal/modules/resource/service"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	service resource.ResourceService
}

func NewResourceHandler(service resource.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

func (h *ResourceHandler) ListResources(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	resources, err := h.service.ListResources(c.Request.Context(), response.GetViewer(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	r, err := h.service.GetResource(c.Request.Context(), id, response.GetViewer(c), c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": r})
}

func (h *ResourceHandler) CreateResource(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req resourceDto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	r, err := h.service.CreateResource(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": r})
}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req resourceDto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	r, err := h.service.UpdateResource(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": r})
}

func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteResource(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "resource deleted successfully"})
}

func (h *ResourceHandler) Download(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	d, err := h.service.RecordDownload(c.Request.Context(), id, response.GetViewer(c), c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": d})
}

func (h *ResourceHandler) Rate(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req resourceDto.RateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	rating, err := h.service.RateResource(c.Request.Context(), id, response.GetViewer(c), req.Score)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}
