package handler

import (
	"net/http"

	upload "anoa.com/studyhub/internal/modules/upload/service"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service upload.UploadService
}

func NewUploadHandler(service upload.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.Validation("file is required"))
		return
	}

	result, err := h.service.Upload(c.Request.Context(), userID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
