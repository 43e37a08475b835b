package handler

import (
	"net/http"

	problemDto "anoa.com/studyhub/internal/modules/problem/dto"
	problem "anoa.com/studyhub/internal/modules/problem/service"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProblemHandler struct {
	service problem.ProblemService
}

func NewProblemHandler(service problem.ProblemService) *ProblemHandler {
	return &ProblemHandler{service: service}
}

func (h *ProblemHandler) ListProblems(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	problems, err := h.service.ListProblems(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, problems)
}

func (h *ProblemHandler) GetProblem(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := h.service.GetProblem(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var req problemDto.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.CreateProblem(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": p})
}

func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req problemDto.UpdateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.UpdateProblem(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteProblem(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "problem deleted successfully"})
}

func (h *ProblemHandler) BulkImport(c *gin.Context) {
	var req problemDto.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.BulkImport(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
