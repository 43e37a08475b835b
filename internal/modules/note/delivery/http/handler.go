package handler

import (
	"net/http"

	noteDto "anoa.com/studyhub/internal/modules/note/dto"
	note "anoa.com/studyhub/internal/modules/note/service"
	commonDto "anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	service note.NoteService
}

func NewNoteHandler(service note.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	var filter commonDto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	notes, err := h.service.ListNotes(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	n, err := h.service.GetNote(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": n})
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req noteDto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	n, err := h.service.CreateNote(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": n})
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req noteDto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	n, err := h.service.UpdateNote(c.Request.Context(), response.GetViewer(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": n})
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), response.GetViewer(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "note deleted successfully"})
}
