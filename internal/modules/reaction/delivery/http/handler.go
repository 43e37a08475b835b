package handler

import (
	"net/http"

	reactionDto "anoa.com/studyhub/internal/modules/reaction/dto"
	reaction "anoa.com/studyhub/internal/modules/reaction/service"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	service reaction.ReactionService
}

func NewReactionHandler(service reaction.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	commentID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req reactionDto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.ReactToComment(c.Request.Context(), commentID, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
