package handler

import (
	"net/http"

	studyroomDto "anoa.com/studyhub/internal/modules/studyroom/dto"
	studyroom "anoa.com/studyhub/internal/modules/studyroom/service"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type StudyRoomHandler struct {
	service studyroom.StudyRoomService
}

func NewStudyRoomHandler(service studyroom.StudyRoomService) *StudyRoomHandler {
	return &StudyRoomHandler{service: service}
}

func (h *StudyRoomHandler) CreateRoom(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req studyroomDto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": room})
}

func (h *StudyRoomHandler) ListMyRooms(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rooms, err := h.service.ListMyRooms(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (h *StudyRoomHandler) GetRoom(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (h *StudyRoomHandler) JoinRoom(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req studyroomDto.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	room, err := h.service.JoinRoom(c.Request.Context(), userID, req.Code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (h *StudyRoomHandler) LeaveRoom(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.LeaveRoom(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left study room"})
}

func (h *StudyRoomHandler) DeleteRoom(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "study room deleted successfully"})
}

func (h *StudyRoomHandler) Invite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req studyroomDto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	invitation, err := h.service.Invite(c.Request.Context(), id, userID, req.ReceiverID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invitation})
}

func (h *StudyRoomHandler) ListInvitations(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invitations, err := h.service.ListInvitations(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invitations})
}

func (h *StudyRoomHandler) RespondInvitation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req studyroomDto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	invitation, err := h.service.RespondInvitation(c.Request.Context(), id, userID, *req.Accept)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invitation})
}
