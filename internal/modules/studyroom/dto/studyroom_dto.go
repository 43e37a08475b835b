package dto

import (
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
)

// CreateRoomRequest leaves MaxMembers unvalidated; the service clamps it.
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	IsPrivate   bool   `json:"is_private"`
	MaxMembers  int    `json:"max_members"`
}

type JoinRoomRequest struct {
	Code string `json:"code" binding:"required,len=6,alphanum"`
}

type InviteRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
}

type RespondInvitationRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type MemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt string    `json:"joined_at"`
}

type RoomResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	IsPrivate   bool                     `json:"is_private"`
	MaxMembers  int                      `json:"max_members"`
	RoomCode    string                   `json:"room_code"`
	Owner       commonDto.AuthorResponse `json:"owner"`
	MemberCount int64                    `json:"member_count"`
	Members     []MemberResponse         `json:"members,omitempty"`
	CreatedAt   string                   `json:"created_at"`
}

type InvitationRoom struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type InvitationResponse struct {
	ID         uuid.UUID                `json:"id"`
	Room       InvitationRoom           `json:"room"`
	Sender     commonDto.AuthorResponse `json:"sender"`
	ReceiverID uuid.UUID                `json:"receiver_id"`
	Status     string                   `json:"status"`
	CreatedAt  string                   `json:"created_at"`
}
