package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/studyhub/internal/entity"
	notification "anoa.com/studyhub/internal/modules/notification/service"
	"anoa.com/studyhub/internal/modules/studyroom/dto"
	"anoa.com/studyhub/internal/modules/studyroom/repository"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/database"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeAttempts = 10

// UserFinder looks up invitation receivers.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type StudyRoomService interface {
	CreateRoom(ctx context.Context, ownerID uuid.UUID, req dto.CreateRoomRequest) (*dto.RoomResponse, error)
	ListMyRooms(ctx context.Context, userID uuid.UUID) ([]dto.RoomResponse, error)
	GetRoom(ctx context.Context, id, userID uuid.UUID) (*dto.RoomResponse, error)
	JoinRoom(ctx context.Context, userID uuid.UUID, code string) (*dto.RoomResponse, error)
	LeaveRoom(ctx context.Context, id, userID uuid.UUID) error
	DeleteRoom(ctx context.Context, id, userID uuid.UUID) error
	Invite(ctx context.Context, roomID, senderID, receiverID uuid.UUID) (*dto.InvitationResponse, error)
	ListInvitations(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error)
	RespondInvitation(ctx context.Context, id, userID uuid.UUID, accept bool) (*dto.InvitationResponse, error)
}

type studyRoomService struct {
	repo     repository.StudyRoomRepository
	users    UserFinder
	notifier notification.Notifier
	log      *zap.Logger
}

func NewStudyRoomService(repo repository.StudyRoomRepository, users UserFinder, notifier notification.Notifier, log *zap.Logger) StudyRoomService {
	return &studyRoomService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

func (s *studyRoomService) CreateRoom(ctx context.Context, ownerID uuid.UUID, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	room := &entity.StudyRoom{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsPrivate:   req.IsPrivate,
		MaxMembers:  clampMaxMembers(req.MaxMembers),
		OwnerID:     ownerID,
	}
	if room.Name == "" {
		return nil, apperror.Validation("name is required")
	}

	for attempt := 1; ; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		room.RoomCode = code

		err = s.repo.CreateWithOwner(ctx, room)
		if err == nil {
			break
		}
		if !database.IsDuplicate(err) {
			return nil, err
		}
		if attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("could not allocate a unique room code: %w", apperror.ErrConflict)
		}
		s.log.Debug("room code collision, retrying", zap.Int("attempt", attempt))
	}

	created, err := s.repo.FindByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	resp := toRoomResponse(created, int64(len(created.Members)))
	return &resp, nil
}

func (s *studyRoomService) ListMyRooms(ctx context.Context, userID uuid.UUID) ([]dto.RoomResponse, error) {
	rooms, counts, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomResponse(room, counts[room.ID]))
	}
	return out, nil
}

func (s *studyRoomService) findRoom(ctx context.Context, id uuid.UUID) (*entity.StudyRoom, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("study room not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return room, nil
}

func (s *studyRoomService) GetRoom(ctx context.Context, id, userID uuid.UUID) (*dto.RoomResponse, error) {
	room, err := s.findRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	// Private rooms are indistinguishable from missing ones to outsiders.
	if room.IsPrivate && memberRole(room, userID) == "" {
		return nil, fmt.Errorf("study room not found: %w", apperror.ErrNotFound)
	}

	resp := toRoomResponse(room, int64(len(room.Members)))
	return &resp, nil
}

func (s *studyRoomService) JoinRoom(ctx context.Context, userID uuid.UUID, code string) (*dto.RoomResponse, error) {
	room, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("no study room with that code: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.repo.AddMember(ctx, room.ID, userID, entity.MemberRoleMember); err != nil {
		return nil, mapMembershipError(err)
	}

	return s.GetRoom(ctx, room.ID, userID)
}

func (s *studyRoomService) LeaveRoom(ctx context.Context, id, userID uuid.UUID) error {
	room, err := s.findRoom(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID == userID {
		return apperror.Validation("the owner cannot leave the room; delete it instead")
	}

	if err := s.repo.RemoveMember(ctx, id, userID); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("you are not a member of this room: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *studyRoomService) DeleteRoom(ctx context.Context, id, userID uuid.UUID) error {
	room, err := s.findRoom(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != userID {
		return fmt.Errorf("only the owner can delete the room: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return fmt.Errorf("study room not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *studyRoomService) Invite(ctx context.Context, roomID, senderID, receiverID uuid.UUID) (*dto.InvitationResponse, error) {
	if senderID == receiverID {
		return nil, apperror.Validation("you cannot invite yourself")
	}

	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if memberRole(room, senderID) != entity.MemberRoleAdmin {
		return nil, fmt.Errorf("only room admins can invite: %w", apperror.ErrForbidden)
	}

	receiver, err := s.users.FindByID(ctx, receiverID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if memberRole(room, receiverID) != "" {
		return nil, fmt.Errorf("user is already a member: %w", apperror.ErrConflict)
	}

	pending, err := s.repo.HasPendingInvitation(ctx, roomID, receiverID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("user already has a pending invitation: %w", apperror.ErrConflict)
	}

	invitation := &entity.StudyRoomInvitation{
		StudyRoomID: roomID,
		SenderID:    senderID,
		ReceiverID:  receiver.ID,
		Status:      entity.InvitationPending,
	}
	if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("user already has a pending invitation: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	s.notifyInvite(ctx, room, invitation)

	saved, err := s.repo.FindInvitation(ctx, invitation.ID)
	if err != nil {
		return nil, err
	}
	resp := toInvitationResponse(saved)
	return &resp, nil
}

func (s *studyRoomService) notifyInvite(ctx context.Context, room *entity.StudyRoom, invitation *entity.StudyRoomInvitation) {
	if s.notifier == nil {
		return
	}

	sender := "Someone"
	for _, m := range room.Members {
		if m.UserID == invitation.SenderID && m.User.Name != "" {
			sender = m.User.Name
		}
	}

	err := s.notifier.Notify(ctx, &entity.Notification{
		UserID:     invitation.ReceiverID,
		ActorID:    &invitation.SenderID,
		EntityID:   invitation.ID,
		EntityType: "study_room_invitation",
		Type:       entity.NotificationStudyRoomInvite,
		Message:    fmt.Sprintf("%s invited you to join %s", sender, room.Name),
	})
	if err != nil {
		s.log.Warn("failed to notify invitation receiver",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err))
	}
}

func (s *studyRoomService) ListInvitations(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error) {
	invitations, err := s.repo.ListPendingInvitations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	return out, nil
}

func (s *studyRoomService) RespondInvitation(ctx context.Context, id, userID uuid.UUID, accept bool) (*dto.InvitationResponse, error) {
	invitation, err := s.repo.FindInvitation(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, fmt.Errorf("invitation not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if invitation.ReceiverID != userID {
		return nil, fmt.Errorf("this invitation is not yours: %w", apperror.ErrForbidden)
	}
	if invitation.Status != entity.InvitationPending {
		return nil, fmt.Errorf("invitation already %s: %w", strings.ToLower(invitation.Status), apperror.ErrConflict)
	}

	if accept {
		err = s.repo.AcceptInvitation(ctx, id)
	} else {
		err = s.repo.DeclineInvitation(ctx, id)
	}
	if err != nil {
		return nil, mapMembershipError(err)
	}

	updated, err := s.repo.FindInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toInvitationResponse(updated)
	return &resp, nil
}

func mapMembershipError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAlreadyMember):
		return fmt.Errorf("%s: %w", err.Error(), apperror.ErrConflict)
	case errors.Is(err, repository.ErrRoomFull):
		return fmt.Errorf("%s: %w", err.Error(), apperror.ErrConflict)
	case errors.Is(err, repository.ErrInvitationClosed):
		return fmt.Errorf("%s: %w", err.Error(), apperror.ErrConflict)
	case database.IsNotFound(err):
		return fmt.Errorf("study room not found: %w", apperror.ErrNotFound)
	default:
		return err
	}
}

func memberRole(room *entity.StudyRoom, userID uuid.UUID) string {
	for _, m := range room.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

func toRoomResponse(room *entity.StudyRoom, memberCount int64) dto.RoomResponse {
	resp := dto.RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		IsPrivate:   room.IsPrivate,
		MaxMembers:  room.MaxMembers,
		RoomCode:    room.RoomCode,
		Owner:       commonDto.AuthorResponse{ID: room.OwnerID, Name: room.Owner.Name},
		MemberCount: memberCount,
		CreatedAt:   commonDto.FormatTime(room.CreatedAt),
	}
	for _, m := range room.Members {
		resp.Members = append(resp.Members, dto.MemberResponse{
			UserID:   m.UserID,
			Name:     m.User.Name,
			Role:     m.Role,
			JoinedAt: commonDto.FormatTime(m.JoinedAt),
		})
	}
	return resp
}

func toInvitationResponse(inv *entity.StudyRoomInvitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:         inv.ID,
		Room:       dto.InvitationRoom{ID: inv.StudyRoomID, Name: inv.StudyRoom.Name},
		Sender:     commonDto.AuthorResponse{ID: inv.SenderID, Name: inv.Sender.Name},
		ReceiverID: inv.ReceiverID,
		Status:     inv.Status,
		CreatedAt:  commonDto.FormatTime(inv.CreatedAt),
	}
}
