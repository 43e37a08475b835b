package repository

import (
	"context"
	"errors"

	"anoa.com/studyhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRoomFull         = errors.New("study room is full")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrInvitationClosed = errors.New("invitation is no longer pending")
)

type StudyRoomRepository interface {
	// CreateWithOwner inserts room and its owner's ADMIN membership together.
	CreateWithOwner(ctx context.Context, room *entity.StudyRoom) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.StudyRoom, error)
	FindByCode(ctx context.Context, code string) (*entity.StudyRoom, error)
	// ListForUser returns rooms userID owns or belongs to, newest first,
	// together with their member counts.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.StudyRoom, map[uuid.UUID]int64, error)
	FindMember(ctx context.Context, roomID, userID uuid.UUID) (*entity.StudyRoomMember, error)
	CountMembers(ctx context.Context, roomID uuid.UUID) (int64, error)
	// AddMember enforces the room capacity under a row lock.
	AddMember(ctx context.Context, roomID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateInvitation(ctx context.Context, invitation *entity.StudyRoomInvitation) error
	HasPendingInvitation(ctx context.Context, roomID, receiverID uuid.UUID) (bool, error)
	FindInvitation(ctx context.Context, id uuid.UUID) (*entity.StudyRoomInvitation, error)
	ListPendingInvitations(ctx context.Context, receiverID uuid.UUID) ([]*entity.StudyRoomInvitation, error)
	// AcceptInvitation adds the receiver to the room and marks the
	// invitation ACCEPTED in one transaction.
	AcceptInvitation(ctx context.Context, id uuid.UUID) error
	DeclineInvitation(ctx context.Context, id uuid.UUID) error
}

type studyRoomRepository struct {
	db *gorm.DB
}

func NewStudyRoomRepository(db *gorm.DB) StudyRoomRepository {
	return &studyRoomRepository{db: db}
}

func (r *studyRoomRepository) CreateWithOwner(ctx context.Context, room *entity.StudyRoom) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "Members").Create(room).Error; err != nil {
			return err
		}
		owner := &entity.StudyRoomMember{
			StudyRoomID: room.ID,
			UserID:      room.OwnerID,
			Role:        entity.MemberRoleAdmin,
		}
		return tx.Omit("User").Create(owner).Error
	})
}

func (r *studyRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.StudyRoom, error) {
	var room entity.StudyRoom
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Members.User").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *studyRoomRepository) FindByCode(ctx context.Context, code string) (*entity.StudyRoom, error) {
	var room entity.StudyRoom
	if err := r.db.WithContext(ctx).Preload("Owner").First(&room, "room_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *studyRoomRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.StudyRoom, map[uuid.UUID]int64, error) {
	var rooms []*entity.StudyRoom
	memberOf := r.db.Model(&entity.StudyRoomMember{}).Select("study_room_id").Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rooms))
	if len(rooms) == 0 {
		return rooms, counts, nil
	}

	ids := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}

	var rows []struct {
		StudyRoomID uuid.UUID
		Count       int64
	}
	err = r.db.WithContext(ctx).
		Model(&entity.StudyRoomMember{}).
		Select("study_room_id, COUNT(*) AS count").
		Where("study_room_id IN ?", ids).
		Group("study_room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		counts[row.StudyRoomID] = row.Count
	}

	return rooms, counts, nil
}

func (r *studyRoomRepository) FindMember(ctx context.Context, roomID, userID uuid.UUID) (*entity.StudyRoomMember, error) {
	var member entity.StudyRoomMember
	err := r.db.WithContext(ctx).First(&member, "study_room_id = ? AND user_id = ?", roomID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *studyRoomRepository) CountMembers(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.StudyRoomMember{}).Where("study_room_id = ?", roomID).Count(&count).Error
	return count, err
}

func (r *studyRoomRepository) AddMember(ctx context.Context, roomID, userID uuid.UUID, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addMember(tx, roomID, userID, role)
	})
}

// addMember must run inside a transaction; the room row lock serializes
// concurrent joins so the capacity check holds.
func addMember(tx *gorm.DB, roomID, userID uuid.UUID, role string) error {
	var room entity.StudyRoom
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "max_members").First(&room, "id = ?", roomID).Error; err != nil {
		return err
	}

	var existing int64
	if err := tx.Model(&entity.StudyRoomMember{}).Where("study_room_id = ? AND user_id = ?", roomID, userID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrAlreadyMember
	}

	var count int64
	if err := tx.Model(&entity.StudyRoomMember{}).Where("study_room_id = ?", roomID).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(room.MaxMembers) {
		return ErrRoomFull
	}

	return tx.Omit("User").Create(&entity.StudyRoomMember{
		StudyRoomID: roomID,
		UserID:      userID,
		Role:        role,
	}).Error
}

func (r *studyRoomRepository) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("study_room_id = ? AND user_id = ?", roomID, userID).Delete(&entity.StudyRoomMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studyRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("study_room_id = ?", id).Delete(&entity.StudyRoomInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("study_room_id = ?", id).Delete(&entity.StudyRoomMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.StudyRoom{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *studyRoomRepository) CreateInvitation(ctx context.Context, invitation *entity.StudyRoomInvitation) error {
	return r.db.WithContext(ctx).Omit("StudyRoom", "Sender").Create(invitation).Error
}

func (r *studyRoomRepository) HasPendingInvitation(ctx context.Context, roomID, receiverID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.StudyRoomInvitation{}).
		Where("study_room_id = ? AND receiver_id = ? AND status = ?", roomID, receiverID, entity.InvitationPending).
		Count(&count).Error
	return count > 0, err
}

func (r *studyRoomRepository) FindInvitation(ctx context.Context, id uuid.UUID) (*entity.StudyRoomInvitation, error) {
	var invitation entity.StudyRoomInvitation
	err := r.db.WithContext(ctx).Preload("StudyRoom").Preload("Sender").First(&invitation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *studyRoomRepository) ListPendingInvitations(ctx context.Context, receiverID uuid.UUID) ([]*entity.StudyRoomInvitation, error) {
	var invitations []*entity.StudyRoomInvitation
	err := r.db.WithContext(ctx).
		Preload("StudyRoom").
		Preload("Sender").
		Where("receiver_id = ? AND status = ?", receiverID, entity.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (r *studyRoomRepository) AcceptInvitation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation entity.StudyRoomInvitation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invitation, "id = ?", id).Error; err != nil {
			return err
		}
		if invitation.Status != entity.InvitationPending {
			return ErrInvitationClosed
		}

		err := addMember(tx, invitation.StudyRoomID, invitation.ReceiverID, entity.MemberRoleMember)
		if err != nil && !errors.Is(err, ErrAlreadyMember) {
			return err
		}

		return tx.Model(&invitation).Update("status", entity.InvitationAccepted).Error
	})
}

func (r *studyRoomRepository) DeclineInvitation(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&entity.StudyRoomInvitation{}).
		Where("id = ? AND status = ?", id, entity.InvitationPending).
		Update("status", entity.InvitationDeclined)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvitationClosed
	}
	return nil
}
