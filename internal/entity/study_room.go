package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"

	InvitationPending   = "PENDING"
	InvitationAccepted  = "ACCEPTED"
	InvitationDeclined  = "DECLINED"
	InvitationCancelled = "CANCELLED"
)

type StudyRoom struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	IsPrivate   bool              `gorm:"not null;default:false" json:"is_private"`
	MaxMembers  int               `gorm:"not null" json:"max_members"`
	RoomCode    string            `gorm:"size:6;uniqueIndex;not null" json:"room_code"`
	OwnerID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       User              `gorm:"foreignKey:OwnerID" json:"owner"`
	Members     []StudyRoomMember `gorm:"foreignKey:StudyRoomID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *StudyRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type StudyRoomMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudyRoomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_study_room_members_unique,priority:1" json:"study_room_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_study_room_members_unique,priority:2;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Role        string    `gorm:"size:10;not null" json:"role"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *StudyRoomMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

// StudyRoomInvitation allows one PENDING invitation per room and receiver.
type StudyRoomInvitation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudyRoomID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_study_room_invitations_pending,priority:1,where:status = 'PENDING'" json:"study_room_id"`
	StudyRoom   StudyRoom `gorm:"foreignKey:StudyRoomID;constraint:OnDelete:CASCADE" json:"study_room"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Sender      User      `gorm:"foreignKey:SenderID" json:"sender"`
	ReceiverID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_study_room_invitations_pending,priority:2,where:status = 'PENDING'" json:"receiver_id"`
	Status      string    `gorm:"size:10;not null;default:PENDING;index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *StudyRoomInvitation) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}
