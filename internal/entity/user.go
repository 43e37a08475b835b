package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the local record of an identity owned by the external provider.
// ExternalID is the provider's subject id.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"size:191;uniqueIndex;not null" json:"external_id"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Role       Role      `gorm:"size:10;not null;default:USER" json:"role"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
