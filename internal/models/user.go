package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash *string    `json:"-"`
	Avatar       *string    `json:"avatar"`
	Bio          *string    `json:"bio,omitempty"`
	Role         Role       `gorm:"size:20;not null;default:'user'" json:"role"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSocialite links a user to an identity on an external provider.
type UserSocialite struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Provider   string    `gorm:"size:30;not null;uniqueIndex:idx_socialite_provider_id" json:"provider"`
	ProviderID string    `gorm:"size:100;not null;uniqueIndex:idx_socialite_provider_id" json:"providerId"`
	CreatedAt  time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *UserSocialite) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

const ProviderDiscord = "discord"

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
