package models

import (
	"time"
)

// Space is a classroom container. Pupils enroll by presenting the join
// code; the code is random hex and unique by construction, backed by a
// uniqueness constraint with retry-on-collision at creation.
type Space struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:256" validate:"required,max=256"`
	JoinCode string `json:"join_code" gorm:"uniqueIndex;not null;size:32"`
	OwnerID  uint   `json:"owner_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner       Account      `json:"-" gorm:"foreignKey:OwnerID"`
	Members     []Membership `json:"-" gorm:"foreignKey:SpaceID"`
	Assignments []Assignment `json:"-" gorm:"foreignKey:SpaceID"`
}

func (Space) TableName() string {
	return "spaces"
}

// Membership is a pupil's enrollment in a space. The composite unique
// index is the real idempotency guarantee for concurrent joins; the
// service-level pre-check only exists for the friendly no-op path.
type Membership struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	SpaceID   uint `json:"space_id" gorm:"not null;uniqueIndex:idx_space_account"`
	AccountID uint `json:"account_id" gorm:"not null;uniqueIndex:idx_space_account"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Space   Space   `json:"-" gorm:"foreignKey:SpaceID"`
	Account Account `json:"-" gorm:"foreignKey:AccountID"`
}

func (Membership) TableName() string {
	return "memberships"
}
