package models

import (
	"time"
)

type AccountRole string

const (
	RoleMaster AccountRole = "master"
	RolePupil  AccountRole = "pupil"
)

// Valid reports whether the role is one of the two known roles. The role
// set is closed; there is no admin or mixed role.
func (r AccountRole) Valid() bool {
	return r == RoleMaster || r == RolePupil
}

// Account is a local user record resolved from the identity provider.
// The role is fixed at creation from the master email allow-list and is
// never re-derived on later logins.
type Account struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	SubjectID   string      `json:"-" gorm:"uniqueIndex;not null;size:128"`
	DisplayName string      `json:"display_name" gorm:"not null;size:256"`
	Email       string      `json:"email" gorm:"uniqueIndex;not null;size:256"`
	Role        AccountRole `json:"role" gorm:"not null;size:10"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Spaces      []Space      `json:"-" gorm:"foreignKey:OwnerID"`
	Submissions []Submission `json:"-" gorm:"foreignKey:PupilID"`
}

func (Account) TableName() string {
	return "accounts"
}
