package models

import (
	"time"
)

// Assignment is a task posted in a space. DueDate and the reference
// document are both optional; a reference document is required before
// AI feedback can be generated for submissions.
type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SpaceID     uint       `json:"space_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null;size:256" validate:"required,max=256"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`

	// Path of the reference solution within the document store, relative
	// to the upload root.
	ReferenceDocPath *string `json:"reference_doc_path" gorm:"size:512"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Space       Space        `json:"-" gorm:"foreignKey:SpaceID"`
	Submissions []Submission `json:"-" gorm:"foreignKey:AssignmentID"`
}

func (Assignment) TableName() string {
	return "assignments"
}
