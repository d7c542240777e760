package models

import (
	"time"
)

// Submission records a pupil's single attempt at an assignment. There is
// no re-submission or versioning: the composite unique index rejects a
// second row for the same (assignment, pupil) pair, and DocumentPath is
// never overwritten once written.
type Submission struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssignmentID uint   `json:"assignment_id" gorm:"not null;uniqueIndex:idx_assignment_pupil"`
	PupilID      uint   `json:"pupil_id" gorm:"not null;uniqueIndex:idx_assignment_pupil"`
	DocumentPath string `json:"document_path" gorm:"not null;size:512"`
	Attempted    bool   `json:"attempted" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Assignment Assignment       `json:"-" gorm:"foreignKey:AssignmentID"`
	Pupil      Account          `json:"-" gorm:"foreignKey:PupilID"`
	Reports    []FeedbackReport `json:"-" gorm:"foreignKey:SubmissionID"`
}

func (Submission) TableName() string {
	return "submissions"
}
