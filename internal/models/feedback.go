package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReportKind string

const (
	ReportFeedback  ReportKind = "feedback"
	ReportIntegrity ReportKind = "integrity"
)

// FeedbackReport stores the text produced by the generative backend for a
// submission, so masters can re-read reports and the space-level summary
// can aggregate them without re-calling the remote service.
type FeedbackReport struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	SubmissionID uint       `json:"submission_id" gorm:"not null;index"`
	Kind         ReportKind `json:"kind" gorm:"not null;size:16;index"`
	Body         string     `json:"body" gorm:"type:text;not null"`

	// Generation metadata: model name, prompt sizes, latency.
	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Submission Submission `json:"-" gorm:"foreignKey:SubmissionID"`
}

func (FeedbackReport) TableName() string {
	return "feedback_reports"
}
