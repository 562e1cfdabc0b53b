package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
	SessionAbandoned  SessionStatus = "abandoned"
	SessionTimedOut   SessionStatus = "timeout"
)

const (
	SessionEndReasonTimeout   = "time_out"
	SessionEndReasonCompleted = "completed"
)

// ExamSession tracks one student's pass through an exam. Answers is the
// sparse composite-key answer map ({questionID}__gap1, {questionID}__r0c0,
// {questionID}__B, ...); absent keys mean unanswered. Sync writes merge into
// it key-by-key and never overwrite the map wholesale.
type ExamSession struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	ExamID    uint          `json:"exam_id" gorm:"not null;index"`
	StudentID string        `json:"student_id" gorm:"not null;index;size:255"`
	Status    SessionStatus `json:"status" gorm:"default:in_progress;index"`

	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	// Timing
	StartedAt   time.Time  `json:"started_at"`
	EndTime     *time.Time `json:"end_time"`
	SubmittedAt *time.Time `json:"submitted_at"`
	TimeSpent   *int       `json:"time_spent"` // seconds
	EndReason   *string    `json:"end_reason" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Exam   Exam           `json:"exam" gorm:"foreignKey:ExamID"`
	Result *SessionResult `json:"result,omitempty" gorm:"foreignKey:SessionID"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}
