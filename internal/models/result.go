package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionResult is the persisted grading output for one session. It is
// derived state: every grading run recomputes it from the current answer map
// and replaces the stored row (update-or-create), never merges into it.
type SessionResult struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	SessionID uint `json:"session_id" gorm:"not null;uniqueIndex"`

	RawScore   int     `json:"raw_score" gorm:"not null"`
	TotalScore int     `json:"total_score" gorm:"not null"`
	BandScore  float64 `json:"band_score" gorm:"not null"`

	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`

	GradedAt  time.Time `json:"graded_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionResult) TableName() string {
	return "session_results"
}
