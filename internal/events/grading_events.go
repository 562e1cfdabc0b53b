package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/linguabridge/exam-grading-service/internal/models"
)

type EventType string

const (
	EventSessionGraded   EventType = "session.graded"
	EventSessionRegraded EventType = "session.regraded"
)

const eventSource = "exam-grading-service"
const eventVersion = "1.0"

// GradingEvent is emitted after a session's result has been persisted.
// Downstream consumers (notification, reporting) subscribe to it; delivery
// is entirely their concern.
type GradingEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	SessionID  uint              `json:"session_id"`
	ExamID     uint              `json:"exam_id"`
	StudentID  string            `json:"student_id"`
	Module     models.ExamModule `json:"module"`
	RawScore   int               `json:"raw_score"`
	TotalScore int               `json:"total_score"`
	BandScore  float64           `json:"band_score"`
}

// NewGradingEvent builds a fully-populated event envelope.
func NewGradingEvent(eventType EventType, session *models.ExamSession, result *models.SessionResult, module models.ExamModule) *GradingEvent {
	now := time.Now()
	return &GradingEvent{
		ID:         watermill.NewUUID(),
		Type:       eventType,
		Source:     eventSource,
		Version:    eventVersion,
		Timestamp:  now,
		SessionID:  session.ID,
		ExamID:     session.ExamID,
		StudentID:  session.StudentID,
		Module:     module,
		RawScore:   result.RawScore,
		TotalScore: result.TotalScore,
		BandScore:  result.BandScore,
	}
}
