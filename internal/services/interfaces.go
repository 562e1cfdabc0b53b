package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/scoring"
)

// ===== REQUEST DTOS =====

type CreateExamRequest struct {
	Title    string                  `json:"title" validate:"required,exam_title"`
	Module   models.ExamModule       `json:"module" validate:"required,exam_module"`
	Duration int                     `json:"duration" validate:"required,exam_duration"`
	Parts    []CreateExamPartRequest `json:"parts" validate:"omitempty,dive"`
}

type CreateExamPartRequest struct {
	PartNumber   int                     `json:"part_number" validate:"required,min=1"`
	Title        *string                 `json:"title"`
	Instructions *string                 `json:"instructions"`
	Questions    []CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type CreateQuestionRequest struct {
	Order             int                     `json:"order" validate:"min=0"`
	Type              models.QuestionType     `json:"type" validate:"required,question_type"`
	Text              string                  `json:"text"`
	Options           []models.QuestionOption `json:"options"`
	CorrectAnswerSpec json.RawMessage         `json:"correct_answer_spec"`
	ExtraMetadata     json.RawMessage         `json:"extra_metadata"`
	Points            int                     `json:"points" validate:"points_range"`
	ScoringMode       models.ScoringMode      `json:"scoring_mode" validate:"omitempty,scoring_mode"`
}

type UpdateExamRequest struct {
	Title    *string `json:"title" validate:"omitempty,exam_title"`
	Duration *int    `json:"duration" validate:"omitempty,exam_duration"`
}

type StartSessionRequest struct {
	ExamID    uint   `json:"exam_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

type SyncAnswersRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required"`
}

// GradeSessionRequest optionally carries the last answer batch the client
// held when submitting. It is merged over the synced answers before grading.
type GradeSessionRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

// ===== RESPONSE DTOS =====

type GradingResponse struct {
	SessionID  uint               `json:"session_id"`
	ExamID     uint               `json:"exam_id"`
	StudentID  string             `json:"student_id"`
	Module     models.ExamModule  `json:"module"`
	RawScore   int                `json:"raw_score"`
	TotalScore int                `json:"total_score"`
	BandScore  float64            `json:"band_score"`
	Breakdown  *scoring.Breakdown `json:"breakdown"`
	GradedAt   time.Time          `json:"graded_at"`
}

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64         `json:"total"`
}

type SessionListResponse struct {
	Sessions []*models.ExamSession `json:"sessions"`
	Total    int64                `json:"total"`
}

// ===== SERVICE INTERFACES =====

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*models.Exam, error)
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByIDWithTree(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, id uint, req *UpdateExamRequest) (*models.Exam, error)
	Activate(ctx context.Context, id uint) (*models.Exam, error)
	Archive(ctx context.Context, id uint) (*models.Exam, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error)
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*models.ExamSession, error)
	GetByID(ctx context.Context, id uint) (*models.ExamSession, error)
	SyncAnswers(ctx context.Context, id uint, req *SyncAnswersRequest) (*models.ExamSession, error)
	List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error)
}

type GradingService interface {
	// GradeSession submits and grades a session. Safe to call repeatedly:
	// a session graded twice yields the same stored result, and regrading
	// replaces it rather than duplicating it.
	GradeSession(ctx context.Context, sessionID uint, req *GradeSessionRequest) (*GradingResponse, error)
	Regrade(ctx context.Context, sessionID uint) (*GradingResponse, error)
	GetResult(ctx context.Context, sessionID uint) (*GradingResponse, error)
	GetReview(ctx context.Context, sessionID uint) (*scoring.Review, error)
}

// ServiceManager aggregates all services for handler wiring.
type ServiceManager interface {
	Exam() ExamService
	Session() SessionService
	Grading() GradingService
}
