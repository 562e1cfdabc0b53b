package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	Status    *models.ExamStatus `json:"status"`
	Module    *models.ExamModule `json:"module"`
	CreatedBy *string            `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	Status    models.SessionStatus `json:"status"`
	ExamID    *uint                `json:"exam_id"`
	StudentID *string              `json:"student_id"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`
	SortOrder string               `json:"sort_order"`
}

// ===== REPOSITORY INTERFACES =====

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	// GetByIDWithTree loads the full definition tree: parts in part order,
	// questions in question order.
	GetByIDWithTree(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.ExamSession) error
	GetByID(ctx context.Context, id uint) (*models.ExamSession, error)
	// GetByIDForUpdate takes a row lock on the session; the submit path uses
	// it to serialize against concurrent answer syncs.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.ExamSession, error)
	Update(ctx context.Context, session *models.ExamSession) error
	UpdateAnswers(ctx context.Context, id uint, answers []byte) error
	// GetActiveSession returns the student's in-progress session for the
	// exam, or (nil, nil) when there is none. Not-found is not an error.
	GetActiveSession(ctx context.Context, studentID string, examID uint) (*models.ExamSession, error)
	List(ctx context.Context, filters SessionFilters) ([]*models.ExamSession, int64, error)
}

type ResultRepository interface {
	// Upsert replaces the stored result for the session (update-or-create);
	// results are derived state and are never merged.
	Upsert(ctx context.Context, result *models.SessionResult) error
	GetBySession(ctx context.Context, sessionID uint) (*models.SessionResult, error)
	DeleteBySession(ctx context.Context, sessionID uint) error
}

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Exam() ExamRepository
	Session() SessionRepository
	Result() ResultRepository

	// WithTx runs fn inside a database transaction; the Repository handed to
	// fn is bound to that transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// IsNotFoundError reports whether err is the storage layer's missing-row
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
