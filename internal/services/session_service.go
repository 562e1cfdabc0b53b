package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/scoring"
	"github.com/linguabridge/exam-grading-service/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSessionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SessionService {
	return &sessionService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*models.ExamSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam.Status != models.ExamStatusActive {
		return nil, ErrExamNotActive
	}

	existing, err := s.repo.Session().GetActiveSession(ctx, req.StudentID, req.ExamID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active sessions: %w", err)
	}
	if existing != nil {
		return nil, ErrSessionAlreadyActive
	}

	now := time.Now()
	endTime := now.Add(time.Duration(exam.Duration) * time.Minute)
	session := &models.ExamSession{
		ExamID:    req.ExamID,
		StudentID: req.StudentID,
		Status:    models.SessionInProgress,
		Answers:   datatypes.JSON([]byte(`{}`)),
		StartedAt: now,
		EndTime:   &endTime,
	}

	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session started",
		"session_id", session.ID, "exam_id", req.ExamID, "student_id", req.StudentID)
	return session, nil
}

func (s *sessionService) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	session, err := s.repo.Session().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// SyncAnswers merges an incremental answer batch into the session's stored
// answer map. Each sync carries only the keys the client changed; merging is
// key-by-key so parallel batches for different questions never clobber each
// other.
func (s *sessionService) SyncAnswers(ctx context.Context, id uint, req *SyncAnswersRequest) (*models.ExamSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var session *models.ExamSession
	err := s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Session().GetByIDForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if locked.Status != models.SessionInProgress {
			return ErrSessionNotActive
		}
		if locked.EndTime != nil && time.Now().After(*locked.EndTime) {
			return ErrSessionTimeExpired
		}

		stored, err := scoring.DecodeAnswerMap(locked.Answers)
		if err != nil {
			return fmt.Errorf("stored answer map is corrupt: %w", err)
		}
		scoring.Merge(stored, req.Answers)

		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode answer map: %w", err)
		}
		if err := tx.Session().UpdateAnswers(ctx, id, data); err != nil {
			return fmt.Errorf("failed to persist answers: %w", err)
		}

		locked.Answers = datatypes.JSON(data)
		session = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Answers synced", "session_id", id, "keys", len(req.Answers))
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error) {
	sessions, total, err := s.repo.Session().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return &SessionListResponse{Sessions: sessions, Total: total}, nil
}
