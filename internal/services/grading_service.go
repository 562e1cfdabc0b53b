package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/linguabridge/exam-grading-service/internal/cache"
	"github.com/linguabridge/exam-grading-service/internal/events"
	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/scoring"
)

const (
	gradingLockTTL = 30 * time.Second
	resultCacheTTL = 1 * time.Hour
)

type gradingService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	assembler *scoring.Assembler
	locker    cache.SessionLocker
	cache     cache.CacheService
	publisher events.EventPublisher
}

func NewGradingService(
	repo repositories.Repository,
	logger *slog.Logger,
	locker cache.SessionLocker,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
) GradingService {
	return &gradingService{
		repo:      repo,
		logger:    logger,
		assembler: scoring.NewAssembler(logger),
		locker:    locker,
		cache:     cacheService,
		publisher: publisher,
	}
}

// GradeSession submits and grades a session.
//
// The run is serialized two ways: a short-lived distributed lock keeps a
// second submit from starting a concurrent run, and inside the transaction
// the session row is locked so late answer syncs cannot interleave with the
// read-merge-grade sequence. Grading itself is a pure computation; every
// run recomputes the full breakdown from the answer map and the stored
// result row is replaced, which is what makes the operation idempotent.
func (s *gradingService) GradeSession(ctx context.Context, sessionID uint, req *GradeSessionRequest) (*GradingResponse, error) {
	acquired, err := s.locker.Acquire(ctx, sessionID, gradingLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire grading lock: %w", err)
	}
	if !acquired {
		return nil, ErrGradingInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to release grading lock", "session_id", sessionID, "error", err)
		}
	}()

	var (
		response  *GradingResponse
		session   *models.ExamSession
		result    *models.SessionResult
		firstTime bool
	)

	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		locked, err := tx.Session().GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}

		switch locked.Status {
		case models.SessionInProgress, models.SessionSubmitted:
			// submitted sessions may be graded again; same result comes out
		default:
			return ErrSessionNotActive
		}
		firstTime = locked.Status == models.SessionInProgress

		answers, err := scoring.DecodeAnswerMap(locked.Answers)
		if err != nil {
			return fmt.Errorf("stored answer map is corrupt: %w", err)
		}
		if req != nil && len(req.Answers) > 0 {
			// last answer batch rides along with the submit
			scoring.Merge(answers, req.Answers)
			data, err := json.Marshal(answers)
			if err != nil {
				return fmt.Errorf("failed to encode answer map: %w", err)
			}
			locked.Answers = datatypes.JSON(data)
		}

		exam, err := tx.Exam().GetByIDWithTree(ctx, locked.ExamID)
		if err != nil {
			return fmt.Errorf("failed to load exam tree: %w", err)
		}

		breakdown := s.assembler.Assemble(buildScoringTest(exam), answers)
		band := scoring.TableFor(exam.Module).ToBand(breakdown.RawScore, breakdown.TotalScore)

		breakdownJSON, err := json.Marshal(breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown: %w", err)
		}

		now := time.Now()
		result = &models.SessionResult{
			SessionID:  sessionID,
			RawScore:   breakdown.RawScore,
			TotalScore: breakdown.TotalScore,
			BandScore:  band,
			Breakdown:  datatypes.JSON(breakdownJSON),
			GradedAt:   now,
		}
		if err := tx.Result().Upsert(ctx, result); err != nil {
			return fmt.Errorf("failed to store result: %w", err)
		}

		if firstTime {
			locked.Status = models.SessionSubmitted
			locked.SubmittedAt = &now
			spent := int(now.Sub(locked.StartedAt).Seconds())
			locked.TimeSpent = &spent
			reason := models.SessionEndReasonCompleted
			if locked.EndTime != nil && now.After(*locked.EndTime) {
				reason = models.SessionEndReasonTimeout
			}
			locked.EndReason = &reason
		}
		if err := tx.Session().Update(ctx, locked); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		session = locked
		response = buildGradingResponse(locked, exam.Module, result, breakdown)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheResult(ctx, sessionID, response)
	s.publishEvent(ctx, eventTypeFor(firstTime), session, result, response.Module)

	s.logger.Info("Session graded",
		"session_id", sessionID,
		"raw_score", response.RawScore,
		"total_score", response.TotalScore,
		"band_score", response.BandScore,
		"regrade", !firstTime)
	return response, nil
}

// Regrade recomputes a submitted session's result from its stored answers,
// for use after an exam definition fix.
func (s *gradingService) Regrade(ctx context.Context, sessionID uint) (*GradingResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status == models.SessionInProgress {
		return nil, ErrSessionNotGraded
	}
	return s.GradeSession(ctx, sessionID, nil)
}

func (s *gradingService) GetResult(ctx context.Context, sessionID uint) (*GradingResponse, error) {
	if s.cache != nil {
		var cached GradingResponse
		if err := s.cache.Get(ctx, cache.ResultKey(sessionID), &cached); err == nil {
			return &cached, nil
		}
	}

	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	result, err := s.repo.Result().GetBySession(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var breakdown scoring.Breakdown
	if err := json.Unmarshal(result.Breakdown, &breakdown); err != nil {
		return nil, fmt.Errorf("stored breakdown is corrupt: %w", err)
	}

	response := buildGradingResponse(session, session.Exam.Module, result, &breakdown)
	s.cacheResult(ctx, sessionID, response)
	return response, nil
}

// GetReview renders the student-facing review: the full question tree with
// the student's answers, correct answers, and per-unit correctness marks.
func (s *gradingService) GetReview(ctx context.Context, sessionID uint) (*scoring.Review, error) {
	session, err := s.repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	result, err := s.repo.Result().GetBySession(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var breakdown scoring.Breakdown
	if err := json.Unmarshal(result.Breakdown, &breakdown); err != nil {
		return nil, fmt.Errorf("stored breakdown is corrupt: %w", err)
	}

	exam, err := s.repo.Exam().GetByIDWithTree(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam tree: %w", err)
	}

	return s.assembler.Render(buildScoringTest(exam), &breakdown), nil
}

// ===== HELPERS =====

func buildGradingResponse(session *models.ExamSession, module models.ExamModule, result *models.SessionResult, breakdown *scoring.Breakdown) *GradingResponse {
	return &GradingResponse{
		SessionID:  session.ID,
		ExamID:     session.ExamID,
		StudentID:  session.StudentID,
		Module:     module,
		RawScore:   result.RawScore,
		TotalScore: result.TotalScore,
		BandScore:  result.BandScore,
		Breakdown:  breakdown,
		GradedAt:   result.GradedAt,
	}
}

func eventTypeFor(firstTime bool) events.EventType {
	if firstTime {
		return events.EventSessionGraded
	}
	return events.EventSessionRegraded
}

func (s *gradingService) cacheResult(ctx context.Context, sessionID uint, response *GradingResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ResultKey(sessionID), response, resultCacheTTL); err != nil {
		s.logger.Warn("Failed to cache result", "session_id", sessionID, "error", err)
	}
}

func (s *gradingService) publishEvent(ctx context.Context, eventType events.EventType, session *models.ExamSession, result *models.SessionResult, module models.ExamModule) {
	if s.publisher == nil {
		return
	}
	event := events.NewGradingEvent(eventType, session, result, module)
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		// the result is already durable; event delivery is best-effort
		s.logger.Error("Failed to publish grading event",
			"session_id", session.ID, "event_type", eventType, "error", err)
	}
}
