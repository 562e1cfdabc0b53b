package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*models.Exam, error) {
	s.logger.Info("Creating exam", "creator_id", creatorID, "title", req.Title, "module", req.Module)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:     req.Title,
		Module:    req.Module,
		Duration:  req.Duration,
		Status:    models.ExamStatusDraft,
		CreatedBy: creatorID,
		Version:   1,
	}

	for _, partReq := range req.Parts {
		part := models.ExamPart{
			PartNumber:   partReq.PartNumber,
			Title:        partReq.Title,
			Instructions: partReq.Instructions,
		}
		for _, qReq := range partReq.Questions {
			question, err := buildQuestion(qReq)
			if err != nil {
				return nil, err
			}
			part.Questions = append(part.Questions, *question)
		}
		exam.Parts = append(exam.Parts, part)
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID)
	return s.GetByIDWithTree(ctx, exam.ID)
}

func (s *examService) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) GetByIDWithTree(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithTree(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam tree: %w", err)
	}
	annotateCounts(exam)
	return exam, nil
}

func (s *examService) Update(ctx context.Context, id uint, req *UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.Status != models.ExamStatusDraft {
		return nil, ErrExamNotEditable
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	exam.Version++

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	s.logger.Info("Exam updated", "exam_id", id, "version", exam.Version)
	return exam, nil
}

// Activate runs the content integrity check over the full definition tree
// and moves the exam to Active. Sessions can only be started against active
// exams, so anything gradable-looking but malformed is rejected here.
func (s *examService) Activate(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.GetByIDWithTree(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionExamStatus(exam.Status, models.ExamStatusActive) {
		return nil, ErrExamInvalidStatus
	}

	if errs := s.validator.Exam().ValidateExam(exam); len(errs) > 0 {
		s.logger.Warn("Exam failed integrity checks", "exam_id", id, "problems", len(errs))
		return nil, fmt.Errorf("%w: %s", ErrExamInvalidContent, errs.Error())
	}

	if err := s.repo.Exam().UpdateStatus(ctx, id, models.ExamStatusActive); err != nil {
		return nil, fmt.Errorf("failed to activate exam: %w", err)
	}
	exam.Status = models.ExamStatusActive

	s.logger.Info("Exam activated", "exam_id", id)
	return exam, nil
}

func (s *examService) Archive(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionExamStatus(exam.Status, models.ExamStatusArchived) {
		return nil, ErrExamInvalidStatus
	}

	if err := s.repo.Exam().UpdateStatus(ctx, id, models.ExamStatusArchived); err != nil {
		return nil, fmt.Errorf("failed to archive exam: %w", err)
	}
	exam.Status = models.ExamStatusArchived

	s.logger.Info("Exam archived", "exam_id", id)
	return exam, nil
}

func (s *examService) Delete(ctx context.Context, id uint) error {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exam.Status == models.ExamStatusActive {
		return ErrExamNotDeletable
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", "exam_id", id)
	return nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error) {
	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return &ExamListResponse{Exams: exams, Total: total}, nil
}

// ===== HELPERS =====

func buildQuestion(req CreateQuestionRequest) (*models.Question, error) {
	question := &models.Question{
		Order:       req.Order,
		Type:        req.Type,
		Text:        req.Text,
		Points:      req.Points,
		ScoringMode: req.ScoringMode,
	}
	if question.Points == 0 {
		question.Points = 1
	}
	if len(req.CorrectAnswerSpec) > 0 {
		question.CorrectAnswerSpec = datatypes.JSON(req.CorrectAnswerSpec)
	}
	if len(req.ExtraMetadata) > 0 {
		question.ExtraMetadata = datatypes.JSON(req.ExtraMetadata)
	}
	if len(req.Options) > 0 {
		data, err := marshalJSON(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode question options: %w", err)
		}
		question.Options = data
	}
	return question, nil
}

func annotateCounts(exam *models.Exam) {
	count := 0
	points := 0
	for _, part := range exam.Parts {
		count += len(part.Questions)
		for _, q := range part.Questions {
			points += q.Points
		}
	}
	exam.QuestionCount = count
	exam.TotalPoints = points
}
