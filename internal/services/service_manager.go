package services

import (
	"log/slog"

	"github.com/linguabridge/exam-grading-service/internal/cache"
	"github.com/linguabridge/exam-grading-service/internal/events"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/validator"
)

type serviceManager struct {
	exam    ExamService
	session SessionService
	grading GradingService
}

// NewServiceManager wires all services over shared infrastructure.
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	locker cache.SessionLocker,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
) ServiceManager {
	return &serviceManager{
		exam:    NewExamService(repo, logger, v),
		session: NewSessionService(repo, logger, v),
		grading: NewGradingService(repo, logger, locker, cacheService, publisher),
	}
}

func (m *serviceManager) Exam() ExamService       { return m.exam }
func (m *serviceManager) Session() SessionService { return m.session }
func (m *serviceManager) Grading() GradingService { return m.grading }
