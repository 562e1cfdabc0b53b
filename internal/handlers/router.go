package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/linguabridge/exam-grading-service/internal/services"
	"github.com/linguabridge/exam-grading-service/internal/utils"
)

type HandlerManager struct {
	examHandler    *ExamHandler
	sessionHandler *SessionHandler
	gradingHandler *GradingHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:    NewExamHandler(serviceManager.Exam(), logger),
		sessionHandler: NewSessionHandler(serviceManager.Session(), logger),
		gradingHandler: NewGradingHandler(serviceManager.Grading(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Exam definition routes
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/tree", hm.examHandler.GetExamWithTree)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)
			exams.POST("/:id/activate", hm.examHandler.ActivateExam)
			exams.POST("/:id/archive", hm.examHandler.ArchiveExam)
		}

		// Session and grading routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PATCH("/:id/answers", hm.sessionHandler.SyncAnswers)

			sessions.POST("/:id/submit", hm.gradingHandler.SubmitSession)
			sessions.POST("/:id/regrade", hm.gradingHandler.RegradeSession)
			sessions.GET("/:id/result", hm.gradingHandler.GetResult)
			sessions.GET("/:id/review", hm.gradingHandler.GetReview)
		}
	}
}
