package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/services"
	"github.com/linguabridge/exam-grading-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession starts a new exam session for a student
// @Summary Start session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session start data"
// @Success 201 {object} models.ExamSession
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves a session by ID
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} models.ExamSession
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SyncAnswers merges an incremental answer batch into the session
// @Summary Sync answers
// @Description Merges the posted answer keys into the stored answer map. Keys not present in the batch keep their stored values.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answers body services.SyncAnswersRequest true "Answer batch"
// @Success 200 {object} models.ExamSession
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [patch]
func (h *SessionHandler) SyncAnswers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	var req services.SyncAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.sessionService.SyncAnswers(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions lists sessions with optional filters
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Param status query string false "Session status"
// @Param exam_id query int false "Exam ID"
// @Param student_id query string false "Student ID"
// @Success 200 {object} services.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	filters := repositories.SessionFilters{
		Status:    models.SessionStatus(c.Query("status")),
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("exam_id"); raw != "" {
		if examID := parseQueryInt(c, "exam_id", 0); examID > 0 {
			id := uint(examID)
			filters.ExamID = &id
		}
	}
	if raw := c.Query("student_id"); raw != "" {
		filters.StudentID = &raw
	}

	resp, err := h.sessionService.List(c.Request.Context(), filters)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
