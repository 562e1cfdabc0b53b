package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/exam-grading-service/internal/services"
	"github.com/linguabridge/exam-grading-service/internal/utils"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
}

func NewGradingHandler(gradingService services.GradingService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
	}
}

// SubmitSession submits and grades a session
// @Summary Submit session
// @Description Grades the session from its stored answers merged with any final answer batch in the body. Repeated submits return the same result.
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answers body services.GradeSessionRequest false "Final answer batch"
// @Success 200 {object} services.GradingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *GradingHandler) SubmitSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	var req services.GradeSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	result, err := h.gradingService.GradeSession(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegradeSession recomputes a submitted session's result
// @Summary Regrade session
// @Tags grading
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.GradingResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/regrade [post]
func (h *GradingHandler) RegradeSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	result, err := h.gradingService.Regrade(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the stored grading result for a session
// @Summary Get result
// @Tags grading
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.GradingResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/result [get]
func (h *GradingHandler) GetResult(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	result, err := h.gradingService.GetResult(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReview returns the student-facing answer review
// @Summary Get review
// @Description Returns the question tree annotated with the student's answers, correct answers, and per-unit correctness.
// @Tags grading
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} scoring.Review
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/review [get]
func (h *GradingHandler) GetReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	review, err := h.gradingService.GetReview(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}
