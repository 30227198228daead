package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/app/services"
	"github.com/kayra/examseat/internal/middleware"
)

// ExamController handles exam session endpoints
type ExamController struct {
	examService *services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService *services.ExamService) *ExamController {
	return &ExamController{
		examService: examService,
	}
}

// RegisterExam registers a new exam session
// @Summary Register an exam session
// @Description Creates an exam session keyed by room, time window and date
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterExamRequest true "Exam information"
// @Success 201 {object} dto.APIResponse{data=models.Exam} "Exam registered successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 409 {object} dto.ErrorResponse "Exam already registered for this room and schedule"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [post]
func (c *ExamController) RegisterExam(ctx *gin.Context) {
	var req dto.RegisterExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	exam, err := c.examService.Register(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      exam,
		Timestamp: time.Now(),
	})
}

// ListExams lists every registered exam session
// @Summary List exam sessions
// @Description Retrieves all registered exam sessions, newest date first
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Exam} "Exams retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      exams,
		Timestamp: time.Now(),
	})
}

// GetExamDetails serves the descriptive fields of one exam session
// @Summary Get exam details
// @Description Retrieves subject and notes for the session matching the selector
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param room query string true "Room"
// @Param timeRange query string false "Combined time window (HH:mm ~ HH:mm), wins over the split fields"
// @Param startTime query string false "Start time (HH:mm)"
// @Param endTime query string false "End time (HH:mm)"
// @Param examDate query string true "Exam date (yyyy-MM-dd)"
// @Success 200 {object} dto.APIResponse{data=dto.ExamDetailsResponse} "Details retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid selector"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/details [get]
func (c *ExamController) GetExamDetails(ctx *gin.Context) {
	var sel dto.SessionSelector
	if err := ctx.ShouldBindQuery(&sel); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	details, err := c.examService.Details(ctx, sel)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      details,
		Timestamp: time.Now(),
	})
}
