package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/app/services"
	"github.com/kayra/examseat/internal/middleware"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/helpers"
)

// SeatController handles seat roster endpoints
type SeatController struct {
	seatService *services.SeatService
}

// NewSeatController creates a new SeatController
func NewSeatController(seatService *services.SeatService) *SeatController {
	return &SeatController{
		seatService: seatService,
	}
}

// ListSeats serves a session's seat roster
// @Summary List seats of a session
// @Description Retrieves all seats for the session matching the selector, falling back to pre-split rows when the session is not registered (subject required then)
// @Tags seats
// @Produce json
// @Security BearerAuth
// @Param room query string true "Room"
// @Param timeRange query string false "Combined time window (HH:mm ~ HH:mm), wins over the split fields"
// @Param startTime query string false "Start time (HH:mm)"
// @Param endTime query string false "End time (HH:mm)"
// @Param examDate query string true "Exam date (yyyy-MM-dd)"
// @Param subject query string false "Subject, required for the legacy fallback"
// @Success 200 {object} dto.APIResponse{data=[]models.Seat} "Seats retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid selector or missing subject in fallback"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /seats [get]
func (c *SeatController) ListSeats(ctx *gin.Context) {
	var sel dto.SessionSelector
	if err := ctx.ShouldBindQuery(&sel); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	seats, err := c.seatService.ListSeats(ctx, sel, ctx.Query("subject"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      seats,
		Timestamp: time.Now(),
	})
}

// BatchSave persists a JSON seat batch into a registered session
// @Summary Save a seat batch
// @Description Validates and persists a batch of seat assignments for a registered session. The default mode rejects seat numbers that already exist; mode=upsert overwrites them in place.
// @Tags seats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mode query string false "Reconciliation mode" Enums(insert, upsert)
// @Param request body dto.BatchSaveRequest true "Session selector plus seat batch"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Seats saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate seat number"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /seats/batch [post]
func (c *SeatController) BatchSave(ctx *gin.Context) {
	mode, err := services.ParseMode(ctx.Query("mode"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if mode == services.ModeReplace {
		// Full replace stays reserved for file import.
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(
			"mode replace is only available through file import"))
		return
	}

	var req dto.BatchSaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	_, saved, err := c.seatService.BatchSave(ctx, req, mode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: fmt.Sprintf("%d seats saved", saved)},
		Timestamp: time.Now(),
	})
}

// ManualPatch overwrites individual seats by room and seat number
// @Summary Patch seats by room
// @Description Overwrites occupants of individual seats looked up by room and seat number. The room must host exactly one exam.
// @Tags seats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ManualPatchRequest true "Room and seat assignments"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Seats updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or ambiguous room"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Exam or seat not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /seats/manual [post]
func (c *SeatController) ManualPatch(ctx *gin.Context) {
	var req dto.ManualPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.seatService.PatchByRoom(ctx, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Seats updated"},
		Timestamp: time.Now(),
	})
}

// Import replaces a session's roster from an uploaded spreadsheet
// @Summary Import seats from a spreadsheet
// @Description Decodes an uploaded XLSX file and replaces the session's roster with its rows, creating the session when the selector matches nothing.
// @Tags seats
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "XLSX file"
// @Param room formData string true "Room"
// @Param timeRange formData string false "Combined time window (HH:mm ~ HH:mm), wins over the split fields"
// @Param startTime formData string false "Start time (HH:mm)"
// @Param endTime formData string false "End time (HH:mm)"
// @Param examDate formData string true "Exam date (yyyy-MM-dd)"
// @Param subject formData string true "Subject, used when the session has to be created"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult} "Seats imported successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unreadable file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /seats/import [post]
func (c *SeatController) Import(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("cannot open uploaded file"))
		return
	}
	defer file.Close()

	sel := dto.SessionSelector{
		Room:      ctx.PostForm("room"),
		TimeRange: ctx.PostForm("timeRange"),
		StartTime: ctx.PostForm("startTime"),
		EndTime:   ctx.PostForm("endTime"),
		ExamDate:  ctx.PostForm("examDate"),
	}

	result, err := c.seatService.Import(ctx, sel, ctx.PostForm("subject"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// Export downloads a session's roster as an XLSX attachment
// @Summary Export seats to a spreadsheet
// @Description Renders the session's roster as an XLSX download, seats in seat-number order
// @Tags seats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param room query string true "Room"
// @Param timeRange query string false "Combined time window (HH:mm ~ HH:mm), wins over the split fields"
// @Param startTime query string false "Start time (HH:mm)"
// @Param endTime query string false "End time (HH:mm)"
// @Param examDate query string true "Exam date (yyyy-MM-dd)"
// @Success 200 {file} file "XLSX attachment"
// @Failure 400 {object} dto.ErrorResponse "Invalid selector"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /seats/export [get]
func (c *SeatController) Export(ctx *gin.Context) {
	var sel dto.SessionSelector
	if err := ctx.ShouldBindQuery(&sel); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	exam, buf, err := c.seatService.Export(ctx, sel)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("seats_%s_%s.xlsx", exam.Room, helpers.FormatDate(exam.ExamDate))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	ctx.Header("Pragma", "no-cache")
	ctx.Header("Expires", "0")
	ctx.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
