package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
)

// AttendanceController handles class attendance
type AttendanceController struct {
	attendance services.AttendanceService
	logger     zerolog.Logger
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendance services.AttendanceService, logger zerolog.Logger) *AttendanceController {
	return &AttendanceController{attendance: attendance, logger: logger}
}

// Record stores one class session
// @Summary Record attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AttendanceRequest true "Session"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Router /attendance [post]
func (c *AttendanceController) Record(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.AttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.attendance.Record(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CountResponse{Count: int64(n)}, "Attendance recorded"))
}

// ForSubject lists a subject's attendance, optionally for one date
// @Summary Subject attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param subjectId path int true "Subject ID"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance}
// @Router /attendance/subject/{subjectId} [get]
func (c *AttendanceController) ForSubject(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	subjectID, ok := int64Param(ctx, "subjectId")
	if !ok {
		return
	}
	list, err := c.attendance.ForSubject(ctx.Request.Context(), actor, subjectID, ctx.Query("date"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// MySummary returns the caller's attendance per subject
// @Summary My attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.AttendanceSummary}
// @Router /attendance/my [get]
func (c *AttendanceController) MySummary(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	summary, err := c.attendance.MySummary(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, summary)
}
