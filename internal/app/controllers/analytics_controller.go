package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
)

// AnalyticsController serves the dashboard endpoints
type AnalyticsController struct {
	analytics services.AnalyticsService
	logger    zerolog.Logger
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analytics services.AnalyticsService, logger zerolog.Logger) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, logger: logger}
}

// DepartmentStats returns the department summary
// @Summary Department statistics
// @Description Average, pass percentage, at-risk count and student count of a department. Unknown departments return zeros.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param dept path string true "Department code"
// @Success 200 {object} dto.APIResponse{data=analytics.DepartmentSummary}
// @Router /analytics/department/{dept}/stats [get]
func (c *AnalyticsController) DepartmentStats(ctx *gin.Context) {
	summary, err := c.analytics.DepartmentStats(ctx.Request.Context(), ctx.Param("dept"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, summary)
}

// DepartmentCieTrend returns the five CIE averages of a department
// @Summary Department CIE trend
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param dept path string true "Department code"
// @Success 200 {object} dto.APIResponse{data=dto.CieTrendResponse}
// @Router /analytics/department/{dept}/cie-trend [get]
func (c *AnalyticsController) DepartmentCieTrend(ctx *gin.Context) {
	avgs, err := c.analytics.DepartmentCieTrend(ctx.Request.Context(), ctx.Param("dept"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CieTrendResponse{Averages: avgs})
}

// SubjectPerformance returns the subject-wise table of a department
// @Summary Subject-wise performance
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param dept path string true "Department code"
// @Success 200 {object} dto.APIResponse{data=[]analytics.SubjectPerformance}
// @Router /analytics/department/{dept}/subject-performance [get]
func (c *AnalyticsController) SubjectPerformance(ctx *gin.Context) {
	rows, err := c.analytics.SubjectPerformance(ctx.Request.Context(), ctx.Param("dept"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rows)
}

// SubjectStats returns the CIE averages of one subject
// @Summary Subject statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param subjectId path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.CieTrendResponse}
// @Router /analytics/subject/{subjectId}/stats [get]
func (c *AnalyticsController) SubjectStats(ctx *gin.Context) {
	subjectID, ok := int64Param(ctx, "subjectId")
	if !ok {
		return
	}
	avgs, err := c.analytics.SubjectStats(ctx.Request.Context(), subjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CieTrendResponse{Averages: avgs})
}

// FacultyAnalytics returns the class summary of the calling faculty member
// @Summary Faculty analytics
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FacultyAnalyticsResponse}
// @Router /faculty/analytics [get]
func (c *AnalyticsController) FacultyAnalytics(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	resp, err := c.analytics.FacultyAnalytics(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// PrincipalDashboard returns the institution-wide dashboard
// @Summary Principal dashboard
// @Tags principal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PrincipalDashboardResponse}
// @Router /principal/dashboard [get]
func (c *AnalyticsController) PrincipalDashboard(ctx *gin.Context) {
	resp, err := c.analytics.PrincipalDashboard(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build principal dashboard")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// StudentDashboard returns the calling student's profile and marks
// @Summary Student dashboard
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentDashboardResponse}
// @Failure 404 {object} dto.APIResponse "No student record for this account"
// @Router /student/dashboard [get]
func (c *AnalyticsController) StudentDashboard(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	resp, err := c.analytics.StudentDashboard(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}
