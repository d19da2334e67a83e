package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
)

// MarkController handles CIE mark entry and approval
type MarkController struct {
	marks  services.MarkService
	logger zerolog.Logger
}

// NewMarkController creates a new MarkController
func NewMarkController(marks services.MarkService, logger zerolog.Logger) *MarkController {
	return &MarkController{marks: marks, logger: logger}
}

// ForSubject lists the marks of a subject
// @Summary Marks of a subject
// @Tags marks
// @Produce json
// @Security BearerAuth
// @Param subjectId path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=[]analytics.MarkRecord}
// @Failure 403 {object} dto.APIResponse "Not allowed to view this subject"
// @Failure 404 {object} dto.APIResponse "Subject not found"
// @Router /marks/subject/{subjectId} [get]
func (c *MarkController) ForSubject(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	subjectID, ok := int64Param(ctx, "subjectId")
	if !ok {
		return
	}
	marks, err := c.marks.ForSubject(ctx.Request.Context(), actor, subjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, marks)
}

// MyMarks lists the calling student's marks
// @Summary My marks
// @Tags marks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]analytics.MarkRecord}
// @Router /marks/my [get]
func (c *MarkController) MyMarks(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	marks, err := c.marks.MyMarks(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, marks)
}

// SaveBatch writes marks entered by a faculty member
// @Summary Save marks
// @Description Upserts marks. Unknown students or subjects are skipped; approved marks are locked.
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchMarksRequest true "Marks"
// @Success 200 {object} dto.APIResponse{data=dto.BatchMarksResult}
// @Failure 409 {object} dto.APIResponse "Every targeted mark is approved"
// @Router /marks/batch [post]
func (c *MarkController) SaveBatch(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.BatchMarksRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.marks.SaveBatch(ctx.Request.Context(), actor, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrMarksLocked) {
			c.logger.Warn().Int64("facultyID", actor.UserID).Msg("Rejected write to approved marks")
		}
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Marks saved"))
}

// Submit sends one CIE of a subject for HOD approval
// @Summary Submit marks
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkWorkflowRequest true "Subject and CIE"
// @Success 200 {object} dto.APIResponse{data=dto.MarkWorkflowResult}
// @Router /marks/submit [post]
func (c *MarkController) Submit(ctx *gin.Context) {
	c.transition(ctx, c.marks.Submit)
}

// Approve locks submitted marks
// @Summary Approve marks
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkWorkflowRequest true "Subject and CIE"
// @Success 200 {object} dto.APIResponse{data=dto.MarkWorkflowResult}
// @Router /marks/approve [post]
func (c *MarkController) Approve(ctx *gin.Context) {
	c.transition(ctx, c.marks.Approve)
}

// Unlock returns submitted or approved marks to PENDING
// @Summary Unlock marks
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkWorkflowRequest true "Subject and CIE"
// @Success 200 {object} dto.APIResponse{data=dto.MarkWorkflowResult}
// @Router /marks/unlock [post]
func (c *MarkController) Unlock(ctx *gin.Context) {
	c.transition(ctx, c.marks.Unlock)
}

type transitionFunc func(ctx context.Context, actor services.Actor, req dto.MarkWorkflowRequest) (*dto.MarkWorkflowResult, error)

func (c *MarkController) transition(ctx *gin.Context, fn transitionFunc) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.MarkWorkflowRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := fn(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// Pending lists submitted marks awaiting approval
// @Summary Pending approvals
// @Tags marks
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department, defaults to the HOD's own"
// @Success 200 {object} dto.APIResponse{data=[]analytics.MarkRecord}
// @Router /marks/pending [get]
func (c *MarkController) Pending(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	marks, err := c.marks.Pending(ctx.Request.Context(), actor, ctx.Query("department"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, marks)
}
