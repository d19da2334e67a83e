package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
)

// AnnouncementController handles CIE schedules
type AnnouncementController struct {
	announcements services.AnnouncementService
	logger        zerolog.Logger
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcements services.AnnouncementService, logger zerolog.Logger) *AnnouncementController {
	return &AnnouncementController{announcements: announcements, logger: logger}
}

// Save creates or updates the announcement of a subject's CIE. A subjectId query parameter
// takes precedence over the body.
// @Summary Create or update a CIE announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId query int false "Subject ID"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} dto.APIResponse{data=models.Announcement}
// @Router /announcements [post]
// @Router /faculty/announcements [post]
func (c *AnnouncementController) Save(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.AnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	subjectID, ok := optionalInt64Query(ctx, "subjectId")
	if !ok {
		return
	}
	if subjectID > 0 {
		req.SubjectID = subjectID
	}

	a, err := c.announcements.Save(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(a, "Announcement saved"))
}

// ForStudent lists upcoming CIEs for the calling student
// @Summary Student announcements
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement}
// @Router /student/announcements [get]
func (c *AnnouncementController) ForStudent(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	list, err := c.announcements.ForStudent(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// ForFaculty lists the announcements a faculty member created or whose subject they teach
// @Summary Faculty schedules
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement}
// @Router /faculty/schedules [get]
// @Router /faculty/announcements/list [get]
func (c *AnnouncementController) ForFaculty(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	list, err := c.announcements.ForFaculty(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// ForHOD lists the announcements of the HOD's department
// @Summary HOD announcements
// @Tags hod
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Announcement}
// @Router /hod/announcements [get]
func (c *AnnouncementController) ForHOD(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	list, err := c.announcements.ForHOD(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// Details returns one announcement
// @Summary Announcement details
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param subjectId query int true "Subject ID"
// @Param cieNumber query int true "CIE number"
// @Success 200 {object} dto.APIResponse{data=models.Announcement}
// @Failure 400 {object} dto.APIResponse "Missing parameters"
// @Failure 404 {object} dto.APIResponse "Announcement not found"
// @Router /faculty/announcements/details [get]
func (c *AnnouncementController) Details(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	subjectID, ok := optionalInt64Query(ctx, "subjectId")
	if !ok {
		return
	}
	cieNumber, err := strconv.Atoi(ctx.DefaultQuery("cieNumber", "0"))
	if err != nil {
		cieNumber = 0
	}

	a, err := c.announcements.Details(ctx.Request.Context(), actor, subjectID, cieNumber)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, a)
}
