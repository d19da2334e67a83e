package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
)

// DirectoryController serves subject and staff lookups
type DirectoryController struct {
	directory services.DirectoryService
	logger    zerolog.Logger
}

// NewDirectoryController creates a new DirectoryController
func NewDirectoryController(directory services.DirectoryService, logger zerolog.Logger) *DirectoryController {
	return &DirectoryController{directory: directory, logger: logger}
}

// Subjects lists subjects
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=[]models.Subject}
// @Router /subjects [get]
func (c *DirectoryController) Subjects(ctx *gin.Context) {
	semester, _ := strconv.Atoi(ctx.Query("semester"))
	list, err := c.directory.Subjects(ctx.Request.Context(), repositories.SubjectFilter{
		Department: ctx.Query("department"),
		Semester:   semester,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// Subject returns one subject
// @Summary Get subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=models.Subject}
// @Failure 404 {object} dto.APIResponse "Subject not found"
// @Router /subjects/{id} [get]
func (c *DirectoryController) Subject(ctx *gin.Context) {
	id, ok := int64Param(ctx, "id")
	if !ok {
		return
	}
	subject, err := c.directory.Subject(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, subject)
}

// ByDepartment lists a department's subjects
// @Router /subjects/department/{department} [get]
func (c *DirectoryController) ByDepartment(ctx *gin.Context) {
	list, err := c.directory.ByDepartment(ctx.Request.Context(), ctx.Param("department"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// MySubjects lists the subjects the caller teaches
// @Router /faculty/my-subjects [get]
func (c *DirectoryController) MySubjects(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	list, err := c.directory.MySubjects(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// FacultyList lists faculty and HODs
// @Router /principal/faculty [get]
func (c *DirectoryController) FacultyList(ctx *gin.Context) {
	list, err := c.directory.FacultyList(ctx.Request.Context(), ctx.Query("department"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// Search finds students and staff by name, register number or username
// @Summary Principal search
// @Tags principal
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Router /principal/search [get]
func (c *DirectoryController) Search(ctx *gin.Context) {
	resp, err := c.directory.Search(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}
