// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// requireActor returns the authenticated caller or writes a 401.
func requireActor(ctx *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
		))
	}
	return actor, ok
}

// int64Param parses a positive integer path parameter or writes a 400.
func int64Param(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+name).WithField(name),
		))
		return 0, false
	}
	return id, true
}

// optionalInt64Query parses an integer query parameter; an absent value yields 0.
func optionalInt64Query(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+name).WithField(name),
		))
		return 0, false
	}
	return v, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, ""))
}

// Controllers bundles every HTTP controller for the router.
type Controllers struct {
	Auth          *AuthController
	Analytics     *AnalyticsController
	Marks         *MarkController
	Announcements *AnnouncementController
	Notifications *NotificationController
	Attendance    *AttendanceController
	Directory     *DirectoryController
}

// NewControllers builds the controllers on top of the services.
func NewControllers(svcs *services.Services, hub *websocket.Hub, logger zerolog.Logger) *Controllers {
	return &Controllers{
		Auth:          NewAuthController(svcs.Auth, logger),
		Analytics:     NewAnalyticsController(svcs.Analytics, logger),
		Marks:         NewMarkController(svcs.Marks, logger),
		Announcements: NewAnnouncementController(svcs.Announcements, logger),
		Notifications: NewNotificationController(svcs.Notifications, hub, logger),
		Attendance:    NewAttendanceController(svcs.Attendance, logger),
		Directory:     NewDirectoryController(svcs.Directory, logger),
	}
}
