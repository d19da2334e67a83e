package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/services"
	"github.com/yigit/iatracker/internal/middleware"
	"github.com/yigit/iatracker/internal/pkg/helpers"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// NotificationController handles notification endpoints and the live stream
type NotificationController struct {
	notifications services.NotificationService
	hub           *websocket.Hub
	logger        zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notifications services.NotificationService, hub *websocket.Hub, logger zerolog.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, hub: hub, logger: logger}
}

// List returns the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param isRead query bool false "Filter by read state"
// @Param limit query int false "Maximum number of notifications" default(50)
// @Success 200 {object} dto.APIResponse{data=[]models.Notification}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var isRead *bool
	if raw := ctx.Query("isRead"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeBadRequest, "isRead must be true or false").WithField("isRead"),
			))
			return
		}
		isRead = &v
	}

	list, err := c.notifications.List(ctx.Request.Context(), actor, isRead, helpers.ParseLimit(ctx, 0))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, list)
}

// Create addresses a notification to one user
// @Summary Create notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} dto.APIResponse{data=models.Notification}
// @Router /notifications [post]
func (c *NotificationController) Create(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.notifications.Create(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(n, "Notification created"))
}

// MarkRead marks one of the caller's notifications as read
// @Summary Mark notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse "Not found or not owned by the caller"
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := int64Param(ctx, "id")
	if !ok {
		return
	}
	if err := c.notifications.MarkRead(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification marked as read"))
}

// MarkAllRead marks every notification of the caller as read
// @Summary Mark all notifications read
// @Tags notifications
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	n, err := c.notifications.MarkAllRead(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CountResponse{Count: n})
}

// UnreadCount returns the caller's unread count
// @Summary Unread count
// @Tags notifications
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Router /notifications/unread/count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	n, err := c.notifications.UnreadCount(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.CountResponse{Count: n})
}

// Broadcast sends a message to a recipient group
// @Summary Broadcast notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BroadcastRequest true "Broadcast"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Router /notifications/broadcast [post]
func (c *NotificationController) Broadcast(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.BroadcastRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.notifications.Broadcast(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().
		Int64("senderID", actor.UserID).
		Str("recipientType", req.RecipientType).
		Str("department", req.Department).
		Int("count", n).
		Msg("Notification broadcast")
	respondOK(ctx, dto.CountResponse{Count: int64(n)})
}

// Stream upgrades to a websocket that receives the caller's new notifications.
// @Summary Live notifications
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "Access token, for clients that cannot set headers"
// @Router /ws/notifications [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	if err := c.hub.ServeWS(ctx.Writer, ctx.Request, actor.UserID); err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Websocket upgrade failed")
	}
}
