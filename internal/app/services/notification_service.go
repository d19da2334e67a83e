package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/websocket"
)

// EventNotification is the websocket event type carrying a new notification.
const EventNotification = "notification"

// Default notification category for broadcasts sent without one.
const defaultBroadcastCategory = "ANNOUNCEMENT"

// NotificationService manages user notifications and their live delivery.
type NotificationService interface {
	List(ctx context.Context, actor Actor, isRead *bool, limit int) ([]*models.Notification, error)
	Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error)
	MarkRead(ctx context.Context, actor Actor, id int64) error
	MarkAllRead(ctx context.Context, actor Actor) (int64, error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	Broadcast(ctx context.Context, req dto.BroadcastRequest) (int, error)
	// Notify persists one notification per user and pushes each to the user's live sessions.
	Notify(ctx context.Context, userIDs []int64, message string, kind models.NotificationType, category, link string) (int, error)
}

type notificationService struct {
	notifications repositories.INotificationRepository
	users         repositories.IUserRepository
	publisher     Publisher
	defaultLimit  int
	logger        zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repositories.INotificationRepository, users repositories.IUserRepository, publisher Publisher, defaultLimit int, logger zerolog.Logger) NotificationService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &notificationService{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
		defaultLimit:  defaultLimit,
		logger:        logger,
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, isRead *bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.notifications.List(ctx, actor.UserID, isRead, limit)
}

func (s *notificationService) Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	n := &models.Notification{
		UserID:   req.UserID,
		Message:  req.Message,
		Type:     notificationType(req.Type),
		Category: req.Category,
		Link:     req.Link,
	}
	if err := s.persistAndPublish(ctx, []*models.Notification{n}); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id int64) error {
	return s.notifications.MarkRead(ctx, id, actor.UserID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	return s.notifications.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.notifications.CountUnread(ctx, actor.UserID)
}

// Broadcast sends one message to every user of the recipient group. The department filter is
// ignored for principals and for the "All" department.
func (s *notificationService) Broadcast(ctx context.Context, req dto.BroadcastRequest) (int, error) {
	roles, err := broadcastRoles(req.RecipientType)
	if err != nil {
		return 0, err
	}

	department := strings.TrimSpace(req.Department)
	if strings.EqualFold(department, "All") || req.RecipientType == string(models.RolePrincipal) {
		department = ""
	}

	users, err := s.users.ListByRoles(ctx, roles, department)
	if err != nil {
		return 0, fmt.Errorf("error listing broadcast recipients: %w", err)
	}

	category := req.Category
	if category == "" {
		category = defaultBroadcastCategory
	}
	return s.Notify(ctx, userIDs(users), req.Message, notificationType(req.Type), category, "")
}

func (s *notificationService) Notify(ctx context.Context, userIDs []int64, message string, kind models.NotificationType, category, link string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	batch := make([]*models.Notification, 0, len(userIDs))
	seen := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		batch = append(batch, &models.Notification{
			UserID:   id,
			Message:  message,
			Type:     kind,
			Category: category,
			Link:     link,
		})
	}
	if err := s.persistAndPublish(ctx, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// persistAndPublish stores the batch and then pushes it. Push failures are logged only: the
// notification is already stored and will be listed on the next fetch.
func (s *notificationService) persistAndPublish(ctx context.Context, batch []*models.Notification) error {
	if err := s.notifications.CreateMany(ctx, batch); err != nil {
		return fmt.Errorf("error storing notifications: %w", err)
	}
	if s.publisher == nil {
		return nil
	}
	for _, n := range batch {
		event := &websocket.Event{
			Type:      EventNotification,
			UserID:    n.UserID,
			Payload:   n,
			Timestamp: time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Int64("userID", n.UserID).Msg("Failed to push notification")
		}
	}
	return nil
}

func broadcastRoles(recipientType string) ([]models.RoleType, error) {
	switch strings.ToUpper(recipientType) {
	case "FACULTY":
		return []models.RoleType{models.RoleFaculty}, nil
	case "STUDENT":
		return []models.RoleType{models.RoleStudent}, nil
	case "PRINCIPAL":
		return []models.RoleType{models.RolePrincipal}, nil
	case "BOTH":
		return []models.RoleType{models.RoleFaculty, models.RoleStudent}, nil
	}
	return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown recipient type %q", recipientType))
}

func notificationType(t string) models.NotificationType {
	switch models.NotificationType(strings.ToUpper(t)) {
	case models.NotificationAlert:
		return models.NotificationAlert
	case models.NotificationWarning:
		return models.NotificationWarning
	}
	return models.NotificationInfo
}
