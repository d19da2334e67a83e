package models

import "time"

// NotificationType is the display severity of a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationAlert   NotificationType = "ALERT"
	NotificationWarning NotificationType = "WARNING"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	Category  string           `json:"category,omitempty" db:"category"`
	Link      string           `json:"link,omitempty" db:"link"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
