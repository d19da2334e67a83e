package dto

// CreateNotificationRequest addresses a notification to one user.
type CreateNotificationRequest struct {
	UserID   int64  `json:"userId" binding:"required,gt=0"`
	Message  string `json:"message" binding:"required"`
	Type     string `json:"type" binding:"omitempty,oneof=INFO ALERT WARNING"`
	Category string `json:"category"`
	Link     string `json:"link"`
}

// BroadcastRequest fans a notification out to a group of users.
type BroadcastRequest struct {
	RecipientType string `json:"recipientType" binding:"required,oneof=FACULTY STUDENT PRINCIPAL BOTH"`
	Message       string `json:"message" binding:"required"`
	Department    string `json:"department"`
	Category      string `json:"category"`
	Type          string `json:"type" binding:"omitempty,oneof=INFO ALERT WARNING"`
}
