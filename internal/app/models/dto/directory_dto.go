package dto

import "github.com/yigit/iatracker/internal/app/models"

// SearchResponse is the principal's quick search result.
type SearchResponse struct {
	Students []*models.Student `json:"students"`
	Faculty  []UserResponse    `json:"faculty"`
}
