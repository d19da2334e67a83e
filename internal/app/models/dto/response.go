package dto

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// NewErrorResponse wraps an error detail in a failed envelope.
func NewErrorResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{Success: false, Error: detail}
}

// CountResponse carries a single count.
type CountResponse struct {
	Count int64 `json:"count"`
}
