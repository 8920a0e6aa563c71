package transport

import "github.com/fastygo/todos/domain"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccess returns a success envelope carrying data.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// NewError returns an error envelope. Data is optional.
func NewError(message string, data interface{}) Envelope {
	return Envelope{Success: false, Message: message, Data: data}
}

// AuthResponse is returned by register (no token) and login.
type AuthResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Token   string              `json:"token,omitempty"`
	User    *domain.UserSummary `json:"user"`
}

// ProtectedResponse echoes the identity resolved by the access guard.
type ProtectedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// StatusResponse is served on the API root.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version string `json:"version"`
}
