// Package dto holds the request and response shapes of the quoting API
package dto

// APIResponse is the envelope every endpoint answers with. Data carries the
// flow result on success; Error carries an ErrorDetail otherwise.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail names the failure with a stable machine code such as
// INVALID_STATUS_TRANSITION or STORAGE_UNAVAILABLE.
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}
