package errors

import "net/http"

// ErrorResponse is the JSON structure returned by HTTP surfaces.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}

// HTTPStatus maps the error code to an HTTP status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeMappingNotFound, ErrCodeTypeMappingNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeDisposed:
		return http.StatusGone
	case ErrCodeCyclicDependency, ErrCodeTypeMappingUnset, ErrCodeNotConstructible:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
