package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
)

// Envelope represents the standard API response shape.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// ErrorBody is the error payload written for failed requests.
type ErrorBody struct {
	Code   apperrors.ErrorCode `json:"code,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Fields map[string]string   `json:"fields,omitempty"`
}

// Success writes a success response with optional message and data.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Created is a convenience helper for POST 201 responses.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// NoContent writes a 204 response. Gin drops the body for this status.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error response capturing the message and optional error payload.
func Error(c *gin.Context, status int, message string, err interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// ErrorWithLog writes an error response and logs the error via slog.
// Server errors are logged at error level, client errors at warn.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, message,
			slog.Int("status", status),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
	}

	Error(c, status, message, bodyFor(status, err))
}

// AppError writes the response described by an AppError.
func AppError(logger *slog.Logger, c *gin.Context, err *apperrors.AppError) {
	ErrorWithLog(logger, c, err.StatusCode(), err.Message(), err)
}

func bodyFor(status int, err error) interface{} {
	if err == nil {
		return nil
	}

	body := ErrorBody{}
	if appErr, ok := apperrors.As(err); ok {
		body.Code = appErr.Code()
		body.Fields = appErr.Fields()
	}

	// Internal details stay in the logs.
	if status < http.StatusInternalServerError {
		body.Detail = err.Error()
	}

	return body
}
