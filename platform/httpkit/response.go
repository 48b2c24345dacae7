// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"phonebook_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "internal server error"

// Envelope is the standard success response format.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a 200 envelope with data and message.
func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created sends a 201 envelope with data and message.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Details: details})
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values anywhere in the chain decide the status code.
// Anything else is attached to the gin context for the request logger and
// answered with 500 without leaking its text.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := apperr.As(err); ok {
		status := domainErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.AbortWithStatusJSON(status, ErrorResponse{
			Message: domainErr.Message,
			Code:    domainErr.Code,
			Details: domainErr.Details,
		})
		return true
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: msgInternalError})
	return true
}
