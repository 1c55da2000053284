package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/pubsub/backend/broker/internal/collection"
	"github.com/gogotex/pubsub/backend/broker/internal/topic/service"
	"github.com/rs/zerolog"
)

// HTTPError is the client-facing error body.
type HTTPError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Name       string `json:"error"`
	ErrorCode  int    `json:"errorCode"`
	Message    string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.StatusCode, e.Message)
}

func newHTTPError(name string, statusCode, errorCode int, message string) *HTTPError {
	status := "error"
	if statusCode >= 400 && statusCode < 500 {
		status = "fail"
	}
	return &HTTPError{StatusCode: statusCode, Status: status, Name: name, ErrorCode: errorCode, Message: message}
}

func invalidParams(msg string) *HTTPError {
	return newHTTPError("HTTP_ERROR_INVALID_PARAMS", http.StatusBadRequest, 2, msg)
}

func validationFailed(msg string) *HTTPError {
	return newHTTPError("HTTP_ERROR_VALIDATION", http.StatusBadRequest, 3, msg)
}

func entityNotFound(msg string) *HTTPError {
	return newHTTPError("HTTP_ERROR_ENTITY_NOT_FOUND", http.StatusUnprocessableEntity, 4, msg)
}

func internalError() *HTTPError {
	return newHTTPError("HTTP_ERROR_INTERNAL", http.StatusInternalServerError, 1, "internal server error")
}

// fromServiceError maps the broker error taxonomy onto HTTP errors. Anything
// outside it is logged and hidden behind a 500.
func fromServiceError(log zerolog.Logger, err error) *HTTPError {
	var verr *collection.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidParams):
		return invalidParams(detail(err, service.ErrInvalidParams))
	case errors.Is(err, service.ErrTopicNotFound):
		return entityNotFound(detail(err, service.ErrTopicNotFound))
	case errors.As(err, &verr):
		return validationFailed(verr.Error())
	}
	log.Error().Err(err).Msg("unhandled broker error")
	return internalError()
}

// detail strips the sentinel prefix added when the error was wrapped.
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func abortWithError(c *gin.Context, e *HTTPError) {
	c.AbortWithStatusJSON(e.StatusCode, e)
}
