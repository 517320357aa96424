package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, marketerrors.ErrNoEndTime):
		return http.StatusNotFound, "listing has no end time"
	case errors.Is(err, marketerrors.ErrListingExpired):
		return http.StatusGone, "listing has expired"
	case errors.Is(err, marketerrors.ErrInvalidListing):
		return http.StatusBadRequest, "invalid listing details"
	case errors.Is(err, marketerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, marketerrors.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid query"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// MapQueryErrorToHTTP is MapErrorToHTTP for the search endpoints, where store failures are client errors
func MapQueryErrorToHTTP(err error) (int, string) {
	status, message := MapErrorToHTTP(err)
	if status == http.StatusInternalServerError {
		return http.StatusBadRequest, "query failed"
	}
	return status, message
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
