package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdash/internal/models"
	"salesdash/internal/reports"
)

type errResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errStatus maps an error onto an HTTP status and an error code
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidFilter):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, models.ErrMissingTarget):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrChartNotReady):
		return http.StatusConflict, "NOT_READY"
	case errors.Is(err, models.ErrStaleResponse),
		errors.Is(err, reports.ErrSnapshotInProgress):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, models.ErrNetworkFailure),
		errors.Is(err, models.ErrServerReported),
		errors.Is(err, models.ErrMalformedPayload):
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func abortWithError(c *gin.Context, err error) {
	status, code := errStatus(err)
	c.AbortWithStatusJSON(status, errResponse{OK: false, Error: code, Message: models.UserMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errResponse{OK: false, Error: "VALIDATION_ERROR", Message: msg})
}

// chartRequestErr is true for errors the caller caused. Other chart
// failures are reported through the chart status instead.
func chartRequestErr(err error) bool {
	return errors.Is(err, models.ErrInvalidFilter) || errors.Is(err, models.ErrMissingTarget)
}
