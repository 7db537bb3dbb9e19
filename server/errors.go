package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meenmo/rateedge/alerts"
	"github.com/meenmo/rateedge/analytics"
	"github.com/meenmo/rateedge/importer"
	"github.com/meenmo/rateedge/pricer"
	"github.com/meenmo/rateedge/ratestore"
)

// statusFor maps the service sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pricer.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, ratestore.ErrNoData),
		errors.Is(err, alerts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pricer.ErrInvalidCurve),
		errors.Is(err, pricer.ErrInvalidTenor),
		errors.Is(err, pricer.ErrInvalidFrequency),
		errors.Is(err, pricer.ErrInvalidPeriod),
		errors.Is(err, ratestore.ErrInvalidRecord),
		errors.Is(err, importer.ErrBadFormat),
		errors.Is(err, alerts.ErrInvalidAlert):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope with the mapped status.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField(requestIDKey, c.GetString(requestIDKey)).Error("request failed")
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// respondBadRequest writes the failure envelope for a malformed request.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
