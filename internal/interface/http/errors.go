package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/domain/errs"
	"github.com/oksasatya/medication-reminder/pkg/response"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.InvalidEmail, errs.InvalidPassword, errs.InvalidName, errs.InvalidMedicamento:
		return http.StatusBadRequest
	case errs.AuthenticationFailed, errs.Unauthenticated:
		return http.StatusUnauthorized
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	case errs.NotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal details are logged and
// replaced by a generic message.
func fail(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"error":      err.Error(),
			}).Error(fallback)
		}
		response.Error[any](c, status, fallback, nil)
		return
	}
	msg := fallback
	var e *errs.Error
	if errors.As(err, &e) && e.Msg != "" {
		msg = e.Msg
	}
	response.Error[any](c, status, msg, errs.KindOf(err).String())
}
