package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to its HTTP status and the message shown
// to the client. Unrecognized errors are reported generically.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrAuthenticationRequired):
		return http.StatusUnauthorized, common.ErrAuthenticationRequired.Error()
	case errors.Is(err, common.ErrAuthorizationDenied):
		return http.StatusForbidden, common.ErrAuthorizationDenied.Error()
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrUnsupportedFileType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, common.ErrRateLimited.Error()
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, common.ErrAlreadyExists.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func (h *handlers) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
