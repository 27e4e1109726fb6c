package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrTokenNotFound):
		return http.StatusNotFound, "Refresh token not found"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError aborts the request with the status that err maps to. Only
// unexpected failures are logged; their details never reach the client.
func respondError(c *gin.Context, log logging.Logger, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(code, gin.H{"detail": msg})
}

// respondBodyTokenError is respondError for endpoints that take the token in
// the request body: a token that does not decode is a bad request there, not
// a missing credential.
func respondBodyTokenError(c *gin.Context, log logging.Logger, err error) {
	if errors.Is(err, common.ErrInvalidToken) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Invalid token"})
		return
	}
	respondError(c, log, err)
}
