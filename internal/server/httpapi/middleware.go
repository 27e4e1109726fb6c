package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey     = "identity"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger logs every request once it completes and records its latency.
func RequestLogger(log logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency.Seconds())

		log.Info(c.Request.Context(), "request processed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"ip", c.ClientIP(),
		)
	}
}

// BearerAuth resolves the Authorization header to an Identity and stores it
// on the context; requests without a valid access token stop with 401.
func BearerAuth(sessions *services.SessionManager, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, log, common.ErrInvalidToken)
			return
		}

		id, err := sessions.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) models.Identity {
	return c.MustGet(identityKey).(models.Identity)
}
