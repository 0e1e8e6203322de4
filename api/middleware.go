package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireCapability authenticates the bearer token and checks the capability
// before the route handler runs.
func RequireCapability(gate *auth.Gate, capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := gate.Authenticate(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			respondError(c, nil, err)
			return
		}
		if err := gate.Authorize(id, capability); err != nil {
			respondError(c, nil, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func identityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}

func requesterFrom(c *gin.Context) booking.Requester {
	id := identityFrom(c)
	return booking.Requester{UserID: id.UserID, Email: id.Email, IsAdmin: id.IsAdmin()}
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
