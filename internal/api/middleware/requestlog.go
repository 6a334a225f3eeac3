package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestLog emits one structured log line per request. The request ID
// is taken from the X-Request-ID header when a caller supplies one,
// generated otherwise, and echoed back on the response so log lines can
// be correlated across hops.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqID := requestID(c)

			err := next(c)

			log.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"request_id", reqID,
			)
			return err
		}
	}
}

// requestID resolves the request's ID and stores it on the context and
// response header.
func requestID(c echo.Context) string {
	id := c.Request().Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Response().Header().Set(requestIDHeader, id)
	return id
}
