package httperr

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// maxLoggedBodyBytes caps how much of a request body is captured for the
// failure log.
const maxLoggedBodyBytes = 2048

// Response is the JSON body for every non-2xx response.
type Response struct {
	Status     Kind   `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Handler returns the centralized error-translation middleware. Handlers
// attach failures with c.Error(err) and never write error responses
// themselves; this middleware is the single exit path for all failures.
// It logs each failure exactly once and, in production mode, suppresses
// the details field.
func Handler(logger *slog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Capture the body up front so it is still available for the
		// failure log after handlers have consumed it.
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBodyBytes))
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(body), c.Request.Body), c.Request.Body}
		}

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := From(c.Errors[0].Err)

		logger.Error(string(appErr.Kind),
			slog.String("message", appErr.Message),
			slog.String("method", c.Request.Method),
			slog.String("url", c.Request.URL.String()),
			slog.String("body", string(body)),
			slog.Any("cause", appErr.Unwrap()),
		)

		resp := Response{
			Status:     appErr.Kind,
			StatusCode: appErr.Status,
			Message:    appErr.Message,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		}
		if !production {
			resp.Details = appErr.Details
		}

		c.JSON(appErr.Status, resp)
	}
}

// NoRoute handles requests that match no registered route.
func NoRoute(c *gin.Context) {
	_ = c.Error(NotFound("Resource not found"))
}
