package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gauravnainwal518/note-app/internal/metrics"
)

// RequestLogger logs one structured line per request and reports the
// response to recorder. The level follows the status class.
func RequestLogger(logger *slog.Logger, recorder metrics.Recorder) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			recorder.HTTPResponse(v.Method, c.Path(), v.Status)

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Float64("duration_ms", float64(v.Latency.Nanoseconds())/float64(time.Millisecond)),
				slog.String("request_id", v.RequestID),
			}
			if userID, ok := c.Get(UserIDKey).(uuid.UUID); ok {
				attrs = append(attrs, slog.String("user_id", userID.String()))
			}

			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(context.Background(), level, "http_request", attrs...)
			return nil
		},
	})
}
