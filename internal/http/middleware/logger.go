package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/logging"
)

// Logger logs one line per HTTP request: request_id, method, path, status
// and latency in milliseconds. trace_id is added when the request runs
// inside a span.
func Logger(logger *zap.Logger) fiber.Handler {
	log := logging.OrNop(logger).With(zap.String("component", "http"))

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// The global error handler has not run yet, so take the status from err.
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFromError(err)
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
		return err
	}
}

func statusFromError(err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
