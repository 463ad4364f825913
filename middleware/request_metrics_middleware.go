package middleware

import (
	"strconv"
	"time"
	"weaveit-pipeline/application/ports/outbound"

	"github.com/gin-gonic/gin"
)

type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, elapsed time.Duration)
}

// RequestMetrics records every request against its route template so ids in
// the path do not blow up label cardinality.
func RequestMetrics(recorder HTTPMetricsRecorder, logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		recorder.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"path":       c.Request.URL.Path,
			"status":     status,
			"elapsed_ms": elapsed.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if status >= 500 {
			logger.WarnWithFields("Request failed", fields)
			return
		}
		logger.DebugWithFields("Request served", fields)
	}
}
