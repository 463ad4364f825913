package middleware

import (
	"net/http"
	"strconv"
	"time"
	"weaveit-pipeline/application/ports/outbound"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter builds an in-memory limiter from a formatted rate such as
// "30-M" (30 requests per minute).
func NewRateLimiter(formattedRate string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formattedRate)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit throttles per authenticated user, or per client IP when the
// request carries no identity. Store errors let the request through.
func RateLimit(lim *limiter.Limiter, logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(ContextUserIDKey); userID != "" {
			key = "user:" + userID
		}

		limitCtx, err := lim.Get(c.Request.Context(), key)
		if err != nil {
			logger.Error(err, "rate limiter store failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limitCtx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(limitCtx.Remaining, 10))

		if limitCtx.Reached {
			retry := int(time.Until(time.Unix(limitCtx.Reset, 0)).Seconds())
			c.Header("Retry-After", strconv.Itoa(max(retry, 0)))
			logger.WarnWithFields("Rate limit reached", map[string]interface{}{
				"key":   key,
				"route": c.FullPath(),
			})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
