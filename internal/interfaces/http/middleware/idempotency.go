package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantry/backend/internal/domain/shared"
	"github.com/pantry/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader is the header clients use to deduplicate submissions
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects a request whose Idempotency-Key header was already
// processed within the TTL. Requests without the header pass through; the
// key is claimed before the handler runs, so a retry racing the original
// sees a duplicate even while the first request is still in flight.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		isNew, err := store.MarkProcessed(c.Request.Context(), key, ttl)
		if err != nil {
			// the store being down should not block order intake
			logger.Warn("idempotency store unavailable, skipping duplicate check",
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this idempotency key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
