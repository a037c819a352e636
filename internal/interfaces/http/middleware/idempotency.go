package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/pkg/logger"
	"inkpost.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
	maxKeyLength     = 128
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key so a retried registration or dispatch request does not
// create a second account or send a second email. Requests without the
// header pass through, and so does everything when Redis is unavailable.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			abort(c, domainerrors.BadRequest("Idempotency-Key is too long"))
			return
		}

		ctx := c.Request.Context()
		storageKey := idempotencyKey(c, key)

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			abort(c, domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, "Request already in progress", nil))
			return
		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr == nil {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
				c.Abort()
				return
			}
			_ = redisDel(ctx, storageKey)
		case !errors.Is(err, redis.Nil):
			logger.Warn(ctx, "Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			abort(c, domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, "Request already in progress", nil))
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
			if err := redisSet(ctx, storageKey, payload, RetentionDuration); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// failures may be retried with the same key
		_ = redisDel(ctx, storageKey)
	}
}

func idempotencyKey(c *gin.Context, key string) string {
	sum := sha256.Sum256([]byte(c.ClientIP() + "|" + c.Request.Method + "|" + c.FullPath() + "|" + key))
	return "idempotency:" + hex.EncodeToString(sum[:])
}
