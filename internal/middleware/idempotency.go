package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/pkg/logger"
)

const (
	// IdempotencyKeyHeader is sent by the browser shell on retryable mutations
	IdempotencyKeyHeader = "X-Idempotency-Key"

	idempotencyKeyPrefix = "idempotency:"
	maxIdempotencyKeyLen = 128
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyRedis is the subset of go-redis used to keep records
type IdempotencyRedis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds idempotency settings
type IdempotencyConfig struct {
	Redis IdempotencyRedis
	// TTL keeps completed responses for replay
	TTL time.Duration
	// ProcessingTTL bounds how long a crashed request blocks its key
	ProcessingTTL time.Duration
}

// Idempotency replays the stored 201 answer when a mutation is retried with
// the same X-Idempotency-Key. Other answers release the key so the caller
// may try again. Requests without the header pass through, and so does
// everything when Redis fails. Keys are scoped to the session.
func Idempotency(config IdempotencyConfig, log *logger.Logger) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	if config.ProcessingTTL <= 0 {
		config.ProcessingTTL = 30 * time.Second
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || config.Redis == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen || !printable(key) {
			abort(c, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "X-Idempotency-Key is malformed.")
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, body)

		sid := ""
		if s := GetSession(c); s != nil {
			sid = s.ID()
		}
		redisKey := idempotencyKeyPrefix + sid + ":" + key
		ctx := c.Request.Context()

		record := &idempotencyRecord{Status: statusProcessing, RequestHash: hash, CreatedAt: time.Now()}
		claimed, err := claimRecord(ctx, config.Redis, redisKey, record, config.ProcessingTTL)
		if err != nil {
			log.Warn("idempotency store unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !claimed {
			existing, err := loadRecord(ctx, config.Redis, redisKey)
			switch {
			case errors.Is(err, redis.Nil):
				// expired between SETNX and GET; treat as fresh
			case err != nil:
				c.Next()
				return
			case existing.RequestHash != hash:
				abort(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "This request key was already used for a different request.")
				return
			case existing.Status == statusProcessing:
				abort(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "This request is still being processed.")
				return
			default:
				c.Header("Idempotent-Replayed", "true")
				c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
				c.Abort()
				return
			}
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		if rw.Status() != http.StatusCreated {
			if err := config.Redis.Del(ctx, redisKey).Err(); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
			return
		}

		record.Status = statusCompleted
		record.ResponseCode = rw.Status()
		record.ResponseBody = rw.body.String()
		if err := storeRecord(ctx, config.Redis, redisKey, record, config.TTL); err != nil {
			log.Warn("failed to store idempotent response", zap.Error(err))
		}
	}
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func claimRecord(ctx context.Context, rdb IdempotencyRedis, key string, record *idempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, data, ttl).Result()
}

func loadRecord(ctx context.Context, rdb IdempotencyRedis, key string) (*idempotencyRecord, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func storeRecord(ctx context.Context, rdb IdempotencyRedis, key string, record *idempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}
