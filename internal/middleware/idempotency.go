package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

const (
	// IdempotencyKeyHeader carries the client-chosen retry key
	IdempotencyKeyHeader = "X-Idempotency-Key"

	idempotencyKeyPrefix = "idempotency:"
)

type idempotencyStatus string

const (
	idempotencyProcessing idempotencyStatus = "processing"
	idempotencyCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Key              string            `json:"key"`
	Status           idempotencyStatus `json:"status"`
	RequestHash      string            `json:"request_hash"`
	ResponseCode     int               `json:"response_code"`
	ResponseBody     string            `json:"response_body"`
	ResponseLocation string            `json:"response_location,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// IdempotencyConfig holds idempotency middleware settings
type IdempotencyConfig struct {
	Redis *redis.Client
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight record blocks retries
	ProcessingTTL time.Duration
}

// Idempotency deduplicates retried mutations. Requests without the key
// header pass through untouched, so browser-driven flows keep working;
// clients that send the header get at-most-once semantics with the first
// response replayed on retry. Redis unavailability fails open.
func Idempotency(cfg *IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.ProcessingTTL == 0 {
		cfg.ProcessingTTL = 60 * time.Second
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Redis == nil {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}
		requestHash := hashRequest(c, body)

		redisKey := idempotencyKeyPrefix + key
		ctx := c.Request.Context()

		existing, err := getRecord(ctx, cfg.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, requestHash)
			return
		}

		record := &idempotencyRecord{
			Key:         key,
			Status:      idempotencyProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		if !trySetRecord(ctx, cfg.Redis, redisKey, record, cfg.ProcessingTTL) {
			// Lost the race to a concurrent retry
			existing, _ = getRecord(ctx, cfg.Redis, redisKey)
			if existing != nil {
				replay(c, existing, requestHash)
				return
			}
		}

		rw := &captureWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = rw

		c.Next()

		// Server errors are not a canonical outcome for the key; drop the
		// processing record so a retry re-executes the handler.
		if rw.Status() >= 500 {
			cfg.Redis.Del(ctx, redisKey)
			return
		}

		record.Status = idempotencyCompleted
		record.ResponseCode = rw.Status()
		record.ResponseBody = rw.body.String()
		record.ResponseLocation = rw.Header().Get("Location")
		saveRecord(ctx, cfg.Redis, redisKey, record, cfg.TTL)
	}
}

func replay(c *gin.Context, record *idempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		response.AbortWithError(c, domain.E(domain.KindConflict, "Idempotency key already used with a different request"))
		return
	}
	if record.Status == idempotencyProcessing {
		response.AbortWithError(c, domain.E(domain.KindConflict, "A request with this idempotency key is already being processed"))
		return
	}
	// Redirect responses carry their outcome in Location, not the body.
	if record.ResponseLocation != "" {
		c.Header("Location", record.ResponseLocation)
	}
	c.Data(record.ResponseCode, "application/json", []byte(record.ResponseBody))
	c.Abort()
}

func hashRequest(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if user, ok := GetUser(c); ok {
		h.Write([]byte(user.ID.Hex()))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, client *redis.Client, key string) (*idempotencyRecord, error) {
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func trySetRecord(ctx context.Context, client *redis.Client, key string, record *idempotencyRecord, ttl time.Duration) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	ok, err := client.SetNX(ctx, key, string(data), ttl).Result()
	return err == nil && ok
}

func saveRecord(ctx context.Context, client *redis.Client, key string, record *idempotencyRecord, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	client.Set(ctx, key, string(data), ttl)
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
