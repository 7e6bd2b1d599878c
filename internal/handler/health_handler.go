package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db    *mongo.Database
	redis *redis.Client
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db *mongo.Database, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Health handles GET /health: liveness only
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready: checks the backing stores
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Client().Ping(ctx, nil); err != nil {
			checks["mongodb"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["mongodb"] = "up"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "up"
		}
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
