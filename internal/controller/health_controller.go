package controller

import (
	"context"
	"time"

	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	dbStatus := "ok"
	if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(checkCtx) != nil {
		dbStatus = "unreachable"
	}
	status["database"] = dbStatus

	if c.Redis != nil {
		redisStatus := "ok"
		if err := c.Redis.Ping(checkCtx).Err(); err != nil {
			redisStatus = "unreachable"
		}
		status["redis"] = redisStatus
	}

	util.Success(ctx, status)
}
