package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconfig "Lifeline/config"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/response"
	"Lifeline/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
	// 阻塞时长（秒），超过限制后禁止访问的时间
	BlockDuration int
}

// DefaultRateLimitConfig 默认限流配置，MaxRequests 跟随 RATE_LIMIT_RPS
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:        60,
		MaxRequests:   appconfig.Cfg.RateLimitRPS * 60,
		KeyPrefix:     "rate:limit",
		BlockDuration: 300,
	}
}

// SOSRateLimitConfig SOS 触发限流，防止误触刷屏但不能挡住真警报
var SOSRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   10,
	KeyPrefix:     "sos:rate",
	BlockDuration: 120,
}

// RateLimiter 基于 redis zset 滑动窗口的限流器
type RateLimiter struct {
	config RateLimitConfig
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config: config,
	}
}

// getKey 限流按客户端 IP 区分（无认证，参与者 ID 可自报所以不可信）
func (rl *RateLimiter) getKey(c *app.RequestContext) string {
	return redis.Key(rl.config.KeyPrefix, fmt.Sprintf("ip:%s", c.ClientIP()))
}

// Allow 检查是否允许请求，使用滑动窗口算法
func (rl *RateLimiter) Allow(ctx context.Context, c *app.RequestContext) (bool, int, error) {
	key := rl.getKey(c)
	now := time.Now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	client := redis.Client()
	pipe := client.Pipeline()

	// 先移除窗口外的记录，再记当前请求
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	allowed := count <= rl.config.MaxRequests

	return allowed, count, nil
}

func (rl *RateLimiter) Block(ctx context.Context, c *app.RequestContext) error {
	key := redis.Key(rl.config.KeyPrefix+":block", c.ClientIP())
	return redis.Client().Set(ctx, key, "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, c *app.RequestContext) (bool, error) {
	key := redis.Key(rl.config.KeyPrefix+":block", c.ClientIP())
	result, err := redis.Client().Exists(ctx, key).Result()
	return result > 0, err
}

// RateLimitMiddleware 创建限流中间件。redis 不可用时放行而不是拒绝，
// 限流是保护措施，不能变成灾区的单点故障。
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(ctx context.Context, c *app.RequestContext) {
		if !appconfig.Cfg.RateLimitEnabled || !redis.Ready() {
			c.Next(ctx)
			return
		}

		blocked, err := limiter.IsBlocked(ctx, c)
		if err != nil {
			logger.Logger.Warn("Failed to check block status, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		if blocked {
			c.AbortWithStatus(consts.StatusTooManyRequests)
			response.Error(ctx, c, errors.RateLimited)
			return
		}

		allowed, count, err := limiter.Allow(ctx, c)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Duration(cfg.Window)*time.Second).Unix(), 10))

		if !allowed {
			if err := limiter.Block(ctx, c); err != nil {
				logger.Logger.Error("Failed to block client", zap.Error(err))
			}

			c.AbortWithStatus(consts.StatusTooManyRequests)
			response.Error(ctx, c, errors.RateLimited)
			return
		}

		c.Next(ctx)
	}
}

// GeneralRateLimitMiddleware 通用限流中间件
func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig())
}

// SOSRateLimitMiddleware SOS 路由限流中间件
func SOSRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(SOSRateLimitConfig)
}
