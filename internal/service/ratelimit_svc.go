package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"acadstore_v1_202608/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ==================== RateLimiter 限流接口 ====================

// RateLimiter 固定窗口限流器
// 窗口按分钟切桶，key 形如 <op>_<owner>_<minuteBucket>
type RateLimiter interface {
	// Allow 检查本分钟内 op+owner 的调用次数是否仍在 limit 之内
	Allow(ctx context.Context, op, ownerKey string, limit int) bool
}

// bucketKey 生成当前分钟的窗口 key
func bucketKey(op, ownerKey string) string {
	return fmt.Sprintf("%s_%s_%d", op, ownerKey, time.Now().Unix()/60)
}

// ==================== Redis 实现 ====================

// RedisRateLimiter Redis 固定窗口限流器（多实例部署时共享计数）
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter 创建 Redis 限流器
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, op, ownerKey string, limit int) bool {
	key := "ratelimit:" + bucketKey(op, ownerKey)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis 故障时放行，限流只是节流手段，不能拖垮业务
		log.Printf("[RateLimit] Redis 计数失败，放行: %v", err)
		return true
	}

	if count == 1 {
		// 窗口本身 1 分钟，多留 1 分钟避免边界上提前消失
		_ = r.client.Expire(ctx, key, 2*time.Minute).Err()
	}

	return count <= int64(limit)
}

// ==================== 内存实现 ====================

// MemoryRateLimiter 单机内存限流器（未配置 Redis 时的缺省实现）
type MemoryRateLimiter struct{}

// NewMemoryRateLimiter 创建内存限流器
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, op, ownerKey string, limit int) bool {
	count := utils.IncrCounter(bucketKey(op, ownerKey), 2*time.Minute)
	return count <= int64(limit)
}
