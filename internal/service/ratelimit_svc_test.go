package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisRateLimiter(client)

	ctx := context.Background()
	owner := fmt.Sprintf("user:%d", time.Now().UnixNano())

	// 窗口内前 limit 次放行
	for i := 0; i < 5; i++ {
		if !limiter.Allow(ctx, "cart_add", owner, 5) {
			t.Fatalf("第 %d 次调用不应被限流", i+1)
		}
	}

	// 超过上限拒绝
	if limiter.Allow(ctx, "cart_add", owner, 5) {
		t.Error("第 6 次调用应被限流")
	}

	// 不同操作独立计数
	if !limiter.Allow(ctx, "cart_load", owner, 5) {
		t.Error("其他操作不应受影响")
	}

	// 不同归属独立计数
	if !limiter.Allow(ctx, "cart_add", owner+"-other", 5) {
		t.Error("其他归属不应受影响")
	}
}

func TestRedisRateLimiter_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisRateLimiter(client)

	// Redis 挂了放行，不拖垮业务
	mr.Close()
	if !limiter.Allow(context.Background(), "cart_add", "user:1", 1) {
		t.Error("Redis 故障时应放行")
	}
}

func TestMemoryRateLimiter_Allow(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	ctx := context.Background()

	// 用唯一归属避免和其他用例共享进程级计数器
	owner := fmt.Sprintf("user:%d", time.Now().UnixNano())

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "cart_clear", owner, 3) {
			t.Fatalf("第 %d 次调用不应被限流", i+1)
		}
	}
	if limiter.Allow(ctx, "cart_clear", owner, 3) {
		t.Error("第 4 次调用应被限流")
	}
}
