package utils

import (
	"sync"
	"time"
)

// 使用 sync.Map 保证并发安全
var (
	counterCache sync.Map
)

// counterItem 内部结构，包含计数值和过期时间
type counterItem struct {
	mu         sync.Mutex
	count      int64
	expiration int64
}

// IncrCounter 自增并返回计数器当前值
// key 到期后重新从 1 开始（固定窗口计数用）
func IncrCounter(key string, ttl time.Duration) int64 {
	now := time.Now().Unix()

	actual, _ := counterCache.LoadOrStore(key, &counterItem{expiration: now + int64(ttl.Seconds())})
	item := actual.(*counterItem)

	item.mu.Lock()
	defer item.mu.Unlock()

	// 过期则重置
	if now > item.expiration {
		item.count = 0
		item.expiration = now + int64(ttl.Seconds())
	}

	item.count++
	return item.count
}

// CounterValue 读取计数器当前值，过期返回 0
func CounterValue(key string) int64 {
	actual, ok := counterCache.Load(key)
	if !ok {
		return 0
	}

	item := actual.(*counterItem)
	item.mu.Lock()
	defer item.mu.Unlock()

	if time.Now().Unix() > item.expiration {
		return 0
	}
	return item.count
}

// PurgeExpiredCounters 清理过期计数器（由定时任务调用，懒删除的兜底）
func PurgeExpiredCounters() int {
	now := time.Now().Unix()
	removed := 0

	counterCache.Range(func(key, value interface{}) bool {
		item := value.(*counterItem)
		item.mu.Lock()
		expired := now > item.expiration
		item.mu.Unlock()

		if expired {
			counterCache.Delete(key)
			removed++
		}
		return true
	})

	return removed
}
